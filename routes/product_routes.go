package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/controller"
	"github.com/syphaxalili/b2connect-store-sub001/middleware"
)

func RegisterProductRoutes(app *fiber.App, pc *controller.ProductController, cc *controller.CategoryController, auth fiber.Handler) {
	api := app.Group("/api")

	p := api.Group("/products")
	p.Get("/", pc.List)
	p.Get("/:id", pc.Get)
	p.Post("/", auth, middleware.RoleRequired("admin"), pc.Create)
	p.Put("/:id", auth, middleware.RoleRequired("admin"), pc.Update)
	p.Delete("/:id", auth, middleware.RoleRequired("admin"), pc.Delete)

	c := api.Group("/categories")
	c.Get("/", cc.List)
	c.Post("/", auth, middleware.RoleRequired("admin"), cc.Create)
	c.Delete("/:id", auth, middleware.RoleRequired("admin"), cc.Delete)
}
