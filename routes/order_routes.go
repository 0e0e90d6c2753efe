package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/controller"
	"github.com/syphaxalili/b2connect-store-sub001/middleware"
)

func RegisterOrderRoutes(app *fiber.App, oc *controller.OrderController, auth fiber.Handler) {
	api := app.Group("/api")
	o := api.Group("/orders")
	o.Post("/", auth, oc.Create)
	o.Get("/", auth, oc.ListUser)
	o.Get("/all", auth, middleware.RoleRequired("admin"), oc.ListAll)
	o.Get("/:id", auth, oc.Get)
	o.Post("/:id/pay", auth, oc.Pay)
	o.Post("/:id/cancel", auth, oc.Cancel)
	o.Patch("/:id/status", auth, middleware.RoleRequired("admin"), oc.UpdateStatus)
	o.Delete("/:id", auth, middleware.RoleRequired("admin"), oc.Delete)
}
