package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/controller"
)

func RegisterCartRoutes(app *fiber.App, cc *controller.CartController, auth fiber.Handler) {
	api := app.Group("/api")
	cart := api.Group("/cart")
	cart.Get("/", auth, cc.Get)
	cart.Post("/items", auth, cc.AddItem)
	cart.Delete("/items/:product_id", auth, cc.RemoveItem)
}
