package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/controller"
)

func RegisterPaymentRoutes(app *fiber.App, pc *controller.PaymentController, auth fiber.Handler) {
	api := app.Group("/api")
	p := api.Group("/payments")
	p.Post("/create-checkout-session", auth, pc.CreateCheckoutSession)
	// The webhook is unauthenticated; the signature check on the raw
	// body is its authentication.
	p.Post("/webhook", pc.Webhook)
}
