package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/controller"
)

func RegisterAuthRoutes(app *fiber.App, ac *controller.AuthController) {
	api := app.Group("/api")
	a := api.Group("/auth")
	a.Post("/register", ac.Register)
	a.Post("/login", ac.Login)
	a.Post("/forgot-password", ac.ForgotPassword)
	a.Post("/reset-password", ac.ResetPassword)
}
