package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/refresh", handler.AuthRequired, handler.Refresh)
	auth.Get("/session", handler.AuthRequired, handler.Session)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	properties := api.Group("/properties", handler.AuthRequired)
	properties.Get("/", handler.ListProperties)
	properties.Post("/", handler.CreateProperty)
	properties.Patch("/:id", handler.UpdateProperty)
	properties.Delete("/:id", handler.DeleteProperty)
	properties.Post("/:id/plan", handler.RegeneratePlan)
	properties.Get("/:id/rent-estimate", handler.RentEstimate)
	properties.Post("/:id/rent-increase", handler.ApplyRentIncrease)

	payments := api.Group("/payments", handler.AuthRequired)
	payments.Get("/", handler.ListPayments)
	payments.Patch("/:id", handler.UpdatePayment)
	payments.Post("/:id/toggle", handler.TogglePayment)

	api.Get("/dashboard", handler.AuthRequired, handler.Dashboard)
}
