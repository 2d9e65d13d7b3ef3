package routes

import (
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	payments := api.Group("/payments")
	payments.Post("/create-order", protected, h.Payments.CreateOrder)
	payments.Post("/verify", protected, h.Payments.Verify)
	// Signed by the gateway, not by our JWT.
	payments.Post("/webhook", h.Payments.Webhook)
}
