package routes

import (
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/me", protected, h.Auth.Me)
}
