package routes

import (
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	bookings := api.Group("/bookings", protected)
	bookings.Post("", h.Bookings.Create)
	bookings.Get("", h.Bookings.ListMine)
	bookings.Get("/:id", h.Bookings.Get)
	bookings.Patch("/:id", h.Bookings.Patch)
	bookings.Get("/:id/voucher", h.Bookings.Voucher)
}
