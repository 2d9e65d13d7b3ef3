package routes

import (
	"github.com/anjiri1684/travel_agency/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	admin := api.Group("/admin", protected, middleware.AdminRequired())

	admin.Get("/analytics", h.Admin.Analytics)
	admin.Get("/settings", h.Admin.GetSettings)
	admin.Put("/settings", h.Admin.UpdateSettings)
	admin.Get("/users", h.Auth.ListUsers)

	bookings := admin.Group("/bookings")
	bookings.Get("", h.Bookings.AdminList)
	bookings.Get("/export", h.Bookings.Export)
	bookings.Get("/:id/payments", h.Payments.History)

	packages := admin.Group("/packages")
	packages.Get("", h.Packages.AdminList)
	packages.Post("", h.Packages.Create)
	packages.Put("/:id", h.Packages.Update)
	packages.Delete("/:id", h.Packages.Delete)

	forms := admin.Group("/forms")
	forms.Get("", h.Forms.List)
	forms.Patch("/:id", h.Forms.Update)

	UploadRoutes(admin, h)

	admin.Get("/ws", h.LiveFeed.RequireUpgrade, h.LiveFeed.Stream())
}
