package routes

import (
	"time"

	"github.com/anjiri1684/travel_agency/handlers"
	"github.com/anjiri1684/travel_agency/middleware"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Packages *handlers.PackageHandler
	Bookings *handlers.BookingHandler
	Payments *handlers.PaymentHandler
	Forms    *handlers.FormHandler
	Admin    *handlers.AdminHandler
	Uploads  *handlers.UploadHandler
	LiveFeed *handlers.LiveFeedHandler
}

type Options struct {
	JWTSecret     string
	FormRateLimit int
	FormWindow    time.Duration
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	app.Get("/health", handlers.Health)

	api := app.Group("/api")
	protected := middleware.Protected(opts.JWTSecret)

	AuthRoutes(api, h, protected)
	PublicRoutes(api, h, opts)
	BookingRoutes(api, h, protected)
	PaymentRoutes(api, h, protected)
	AdminRoutes(api, h, protected)
}
