package routes

import (
	"time"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func PublicRoutes(api fiber.Router, h Handlers, opts Options) {
	packages := api.Group("/packages")
	packages.Get("", h.Packages.List)
	packages.Get("/:idOrSlug", h.Packages.Get)

	api.Post("/forms/submit", formLimiter(opts), h.Forms.Submit)
}

func formLimiter(opts Options) fiber.Handler {
	max, window := opts.FormRateLimit, opts.FormWindow
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many submissions, please try again later",
				"code":  apperrors.CodeRateLimited,
			})
		},
	})
}
