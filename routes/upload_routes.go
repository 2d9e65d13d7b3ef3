package routes

import (
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(admin fiber.Router, h Handlers) {
	admin.Get("/uploads/signature", h.Uploads.Signature)
}
