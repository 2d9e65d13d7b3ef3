package handlers

import (
	"context"

	"github.com/anjiri1684/travel_agency/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AnalyticsService interface {
	Report(ctx context.Context, timeRange string) (*services.AnalyticsReport, error)
}

type SettingsService interface {
	List(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) (map[string]string, error)
}

// AdminHandler serves the dashboard and site settings.
type AdminHandler struct {
	base
	analytics AnalyticsService
	settings  SettingsService
}

func NewAdminHandler(analytics AnalyticsService, settings SettingsService, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{base: base{log: log}, analytics: analytics, settings: settings}
}

func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	report, err := h.analytics.Report(c.UserContext(), c.Query("range", services.DefaultTimeRange))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	values, err := h.settings.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"settings": values})
}

type updateSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	values, err := h.settings.Update(c.UserContext(), req.Settings)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settings updated", "settings": values})
}
