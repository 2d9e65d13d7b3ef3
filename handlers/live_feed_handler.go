package handlers

import (
	"github.com/anjiri1684/travel_agency/middleware"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/anjiri1684/travel_agency/websocket"
	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LiveFeedHandler upgrades admin dashboards to a websocket that receives booking events.
type LiveFeedHandler struct {
	base
	hub *websocket.Hub
}

func NewLiveFeedHandler(hub *websocket.Hub, log logrus.FieldLogger) *LiveFeedHandler {
	return &LiveFeedHandler{base: base{log: log}, hub: hub}
}

// RequireUpgrade rejects plain HTTP requests to the feed endpoint.
func (h *LiveFeedHandler) RequireUpgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *LiveFeedHandler) Stream() fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		auth, ok := conn.Locals(middleware.AuthLocalsKey).(models.AuthContext)
		if !ok {
			conn.Close()
			return
		}
		h.log.WithField("user_id", auth.UserID).Info("Admin live feed connected")
		h.hub.Serve(conn, auth.UserID)
		h.log.WithField("user_id", auth.UserID).Info("Admin live feed disconnected")
	})
}

// Health is the liveness probe.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
