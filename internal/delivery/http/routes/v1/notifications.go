package v1

import (
	"blue-collar-portal/internal/delivery/http/handler"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/ws"

	"github.com/gofiber/fiber/v3"
)

func RegisterNotifications(r fiber.Router, h *handler.NotificationHandler) {
	if r == nil || h == nil {
		return
	}

	h.RegisterRoutes(r)
}

func RegisterRealtime(r fiber.Router, h *ws.Handler, authMw *middleware.AuthMiddleware) {
	if r == nil || h == nil || authMw == nil {
		return
	}

	r.Get("/ws/notifications", authMw.WebSocket(), h.HandleNotificationsWS)
}
