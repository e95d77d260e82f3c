package v1

import (
	"blue-collar-portal/internal/delivery/http/handler"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Listings      *handler.ListingHandler
	Reports       *handler.ReportHandler
	Appeals       *handler.AppealHandler
	Companies     *handler.CompanyHandler
	Audit         *handler.AuditHandler
	Notifications *handler.NotificationHandler
	WS            *ws.Handler
}

func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	// Registered ahead of the protected group so the upgrade can authenticate
	// from the query string.
	RegisterRealtime(r, h.WS, authMw)

	protected := r.Group("", authMw.Middleware())
	RegisterModeration(protected, h)
	RegisterNotifications(protected.Group("/notifications"), h.Notifications)
}
