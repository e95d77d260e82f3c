package v1

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterModeration(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Listings != nil {
		h.Listings.RegisterRoutes(r.Group("/listings"))
	}
	if h.Reports != nil {
		h.Reports.RegisterRoutes(r.Group("/reports"))
	}
	if h.Appeals != nil {
		h.Appeals.RegisterRoutes(r.Group("/appeals"))
	}
	if h.Companies != nil {
		h.Companies.RegisterRoutes(r.Group("/companies"))
	}
	if h.Audit != nil {
		h.Audit.RegisterRoutes(r.Group("/audit-logs"))
	}
}
