package handler

import (
	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
)

type AuditHandler struct {
	engine *moderation.Engine
}

func NewAuditHandler(engine *moderation.Engine) *AuditHandler {
	return &AuditHandler{engine: engine}
}

func (h *AuditHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", middleware.RequireRole(user.RoleAdmin), h.List)
}

func (h *AuditHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageQuery(c)
	if err != nil {
		return err
	}
	targetID, err := optionalUUIDQuery(c, "target_id")
	if err != nil {
		return err
	}

	f := audit.Filter{TargetID: targetID, Limit: limit, Offset: offset}
	if s := c.Query("target_type"); s != "" {
		tt := audit.TargetType(s)
		if !tt.Valid() {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid target_type", nil, nil)
		}
		f.TargetType = &tt
	}

	entries, err := h.engine.ListAuditLog(c.Context(), actor, f)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Paginated(c, dto.NewAuditEntryResponses(entries), len(entries), limit, offset)
}
