package handler

import (
	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/inbox"

	"github.com/gofiber/fiber/v3"
)

type NotificationHandler struct {
	inbox *inbox.Service
}

func NewNotificationHandler(svc *inbox.Service) *NotificationHandler {
	return &NotificationHandler{inbox: svc}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageQuery(c)
	if err != nil {
		return err
	}
	unread := c.Query("unread") == "true"

	items, err := h.inbox.List(c.Context(), actor.ID, unread, limit, offset)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Paginated(c, dto.NewNotificationResponses(items), len(items), limit, offset)
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.inbox.MarkRead(c.Context(), actor.ID, id); err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Notification read", fiber.Map{"id": id})
}

func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	n, err := h.inbox.MarkAllRead(c.Context(), actor.ID)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Notifications read", fiber.Map{"updated": n})
}
