package handler

import (
	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
)

type AppealHandler struct {
	engine *moderation.Engine
}

type adjudicateRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func NewAppealHandler(engine *moderation.Engine) *AppealHandler {
	return &AppealHandler{engine: engine}
}

func (h *AppealHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	admin := middleware.RequireRole(user.RoleAdmin)

	r.Get("/", middleware.RequireRole(user.RoleAdmin, user.RoleEmployer), h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id", admin, h.Adjudicate)
	r.Post("/:id/review", admin, h.MarkUnderReview)
}

func (h *AppealHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageQuery(c)
	if err != nil {
		return err
	}
	listingID, err := optionalUUIDQuery(c, "listing_id")
	if err != nil {
		return err
	}
	f := appeal.Filter{ListingID: listingID, Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := appeal.Status(s)
		f.Status = &st
	}

	items, err := h.engine.ListAppeals(c.Context(), actor, f)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Paginated(c, dto.NewAppealResponses(items), len(items), limit, offset)
}

func (h *AppealHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	view, err := h.engine.GetAppeal(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	out := dto.NewAppealResponse(view.Appeal)
	out.EvidenceURLs = view.EvidenceURLs
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *AppealHandler) Adjudicate(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req adjudicateRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	res, err := h.engine.AdjudicateAppeal(c.Context(), actor, id, appeal.Decision(req.Decision), req.Notes)
	if err != nil {
		return mapModerationError(err)
	}
	msg := "Appeal accepted"
	if res.Appeal.Status == appeal.StatusRejected {
		msg = "Appeal rejected"
	}
	return response.Success(c, fiber.StatusOK, msg, fiber.Map{
		"appeal":  dto.NewAppealResponse(res.Appeal),
		"listing": dto.NewListingResponse(res.Listing),
	})
}

func (h *AppealHandler) MarkUnderReview(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	a, err := h.engine.MarkAppealUnderReview(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Appeal under review", dto.NewAppealResponse(a))
}
