package handler

import (
	"errors"
	"strings"

	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
)

type CompanyHandler struct {
	engine *moderation.Engine
}

type verificationRequest struct {
	Decision string `json:"decision"`
	Remark   string `json:"remark"`
}

func NewCompanyHandler(engine *moderation.Engine) *CompanyHandler {
	return &CompanyHandler{engine: engine}
}

func (h *CompanyHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	admin := middleware.RequireRole(user.RoleAdmin)

	r.Get("/:id", h.Get)
	r.Post("/:id/disable", admin, h.Disable)
	r.Post("/:id/enable", admin, h.Enable)
	r.Post("/:id/verification", admin, h.ReviewVerification)
	r.Post("/:id/resubmit", middleware.RequireRole(user.RoleEmployer), h.Resubmit)
}

func (h *CompanyHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	co, err := h.engine.GetCompany(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompanyResponse(co))
}

// Disable answers 202 when some listings could not be suspended; the worker
// sweep finishes them.
func (h *CompanyHandler) Disable(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req reasonRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	res, err := h.engine.DisableCompanyCascade(c.Context(), actor, id, req.Reason)
	switch {
	case errors.Is(err, moderation.ErrCascadeIncomplete):
		return response.Success(c, fiber.StatusAccepted, "Company disabled; remaining listings will be suspended by the next sweep", res)
	case err != nil:
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Company disabled", res)
}

func (h *CompanyHandler) Enable(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req notesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}

	co, err := h.engine.EnableCompany(c.Context(), actor, id, req.Notes)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Company enabled", dto.NewCompanyResponse(co))
}

func (h *CompanyHandler) ReviewVerification(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req verificationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	var approve bool
	switch strings.ToUpper(strings.TrimSpace(req.Decision)) {
	case "APPROVE":
		approve = true
	case "REJECT":
	default:
		return middleware.NewAppError(fiber.StatusBadRequest, "decision must be APPROVE or REJECT", nil, nil)
	}

	co, err := h.engine.ReviewCompanyVerification(c.Context(), actor, id, approve, req.Remark)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Verification updated", dto.NewCompanyResponse(co))
}

func (h *CompanyHandler) Resubmit(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	co, err := h.engine.ResubmitAfterRejection(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Verification resubmitted", dto.NewCompanyResponse(co))
}
