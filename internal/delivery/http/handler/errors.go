package handler

import (
	"errors"

	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/inbox"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type conflictData struct {
	Entity        string    `json:"entity"`
	ID            uuid.UUID `json:"id"`
	CurrentStatus string    `json:"current_status"`
}

func mapModerationError(err error) error {
	if err == nil {
		return nil
	}

	var ve *moderation.ValidationError
	var se *moderation.StateError
	switch {
	case errors.As(err, &ve):
		return middleware.NewAppError(fiber.StatusBadRequest, ve.Unwrap().Error(), fiber.Map{"fields": ve.Fields}, err)
	case errors.Is(err, moderation.ErrValidation):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, moderation.ErrForbidden):
		msg := "Forbidden"
		if errors.Is(err, moderation.ErrCompanyCannotPost) {
			msg = "Company is not verified or is disabled"
		}
		return middleware.NewAppError(fiber.StatusForbidden, msg, nil, err)
	case errors.Is(err, moderation.ErrNotFound), errors.Is(err, inbox.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	case errors.As(err, &se):
		return middleware.NewAppError(fiber.StatusConflict, se.Err.Error(), conflictData{
			Entity:        se.Entity,
			ID:            se.ID,
			CurrentStatus: se.Current,
		}, err)
	case errors.Is(err, moderation.ErrConflictingTransition):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
