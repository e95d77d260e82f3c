package dto

import (
	"time"

	"blue-collar-portal/internal/domain/audit"

	"github.com/google/uuid"
)

type AuditEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id"`
	ActorRole  string     `json:"actor_role"`
	Action     string     `json:"action"`
	TargetType string     `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	Reason     *string    `json:"reason"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewAuditEntryResponses(items []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, AuditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Action:     string(e.Action),
			TargetType: string(e.TargetType),
			TargetID:   e.TargetID,
			Reason:     e.Reason,
			Notes:      e.Notes,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
