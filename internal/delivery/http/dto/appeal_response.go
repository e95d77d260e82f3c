package dto

import (
	"time"

	"blue-collar-portal/internal/domain/appeal"

	"github.com/google/uuid"
)

type AppealResponse struct {
	ID            uuid.UUID  `json:"id"`
	ListingID     uuid.UUID  `json:"listing_id"`
	ReportID      *uuid.UUID `json:"report_id"`
	EmployerID    uuid.UUID  `json:"employer_id"`
	Type          string     `json:"type"`
	Explanation   string     `json:"explanation"`
	EvidenceCount int        `json:"evidence_count"`
	EvidenceURLs  []string   `json:"evidence_urls,omitempty"`
	Status        string     `json:"status"`
	AdminNotes    *string    `json:"admin_notes"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewAppealResponse(a appeal.Appeal) AppealResponse {
	return AppealResponse{
		ID:            a.ID,
		ListingID:     a.ListingID,
		ReportID:      a.ReportID,
		EmployerID:    a.EmployerID,
		Type:          string(a.Type),
		Explanation:   a.Explanation,
		EvidenceCount: len(a.EvidenceKeys),
		Status:        string(a.Status),
		AdminNotes:    a.AdminNotes,
		ReviewedBy:    a.ReviewedBy,
		ReviewedAt:    a.ReviewedAt,
		CreatedAt:     a.CreatedAt,
	}
}

func NewAppealResponses(items []appeal.Appeal) []AppealResponse {
	out := make([]AppealResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAppealResponse(a))
	}
	return out
}
