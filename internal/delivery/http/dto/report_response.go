package dto

import (
	"time"

	"blue-collar-portal/internal/domain/report"

	"github.com/google/uuid"
)

type ReportResponse struct {
	ID            uuid.UUID  `json:"id"`
	ListingID     uuid.UUID  `json:"listing_id"`
	ReporterID    uuid.UUID  `json:"reporter_id"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	EvidenceCount int        `json:"evidence_count"`
	EvidenceURLs  []string   `json:"evidence_urls,omitempty"`
	Status        string     `json:"status"`
	AdminNotes    *string    `json:"admin_notes"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewReportResponse(r report.Report) ReportResponse {
	return ReportResponse{
		ID:            r.ID,
		ListingID:     r.ListingID,
		ReporterID:    r.ReporterID,
		Type:          string(r.Type),
		Description:   r.Description,
		EvidenceCount: len(r.EvidenceKeys),
		Status:        string(r.Status),
		AdminNotes:    r.AdminNotes,
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func NewReportResponses(items []report.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, r := range items {
		out = append(out, NewReportResponse(r))
	}
	return out
}

type UploadResponse struct {
	Stored int `json:"stored"`
	Failed int `json:"failed"`
}
