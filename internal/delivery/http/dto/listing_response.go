package dto

import (
	"time"

	"blue-collar-portal/internal/domain/listing"

	"github.com/google/uuid"
)

type ListingResponse struct {
	ID                 uuid.UUID         `json:"id"`
	CompanyID          uuid.UUID         `json:"company_id"`
	EmployerID         uuid.UUID         `json:"employer_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Location           string            `json:"location"`
	IndustryID         uuid.UUID         `json:"industry_id"`
	SalaryMin          *int              `json:"salary_min"`
	SalaryMax          *int              `json:"salary_max"`
	Status             string            `json:"status"`
	IsActive           bool              `json:"is_active"`
	RiskScore          *int              `json:"risk_score"`
	RiskFlags          []string          `json:"risk_flags"`
	RejectionReason    *string           `json:"rejection_reason"`
	ReasonTranslations map[string]string `json:"reason_translations,omitempty"`
	SuspendedAt        *time.Time        `json:"suspended_at"`
	SuspensionReason   *string           `json:"suspension_reason"`
	SuspensionReportID *uuid.UUID        `json:"suspension_report_id"`
	ReviewNotes        *string           `json:"review_notes"`
	ApprovedAt         *time.Time        `json:"approved_at"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func NewListingResponse(l listing.Listing) ListingResponse {
	flags := l.RiskFlags
	if flags == nil {
		flags = []string{}
	}
	return ListingResponse{
		ID:                 l.ID,
		CompanyID:          l.CompanyID,
		EmployerID:         l.EmployerID,
		Title:              l.Title,
		Description:        l.Description,
		Location:           l.Location,
		IndustryID:         l.IndustryID,
		SalaryMin:          l.SalaryMin,
		SalaryMax:          l.SalaryMax,
		Status:             string(l.Status),
		IsActive:           l.IsActive(),
		RiskScore:          l.RiskScore,
		RiskFlags:          flags,
		RejectionReason:    l.RejectionReason,
		ReasonTranslations: l.ReasonTranslations,
		SuspendedAt:        l.SuspendedAt,
		SuspensionReason:   l.SuspensionReason,
		SuspensionReportID: l.SuspensionReportID,
		ReviewNotes:        l.ReviewNotes,
		ApprovedAt:         l.ApprovedAt,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func NewListingResponses(items []listing.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, NewListingResponse(l))
	}
	return out
}

// ScreeningResponse is returned when a listing is created or re-screened.
type ScreeningResponse struct {
	Listing   ListingResponse `json:"listing"`
	RiskScore *int            `json:"risk_score"`
	Degraded  bool            `json:"screening_degraded"`
}
