package report

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending                 Status = "PENDING"
	StatusUnderReview             Status = "UNDER_REVIEW"
	StatusResolved                Status = "RESOLVED"
	StatusDismissed               Status = "DISMISSED"
	StatusPendingEmployerResponse Status = "PENDING_EMPLOYER_RESPONSE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusResolved, StatusDismissed, StatusPendingEmployerResponse:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the report still counts toward the one-open-report
// per reporter and listing rule.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

// IsClosed reports whether an admin has already decided the report.
func (s Status) IsClosed() bool {
	return s == StatusResolved || s == StatusDismissed
}

type Type string

const (
	TypeFraud          Type = "FRAUD"
	TypeMisleading     Type = "MISLEADING"
	TypeDiscriminatory Type = "DISCRIMINATORY"
	TypeInappropriate  Type = "INAPPROPRIATE"
	TypeScam           Type = "SCAM"
	TypeOther          Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFraud, TypeMisleading, TypeDiscriminatory, TypeInappropriate, TypeScam, TypeOther:
		return true
	default:
		return false
	}
}

type Report struct {
	ID           uuid.UUID
	ListingID    uuid.UUID
	ReporterID   uuid.UUID
	Type         Type
	Description  string
	EvidenceKeys []string
	Status       Status
	AdminNotes   *string
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *Report) Close(status Status, by *uuid.UUID, notes string, now time.Time) {
	t := now
	r.Status = status
	r.ReviewedBy = by
	r.ReviewedAt = &t
	if notes != "" {
		n := notes
		r.AdminNotes = &n
	}
}

type Filter struct {
	Status    *Status
	ListingID *uuid.UUID
	Limit     int
	Offset    int
}
