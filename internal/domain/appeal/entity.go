package appeal

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAIRejection Type = "AI_REJECTION"
	TypeSuspension  Type = "SUSPENSION"
)

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Appeal is an employer's request to reverse an AI rejection or a suspension.
// ReportID is set only for suspensions that were triggered by a report.
type Appeal struct {
	ID           uuid.UUID
	ListingID    uuid.UUID
	ReportID     *uuid.UUID
	EmployerID   uuid.UUID
	Type         Type
	Explanation  string
	EvidenceKeys []string
	Status       Status
	AdminNotes   *string
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Appeal) Close(d Decision, by uuid.UUID, notes string, now time.Time) {
	t := now
	reviewer := by
	a.Status = StatusRejected
	if d == DecisionApprove {
		a.Status = StatusAccepted
	}
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &t
	if notes != "" {
		n := notes
		a.AdminNotes = &n
	}
}

type Filter struct {
	Status     *Status
	ListingID  *uuid.UUID
	EmployerID *uuid.UUID
	Limit      int
	Offset     int
}
