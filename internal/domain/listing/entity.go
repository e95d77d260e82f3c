package listing

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusApproved      Status = "APPROVED"
	StatusRejectedAI    Status = "REJECTED_AI"
	StatusRejectedFinal Status = "REJECTED_FINAL"
	StatusAppealed      Status = "APPEALED"
	StatusSuspended     Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejectedAI, StatusRejectedFinal, StatusAppealed, StatusSuspended:
		return true
	default:
		return false
	}
}

type Content struct {
	Title       string
	Description string
	Location    string
	IndustryID  uuid.UUID
	SalaryMin   *int
	SalaryMax   *int
}

type Listing struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	EmployerID uuid.UUID

	Content

	Status          Status
	RiskScore       *int
	RiskFlags       []string
	RejectionReason *string

	SuspendedAt        *time.Time
	SuspendedBy        *uuid.UUID
	SuspensionReason   *string
	SuspensionReportID *uuid.UUID

	ReviewNotes        *string
	ReasonTranslations map[string]string

	ApprovedAt *time.Time
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive is derived from the status; only approved listings are visible.
func (l Listing) IsActive() bool {
	return l.Status == StatusApproved && l.SuspendedAt == nil
}

func (l Listing) IsFinal() bool {
	return l.Status == StatusRejectedFinal
}

func (l *Listing) Approve(now time.Time) {
	l.Status = StatusApproved
	l.SetRejectionReason(nil)
	l.ClearSuspension()
	if l.ApprovedAt == nil {
		t := now
		l.ApprovedAt = &t
	}
}

func (l *Listing) Suspend(by *uuid.UUID, reason string, reportID *uuid.UUID, now time.Time) {
	t := now
	r := reason
	l.Status = StatusSuspended
	l.SuspendedAt = &t
	l.SuspendedBy = by
	l.SuspensionReason = &r
	l.SuspensionReportID = reportID
	l.SetRejectionReason(&r)
}

func (l *Listing) ClearSuspension() {
	l.SuspendedAt = nil
	l.SuspendedBy = nil
	l.SuspensionReason = nil
	l.SuspensionReportID = nil
	l.ReasonTranslations = nil
}

func (l *Listing) RejectFinal(reason string) {
	r := reason
	l.Status = StatusRejectedFinal
	l.ClearSuspension()
	l.SetRejectionReason(&r)
}

// SetRejectionReason replaces the reason shown to the employer. Translations
// of the previous reason are dropped.
func (l *Listing) SetRejectionReason(reason *string) {
	l.RejectionReason = reason
	l.ReasonTranslations = nil
}

func (l Listing) IsOwnedBy(employerID uuid.UUID) bool {
	return l.EmployerID == employerID
}

type Filter struct {
	Status    *Status
	CompanyID *uuid.UUID
	Limit     int
	Offset    int
}
