package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionAIScreening      ActionType = "AI_SCREENING"
	ActionAIRescreening    ActionType = "AI_RESCREENING"
	ActionApproveListing   ActionType = "APPROVE_LISTING"
	ActionRejectListing    ActionType = "REJECT_LISTING"
	ActionSuspendListing   ActionType = "SUSPEND_LISTING"
	ActionUnsuspendListing ActionType = "UNSUSPEND_LISTING"
	ActionDeleteListing    ActionType = "DELETE_LISTING"
	ActionResolveReport    ActionType = "RESOLVE_REPORT"
	ActionDismissReport    ActionType = "DISMISS_REPORT"
	ActionReviewReport     ActionType = "REVIEW_REPORT"
	ActionSubmitAppeal     ActionType = "SUBMIT_APPEAL"
	ActionReviewAppeal     ActionType = "REVIEW_APPEAL"
	ActionApproveAppeal    ActionType = "APPROVE_APPEAL"
	ActionRejectAppeal     ActionType = "REJECT_APPEAL"
	ActionDisableCompany   ActionType = "DISABLE_COMPANY"
	ActionEnableCompany    ActionType = "ENABLE_COMPANY"
	ActionVerifyCompany    ActionType = "VERIFY_COMPANY"
	ActionRejectCompany    ActionType = "REJECT_COMPANY_VERIFICATION"
	ActionResubmitCompany  ActionType = "RESUBMIT_COMPANY_VERIFICATION"
	ActionSuspendUser      ActionType = "SUSPEND_USER"
	ActionReactivateUser   ActionType = "REACTIVATE_USER"
)

type TargetType string

const (
	TargetListing TargetType = "JOB_LISTING"
	TargetReport  TargetType = "REPORT"
	TargetAppeal  TargetType = "APPEAL"
	TargetCompany TargetType = "COMPANY"
	TargetUser    TargetType = "USER"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetListing, TargetReport, TargetAppeal, TargetCompany, TargetUser:
		return true
	default:
		return false
	}
}

// Entry is one immutable audit record. ActorID is nil for system actions.
type Entry struct {
	ID         uuid.UUID
	ActorID    *uuid.UUID
	ActorRole  string
	Action     ActionType
	TargetType TargetType
	TargetID   uuid.UUID
	Reason     *string
	Notes      *string
	CreatedAt  time.Time
}

type Filter struct {
	TargetType *TargetType
	TargetID   *uuid.UUID
	Limit      int
	Offset     int
}

// Repository is append-only: there is no update or delete.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
}
