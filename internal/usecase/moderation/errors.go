package moderation

import (
	"errors"
	"fmt"
	"strings"

	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")

	// ErrConflictingTransition is the parent of every state-conflict error.
	// A caller that lost a race, or acted on a stale view, receives it.
	ErrConflictingTransition = errors.New("conflicting transition")

	ErrAlreadyApproved    = fmt.Errorf("%w: listing already approved", ErrConflictingTransition)
	ErrAlreadyFinal       = fmt.Errorf("%w: listing rejection is final", ErrConflictingTransition)
	ErrAlreadySuspended   = fmt.Errorf("%w: listing already suspended", ErrConflictingTransition)
	ErrDuplicateReport    = fmt.Errorf("%w: open report already filed for this listing", ErrConflictingTransition)
	ErrDuplicateAppeal    = fmt.Errorf("%w: listing already has an open appeal", ErrConflictingTransition)
	ErrAppealClosed       = fmt.Errorf("%w: appeal already rejected for this decision", ErrConflictingTransition)
	ErrListingUnderReview = fmt.Errorf("%w: listing has open reports or appeals", ErrConflictingTransition)
	ErrCompanyDisabled    = fmt.Errorf("%w: company is disabled", ErrConflictingTransition)
	ErrCascadeInProgress  = fmt.Errorf("%w: company cascade already running", ErrConflictingTransition)

	ErrInvalidReason     = fmt.Errorf("%w: reason too short", ErrValidation)
	ErrCompanyCannotPost = fmt.Errorf("%w: company is not verified or is disabled", ErrForbidden)

	// ErrCascadeIncomplete means some listings could not be suspended; the
	// cascade is safe to run again.
	ErrCascadeIncomplete = errors.New("company cascade incomplete")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the offending fields. It matches ErrValidation, or
// the more specific cause it was built from.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.cause.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return e.cause }

type fieldErrors struct {
	fields []FieldError
	cause  error
}

func (v *fieldErrors) add(field, msg string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: msg})
}

func (v *fieldErrors) because(cause error) {
	if v.cause == nil {
		v.cause = cause
	}
}

func (v *fieldErrors) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	cause := v.cause
	if cause == nil {
		cause = ErrValidation
	}
	return &ValidationError{Fields: v.fields, cause: cause}
}

func invalid(cause error, field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}, cause: cause}
}

// StateError reports the freshly read state that blocked a transition so the
// caller can refresh its view.
type StateError struct {
	Entity  string
	ID      uuid.UUID
	Current string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s is %s: %v", e.Entity, e.ID, e.Current, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func listingState(l listing.Listing, err error) error {
	return &StateError{Entity: "listing", ID: l.ID, Current: string(l.Status), Err: err}
}

func reportState(r report.Report, err error) error {
	return &StateError{Entity: "report", ID: r.ID, Current: string(r.Status), Err: err}
}

func appealState(a appeal.Appeal, err error) error {
	return &StateError{Entity: "appeal", ID: a.ID, Current: string(a.Status), Err: err}
}

func companyState(c company.Company, current string, err error) error {
	return &StateError{Entity: "company", ID: c.ID, Current: current, Err: err}
}

// normalizeStoreError folds repository errors into this package's taxonomy.
func normalizeStoreError(err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	var se *StateError
	if errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, listing.ErrNotFound),
		errors.Is(err, report.ErrNotFound),
		errors.Is(err, appeal.ErrNotFound),
		errors.Is(err, company.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, report.ErrDuplicateOpen):
		return fmt.Errorf("%w: %w", ErrDuplicateReport, err)
	case errors.Is(err, appeal.ErrDuplicateOpen):
		return fmt.Errorf("%w: %w", ErrDuplicateAppeal, err)
	case errors.Is(err, listing.ErrStaleVersion),
		errors.Is(err, report.ErrStaleVersion),
		errors.Is(err, appeal.ErrStaleVersion),
		errors.Is(err, company.ErrStaleVersion),
		errors.Is(err, repository.ErrTxConflict):
		return fmt.Errorf("%w: %w", ErrConflictingTransition, err)
	}
	return err
}

func isStoreNotFound(err error) bool {
	return errors.Is(normalizeStoreError(err), ErrNotFound)
}
