package moderation

import (
	"context"
	"strings"
	"unicode/utf8"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
)

type ReportInput struct {
	ListingID   uuid.UUID
	Type        report.Type
	Description string
	Files       []File
}

type ReportResult struct {
	Report report.Report
	Upload UploadSummary
}

type ReportView struct {
	Report       report.Report
	EvidenceURLs []string
}

type ReportAction string

const (
	ReportResolve ReportAction = "resolve"
	ReportDismiss ReportAction = "dismiss"
)

// FileReport records a job seeker's complaint about a live listing. A reporter
// may hold one open report per listing.
func (e *Engine) FileReport(ctx context.Context, actor user.Actor, in ReportInput) (ReportResult, error) {
	if actor.Role != user.RoleJobSeeker {
		return ReportResult{}, ErrForbidden
	}

	v := &fieldErrors{}
	if in.ListingID == uuid.Nil {
		v.add("listing_id", "is required")
	}
	if !in.Type.Valid() {
		v.add("type", "unknown report type")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < e.policy.MinReasonLength {
		v.add("description", "too short")
		v.because(ErrInvalidReason)
	}
	if len(in.Files) > e.policy.MaxEvidenceFiles {
		v.add("files", "too many files")
	}
	if err := v.err(); err != nil {
		return ReportResult{}, err
	}

	repos := e.store.Repos()
	l, err := repos.Listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return ReportResult{}, normalizeStoreError(err)
	}
	if !l.IsActive() {
		return ReportResult{}, listingState(l, ErrConflictingTransition)
	}
	dup, err := repos.Reports.HasOpenByReporter(ctx, l.ID, actor.ID)
	if err != nil {
		return ReportResult{}, normalizeStoreError(err)
	}
	if dup {
		return ReportResult{}, ErrDuplicateReport
	}

	keys, sum := e.uploadEvidence(ctx, "reports", actor.ID, in.Files)

	rep := report.Report{
		ID:           uuid.New(),
		ListingID:    l.ID,
		ReporterID:   actor.ID,
		Type:         in.Type,
		Description:  strings.TrimSpace(in.Description),
		EvidenceKeys: keys,
		Status:       report.StatusPending,
	}
	err = e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		dup, err := r.Reports.HasOpenByReporter(ctx, rep.ListingID, actor.ID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateReport
		}
		if err := r.Reports.Create(ctx, &rep); err != nil {
			return err
		}
		admins, err := r.Users.ListAdminIDs(ctx, e.policy.FanOutLimit)
		if err != nil {
			return err
		}
		for _, id := range admins {
			fx.notify(newReportMessage(id, rep))
		}
		return nil
	})
	if err != nil {
		e.discardEvidence(ctx, keys)
		return ReportResult{}, err
	}
	return ReportResult{Report: rep, Upload: sum}, nil
}

// ResolveReport and DismissReport close an open report on its own, without
// touching the listing.
func (e *Engine) ResolveReport(ctx context.Context, actor user.Actor, reportID uuid.UUID, notes string) (report.Report, error) {
	return e.closeReport(ctx, actor, reportID, report.StatusResolved, audit.ActionResolveReport, notes)
}

func (e *Engine) DismissReport(ctx context.Context, actor user.Actor, reportID uuid.UUID, notes string) (report.Report, error) {
	return e.closeReport(ctx, actor, reportID, report.StatusDismissed, audit.ActionDismissReport, notes)
}

func (e *Engine) ActOnReport(ctx context.Context, actor user.Actor, reportID uuid.UUID, action ReportAction, notes string) (report.Report, error) {
	switch action {
	case ReportResolve:
		return e.ResolveReport(ctx, actor, reportID, notes)
	case ReportDismiss:
		return e.DismissReport(ctx, actor, reportID, notes)
	default:
		return report.Report{}, invalid(ErrValidation, "action", "must be resolve or dismiss")
	}
}

func (e *Engine) closeReport(ctx context.Context, actor user.Actor, reportID uuid.UUID, to report.Status, action audit.ActionType, notes string) (report.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return report.Report{}, err
	}
	notes = strings.TrimSpace(notes)

	var out report.Report
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		rep, err := r.Reports.GetForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		// A report awaiting the employer's appeal is closed by adjudication.
		if !rep.Status.IsOpen() {
			return reportState(rep, ErrConflictingTransition)
		}

		rep.Close(to, actor.AuditID(), notes, e.now())
		if err := r.Reports.Update(ctx, &rep); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, action, audit.TargetReport, rep.ID, "", notes); err != nil {
			return err
		}
		fx.notify(reportActionMessage(rep))
		out = rep
		return nil
	})
	return out, err
}

func (e *Engine) MarkReportUnderReview(ctx context.Context, actor user.Actor, reportID uuid.UUID) (report.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return report.Report{}, err
	}

	var out report.Report
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		rep, err := r.Reports.GetForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		if rep.Status != report.StatusPending {
			return reportState(rep, ErrConflictingTransition)
		}
		rep.Status = report.StatusUnderReview
		if err := r.Reports.Update(ctx, &rep); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionReviewReport, audit.TargetReport, rep.ID, "", ""); err != nil {
			return err
		}
		out = rep
		return nil
	})
	return out, err
}

// GetReport is visible to admins and the reporter. Evidence comes back as
// freshly signed URLs.
func (e *Engine) GetReport(ctx context.Context, actor user.Actor, reportID uuid.UUID) (ReportView, error) {
	rep, err := e.store.Repos().Reports.GetByID(ctx, reportID)
	if err != nil {
		return ReportView{}, normalizeStoreError(err)
	}
	if !actor.IsAdmin() && rep.ReporterID != actor.ID {
		return ReportView{}, ErrForbidden
	}
	return ReportView{Report: rep, EvidenceURLs: e.signKeys(ctx, rep.EvidenceKeys)}, nil
}

func (e *Engine) ListReports(ctx context.Context, actor user.Actor, f report.Filter) ([]report.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid(ErrValidation, "status", "unknown report status")
	}
	f.Limit, f.Offset = repository.NormalizePage(f.Limit, f.Offset)
	out, err := e.store.Repos().Reports.List(ctx, f)
	if err != nil {
		return nil, normalizeStoreError(err)
	}
	return out, nil
}
