package moderation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
)

type AppealResult struct {
	Appeal  appeal.Appeal
	Listing listing.Listing
	Upload  UploadSummary
}

type AppealView struct {
	Appeal       appeal.Appeal
	EvidenceURLs []string
}

type AdjudicationResult struct {
	Appeal  appeal.Appeal
	Listing listing.Listing
}

// appealCause maps the listing's adverse status to the kind of appeal it
// admits.
func appealCause(l listing.Listing) (appeal.Type, *uuid.UUID, error) {
	switch l.Status {
	case listing.StatusRejectedAI:
		return appeal.TypeAIRejection, nil, nil
	case listing.StatusSuspended:
		return appeal.TypeSuspension, l.SuspensionReportID, nil
	case listing.StatusAppealed:
		return "", nil, listingState(l, ErrDuplicateAppeal)
	case listing.StatusRejectedFinal:
		return "", nil, listingState(l, ErrAlreadyFinal)
	default:
		return "", nil, listingState(l, ErrConflictingTransition)
	}
}

func (e *Engine) checkAppealable(ctx context.Context, r repository.Repositories, l listing.Listing, t appeal.Type, reportID *uuid.UUID) error {
	open, err := r.Appeals.HasOpenForListing(ctx, l.ID)
	if err != nil {
		return err
	}
	if open {
		return listingState(l, ErrDuplicateAppeal)
	}
	if e.policy.AllowAppealAfterRejection {
		return nil
	}
	q := appeal.Decided{ListingID: l.ID, Type: t, ReportID: reportID}
	if t == appeal.TypeSuspension && l.SuspendedAt != nil {
		q.Since = *l.SuspendedAt
	}
	rejected, err := r.Appeals.HasRejected(ctx, q)
	if err != nil {
		return err
	}
	if rejected {
		return listingState(l, ErrAppealClosed)
	}
	return nil
}

// SubmitAppeal lets the owning employer contest an AI rejection or a
// suspension. The listing moves to APPEALED; a report behind the suspension
// waits for the employer's response.
func (e *Engine) SubmitAppeal(ctx context.Context, actor user.Actor, listingID uuid.UUID, explanation string, files []File) (AppealResult, error) {
	if !actor.IsEmployer() {
		return AppealResult{}, ErrForbidden
	}
	explanation = strings.TrimSpace(explanation)
	v := &fieldErrors{}
	if utf8.RuneCountInString(explanation) < e.policy.MinAppealLength {
		v.add("explanation", fmt.Sprintf("must be at least %d characters", e.policy.MinAppealLength))
		v.because(ErrInvalidReason)
	}
	if len(files) > e.policy.MaxEvidenceFiles {
		v.add("files", "too many files")
	}
	if err := v.err(); err != nil {
		return AppealResult{}, err
	}

	repos := e.store.Repos()
	before, err := repos.Listings.GetByID(ctx, listingID)
	if err != nil {
		return AppealResult{}, normalizeStoreError(err)
	}
	if !before.IsOwnedBy(actor.ID) {
		return AppealResult{}, ErrForbidden
	}
	kind, reportID, err := appealCause(before)
	if err != nil {
		return AppealResult{}, err
	}
	if err := e.checkAppealable(ctx, repos, before, kind, reportID); err != nil {
		return AppealResult{}, normalizeStoreError(err)
	}

	keys, sum := e.uploadEvidence(ctx, "appeals", actor.ID, files)

	var out AppealResult
	err = e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if l.Status != before.Status {
			if _, _, err := appealCause(l); err != nil {
				return err
			}
			return listingState(l, ErrConflictingTransition)
		}
		if err := e.checkAppealable(ctx, r, l, kind, reportID); err != nil {
			return err
		}

		a := appeal.Appeal{
			ID:           uuid.New(),
			ListingID:    l.ID,
			ReportID:     reportID,
			EmployerID:   actor.ID,
			Type:         kind,
			Explanation:  explanation,
			EvidenceKeys: keys,
			Status:       appeal.StatusPending,
		}
		if err := r.Appeals.Create(ctx, &a); err != nil {
			return err
		}

		if reportID != nil {
			rep, err := r.Reports.GetForUpdate(ctx, *reportID)
			switch {
			case err == nil:
				rep.Status = report.StatusPendingEmployerResponse
				if err := r.Reports.Update(ctx, &rep); err != nil {
					return err
				}
			case !isStoreNotFound(err):
				return err
			}
		}

		l.Status = listing.StatusAppealed
		if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionSubmitAppeal, audit.TargetListing, l.ID, explanation, a.ID.String()); err != nil {
			return err
		}

		fx.notify(appealReceivedMessage(a, l))
		admins, err := r.Users.ListAdminIDs(ctx, e.policy.FanOutLimit)
		if err != nil {
			return err
		}
		for _, id := range admins {
			fx.notify(newAppealMessage(id, a))
		}
		out = AppealResult{Appeal: a, Listing: l, Upload: sum}
		return nil
	})
	if err != nil {
		e.discardEvidence(ctx, keys)
		return AppealResult{}, err
	}
	return out, nil
}

// AdjudicateAppeal decides an open appeal. Approval restores the listing and
// dismisses the linked report; rejection finalizes an AI rejection or puts a
// suspension back in place.
func (e *Engine) AdjudicateAppeal(ctx context.Context, actor user.Actor, appealID uuid.UUID, decision appeal.Decision, notes string) (AdjudicationResult, error) {
	if err := requireAdmin(actor); err != nil {
		return AdjudicationResult{}, err
	}
	if !decision.Valid() {
		return AdjudicationResult{}, invalid(ErrValidation, "decision", "must be APPROVE or REJECT")
	}
	notes = strings.TrimSpace(notes)
	if decision == appeal.DecisionReject && !e.validReason(notes) {
		return AdjudicationResult{}, e.reasonError("notes")
	}

	var out AdjudicationResult
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		a, err := r.Appeals.GetForUpdate(ctx, appealID)
		if err != nil {
			return err
		}
		if !a.Status.IsOpen() {
			return appealState(a, ErrConflictingTransition)
		}
		l, err := r.Listings.GetForUpdate(ctx, a.ListingID)
		if err != nil {
			return err
		}
		if l.Status != listing.StatusAppealed {
			return listingState(l, ErrConflictingTransition)
		}
		if decision == appeal.DecisionApprove {
			if err := ensureCompanyActive(ctx, r, l); err != nil {
				return err
			}
		}

		now := e.now()
		var rep *report.Report
		if a.ReportID != nil {
			got, err := r.Reports.GetForUpdate(ctx, *a.ReportID)
			switch {
			case err == nil:
				rep = &got
			case !isStoreNotFound(err):
				return err
			}
		}

		action := audit.ActionApproveAppeal
		if decision == appeal.DecisionApprove {
			l.Approve(now)
			l.ReviewNotes = optional(notes)
			if rep != nil {
				rep.Close(report.StatusDismissed, actor.AuditID(), notes, now)
			}
		} else {
			action = audit.ActionRejectAppeal
			switch a.Type {
			case appeal.TypeAIRejection:
				l.RejectFinal("Appeal rejected: " + notes)
			default:
				if l.SuspendedAt == nil {
					l.Suspend(actor.AuditID(), notes, a.ReportID, now)
				}
				l.Status = listing.StatusSuspended
				l.ReviewNotes = optional(notes)
			}
			if rep != nil {
				rep.Close(report.StatusResolved, actor.AuditID(), notes, now)
			}
		}

		a.Close(decision, actor.ID, notes, now)
		if err := r.Appeals.Update(ctx, &a); err != nil {
			return err
		}
		if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, action, audit.TargetAppeal, a.ID, "", notes); err != nil {
			return err
		}
		if rep != nil {
			if err := r.Reports.Update(ctx, rep); err != nil {
				return err
			}
			reportAction := audit.ActionDismissReport
			if rep.Status == report.StatusResolved {
				reportAction = audit.ActionResolveReport
			}
			if err := e.record(ctx, r, actor, reportAction, audit.TargetReport, rep.ID, "", notes); err != nil {
				return err
			}
			fx.notify(reportActionMessage(*rep))
		}

		fx.notify(appealDecisionMessage(a, l))
		if l.Status == listing.StatusRejectedFinal {
			fx.translate(l.ID, deref(l.RejectionReason))
		}
		out = AdjudicationResult{Appeal: a, Listing: l}
		return nil
	})
	return out, err
}

func (e *Engine) MarkAppealUnderReview(ctx context.Context, actor user.Actor, appealID uuid.UUID) (appeal.Appeal, error) {
	if err := requireAdmin(actor); err != nil {
		return appeal.Appeal{}, err
	}

	var out appeal.Appeal
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		a, err := r.Appeals.GetForUpdate(ctx, appealID)
		if err != nil {
			return err
		}
		if a.Status != appeal.StatusPending {
			return appealState(a, ErrConflictingTransition)
		}
		a.Status = appeal.StatusUnderReview
		if err := r.Appeals.Update(ctx, &a); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionReviewAppeal, audit.TargetAppeal, a.ID, "", ""); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (e *Engine) GetAppeal(ctx context.Context, actor user.Actor, appealID uuid.UUID) (AppealView, error) {
	a, err := e.store.Repos().Appeals.GetByID(ctx, appealID)
	if err != nil {
		return AppealView{}, normalizeStoreError(err)
	}
	if !actor.IsAdmin() && a.EmployerID != actor.ID {
		return AppealView{}, ErrForbidden
	}
	return AppealView{Appeal: a, EvidenceURLs: e.signKeys(ctx, a.EvidenceKeys)}, nil
}

// ListAppeals shows admins every appeal and employers only their own.
func (e *Engine) ListAppeals(ctx context.Context, actor user.Actor, f appeal.Filter) ([]appeal.Appeal, error) {
	switch {
	case actor.IsAdmin():
	case actor.IsEmployer():
		id := actor.ID
		f.EmployerID = &id
	default:
		return nil, ErrForbidden
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid(ErrValidation, "status", "unknown appeal status")
	}
	f.Limit, f.Offset = repository.NormalizePage(f.Limit, f.Offset)
	out, err := e.store.Repos().Appeals.List(ctx, f)
	if err != nil {
		return nil, normalizeStoreError(err)
	}
	return out, nil
}
