package moderation

import (
	"context"
	"strings"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdminApprove publishes a listing waiting for review or rejected by
// screening. Suspended and appealed listings have their own paths.
func (e *Engine) AdminApprove(ctx context.Context, actor user.Actor, listingID uuid.UUID) (listing.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return listing.Listing{}, err
	}

	var out listing.Listing
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		switch l.Status {
		case listing.StatusPending, listing.StatusRejectedAI:
		case listing.StatusApproved:
			return listingState(l, ErrAlreadyApproved)
		case listing.StatusRejectedFinal:
			return listingState(l, ErrAlreadyFinal)
		default:
			return listingState(l, ErrConflictingTransition)
		}
		if err := ensureCompanyActive(ctx, r, l); err != nil {
			return err
		}

		l.Approve(e.now())
		if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionApproveListing, audit.TargetListing, l.ID, "", ""); err != nil {
			return err
		}

		fx.notify(approvedMessage(l))
		seekers, err := r.Users.ListJobSeekerIDsByIndustry(ctx, l.IndustryID, e.policy.FanOutLimit)
		if err != nil {
			return err
		}
		for _, id := range seekers {
			fx.notify(newListingMessage(id, l))
		}
		out = l
		return nil
	})
	return out, err
}

// AdminReject closes a listing for good. Appealed listings are decided
// through the appeal instead.
func (e *Engine) AdminReject(ctx context.Context, actor user.Actor, listingID uuid.UUID, reason string) (listing.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return listing.Listing{}, err
	}
	if !e.validReason(reason) {
		return listing.Listing{}, e.reasonError("reason")
	}
	reason = strings.TrimSpace(reason)

	var out listing.Listing
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		switch l.Status {
		case listing.StatusRejectedFinal:
			return listingState(l, ErrAlreadyFinal)
		case listing.StatusAppealed:
			return listingState(l, ErrConflictingTransition)
		}

		l.RejectFinal(reason)
		if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionRejectListing, audit.TargetListing, l.ID, reason, ""); err != nil {
			return err
		}
		fx.notify(rejectedFinalMessage(l))
		fx.translate(l.ID, reason)
		out = l
		return nil
	})
	return out, err
}

// Suspend takes an approved listing down. When reportID is given the report
// is resolved in the same transaction and its reporter told.
func (e *Engine) Suspend(ctx context.Context, actor user.Actor, listingID uuid.UUID, reason string, reportID *uuid.UUID) (listing.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return listing.Listing{}, err
	}
	if !e.validReason(reason) {
		return listing.Listing{}, e.reasonError("reason")
	}
	reason = strings.TrimSpace(reason)

	var out listing.Listing
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if err := suspendable(l); err != nil {
			return err
		}

		if reportID != nil {
			rep, err := r.Reports.GetForUpdate(ctx, *reportID)
			if err != nil {
				return err
			}
			if rep.ListingID != l.ID {
				return invalid(ErrValidation, "report_id", "report belongs to another listing")
			}
			if !rep.Status.IsOpen() {
				return reportState(rep, ErrConflictingTransition)
			}
			rep.Close(report.StatusResolved, actor.AuditID(), "Listing suspended: "+reason, e.now())
			if err := r.Reports.Update(ctx, &rep); err != nil {
				return err
			}
			if err := e.record(ctx, r, actor, audit.ActionResolveReport, audit.TargetReport, rep.ID, reason, ""); err != nil {
				return err
			}
			fx.notify(reportActionMessage(rep))
		}

		if err := e.suspendListing(ctx, r, fx, actor, &l, reason, reportID); err != nil {
			return err
		}
		fx.notify(suspendedMessage(l))
		out = l
		return nil
	})
	return out, err
}

func suspendable(l listing.Listing) error {
	switch l.Status {
	case listing.StatusApproved:
		return nil
	case listing.StatusSuspended:
		return listingState(l, ErrAlreadySuspended)
	case listing.StatusRejectedFinal:
		return listingState(l, ErrAlreadyFinal)
	default:
		return listingState(l, ErrConflictingTransition)
	}
}

func (e *Engine) suspendListing(ctx context.Context, r repository.Repositories, fx *effects, actor user.Actor, l *listing.Listing, reason string, reportID *uuid.UUID) error {
	l.Suspend(actor.AuditID(), reason, reportID, e.now())
	l.ReviewNotes = nil
	if err := r.Listings.Update(ctx, l); err != nil {
		return err
	}
	if err := e.record(ctx, r, actor, audit.ActionSuspendListing, audit.TargetListing, l.ID, reason, ""); err != nil {
		return err
	}
	fx.translate(l.ID, reason)
	return nil
}

// AdminUnsuspend lifts a suspension directly, without an appeal.
func (e *Engine) AdminUnsuspend(ctx context.Context, actor user.Actor, listingID uuid.UUID, notes string) (listing.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return listing.Listing{}, err
	}

	var out listing.Listing
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if l.Status != listing.StatusSuspended {
			return listingState(l, ErrConflictingTransition)
		}
		if err := ensureCompanyActive(ctx, r, l); err != nil {
			return err
		}

		l.Approve(e.now())
		l.ReviewNotes = optional(notes)
		if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionUnsuspendListing, audit.TargetListing, l.ID, "", notes); err != nil {
			return err
		}
		fx.notify(unsuspendedMessage(l))
		out = l
		return nil
	})
	if err == nil {
		e.logger.WithFields(logrus.Fields{"listing_id": listingID, "admin_id": actor.ID}).Info("listing unsuspended")
	}
	return out, err
}

// ensureCompanyActive refuses to publish a listing of a disabled company.
func ensureCompanyActive(ctx context.Context, r repository.Repositories, l listing.Listing) error {
	c, err := r.Companies.GetByID(ctx, l.CompanyID)
	if err != nil {
		return err
	}
	if c.IsDisabled {
		return listingState(l, ErrCompanyDisabled)
	}
	return nil
}
