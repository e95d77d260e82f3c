package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sweepBatchSize = 50

type CascadeResult struct {
	CompanyID uuid.UUID `json:"company_id"`
	Suspended int       `json:"suspended"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

func cascadeReason(reason string) string {
	return "Company disabled by administrator: " + reason
}

// DisableCompanyCascade disables a company, suspends its owner and then every
// approved listing, one transaction per listing. Listings that are no longer
// approved are skipped, so a partial run can simply be repeated.
func (e *Engine) DisableCompanyCascade(ctx context.Context, actor user.Actor, companyID uuid.UUID, reason string) (CascadeResult, error) {
	if err := requireAdminOrSystem(actor); err != nil {
		return CascadeResult{}, err
	}
	reason = strings.TrimSpace(reason)
	if actor.IsAdmin() && !e.validReason(reason) {
		return CascadeResult{}, e.reasonError("reason")
	}

	if e.locker != nil {
		release, ok, err := e.locker.Acquire(ctx, "moderation:cascade:lock:"+companyID.String(), e.policy.CascadeLockTTL)
		switch {
		case err != nil:
			e.logger.WithFields(logrus.Fields{"company_id": companyID}).WithError(err).Warn("cascade lock unavailable, continuing unlocked")
		case !ok:
			return CascadeResult{}, ErrCascadeInProgress
		default:
			defer release()
		}
	}

	res := CascadeResult{CompanyID: companyID}

	var c company.Company
	newlyDisabled := false
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		var err error
		c, err = r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}

		if !c.IsDisabled {
			if reason == "" {
				return e.reasonError("reason")
			}
			now := e.now()
			c.IsDisabled = true
			c.DisabledReason = &reason
			c.DisabledBy = actor.AuditID()
			c.DisabledAt = &now
			if err := r.Companies.Update(ctx, &c); err != nil {
				return err
			}
			if err := e.record(ctx, r, actor, audit.ActionDisableCompany, audit.TargetCompany, c.ID, reason, ""); err != nil {
				return err
			}
			newlyDisabled = true
		}

		owner, err := r.Users.GetByID(ctx, c.OwnerUserID)
		if err != nil {
			return err
		}
		if owner.Status != user.StatusSuspended {
			if err := r.Users.SetStatus(ctx, owner.ID, user.StatusSuspended); err != nil {
				return err
			}
			if err := e.record(ctx, r, actor, audit.ActionSuspendUser, audit.TargetUser, owner.ID, deref(c.DisabledReason), ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CascadeResult{}, err
	}

	ids, err := e.store.Repos().Listings.ListApprovedByCompany(ctx, companyID)
	if err != nil {
		return res, normalizeStoreError(err)
	}

	listingReason := cascadeReason(deref(c.DisabledReason))
	for _, id := range ids {
		skipped := false
		err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
			l, err := r.Listings.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if l.Status != listing.StatusApproved {
				skipped = true
				return nil
			}
			return e.suspendListing(ctx, r, fx, actor, &l, listingReason, nil)
		})
		switch {
		case err != nil:
			res.Failed++
			e.logger.WithFields(logrus.Fields{"company_id": companyID, "listing_id": id}).WithError(err).Warn("cascade suspension failed")
		case skipped:
			res.Skipped++
		default:
			res.Suspended++
		}
	}

	if newlyDisabled || res.Suspended > 0 {
		e.release(&effects{messages: []notification.Message{companyDisabledMessage(c, res.Suspended)}})
	}

	e.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"suspended":  res.Suspended,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}).Info("company cascade finished")

	if res.Failed > 0 {
		return res, fmt.Errorf("%w: %d of %d listings failed", ErrCascadeIncomplete, res.Failed, len(ids))
	}
	return res, nil
}

// SweepDisabledCompanies re-runs the cascade for disabled companies that still
// have approved listings. It returns how many companies were completed.
func (e *Engine) SweepDisabledCompanies(ctx context.Context) (int, error) {
	ids, err := e.store.Repos().Companies.ListDisabledWithApprovedListings(ctx, sweepBatchSize)
	if err != nil {
		return 0, normalizeStoreError(err)
	}

	done := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := e.DisableCompanyCascade(ctx, user.SystemActor(), id, ""); err != nil {
			if errors.Is(err, ErrCascadeInProgress) {
				continue
			}
			errs = append(errs, fmt.Errorf("company %s: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// EnableCompany lifts a disable and reactivates the owner. Listings stay
// suspended until each is unsuspended or appealed.
func (e *Engine) EnableCompany(ctx context.Context, actor user.Actor, companyID uuid.UUID, notes string) (company.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return company.Company{}, err
	}

	var out company.Company
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		c, err := r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}
		if !c.IsDisabled {
			return companyState(c, "ENABLED", ErrConflictingTransition)
		}
		c.IsDisabled = false
		c.DisabledReason = nil
		c.DisabledBy = nil
		c.DisabledAt = nil
		if err := r.Companies.Update(ctx, &c); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionEnableCompany, audit.TargetCompany, c.ID, "", notes); err != nil {
			return err
		}

		owner, err := r.Users.GetByID(ctx, c.OwnerUserID)
		if err != nil {
			return err
		}
		if owner.Status != user.StatusActive {
			if err := r.Users.SetStatus(ctx, owner.ID, user.StatusActive); err != nil {
				return err
			}
			if err := e.record(ctx, r, actor, audit.ActionReactivateUser, audit.TargetUser, owner.ID, "", notes); err != nil {
				return err
			}
		}
		fx.notify(companyEnabledMessage(c))
		out = c
		return nil
	})
	return out, err
}

// ReviewCompanyVerification decides a pending verification. A rejection needs
// a remark the owner can act on.
func (e *Engine) ReviewCompanyVerification(ctx context.Context, actor user.Actor, companyID uuid.UUID, approve bool, remark string) (company.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return company.Company{}, err
	}
	remark = strings.TrimSpace(remark)
	if !approve && !e.validReason(remark) {
		return company.Company{}, e.reasonError("remark")
	}

	var out company.Company
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		c, err := r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}
		if c.VerificationStatus != company.VerificationPending {
			return companyState(c, string(c.VerificationStatus), ErrConflictingTransition)
		}

		action := audit.ActionVerifyCompany
		if approve {
			c.VerificationStatus = company.VerificationApproved
			c.VerificationRemark = nil
		} else {
			action = audit.ActionRejectCompany
			c.VerificationStatus = company.VerificationRejected
			c.VerificationRemark = &remark
		}
		if err := r.Companies.Update(ctx, &c); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, action, audit.TargetCompany, c.ID, remark, ""); err != nil {
			return err
		}
		fx.notify(verificationMessage(c))
		out = c
		return nil
	})
	return out, err
}

// ResubmitAfterRejection puts a rejected company verification back in the
// admin queue.
func (e *Engine) ResubmitAfterRejection(ctx context.Context, actor user.Actor, companyID uuid.UUID) (company.Company, error) {
	if !actor.IsEmployer() {
		return company.Company{}, ErrForbidden
	}

	var out company.Company
	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		c, err := r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}
		if c.OwnerUserID != actor.ID {
			return ErrForbidden
		}
		if c.VerificationStatus != company.VerificationRejected {
			return companyState(c, string(c.VerificationStatus), ErrConflictingTransition)
		}
		previous := deref(c.VerificationRemark)
		c.VerificationStatus = company.VerificationPending
		c.VerificationRemark = nil
		if err := r.Companies.Update(ctx, &c); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionResubmitCompany, audit.TargetCompany, c.ID, "", previous); err != nil {
			return err
		}

		admins, err := r.Users.ListAdminIDs(ctx, e.policy.FanOutLimit)
		if err != nil {
			return err
		}
		for _, id := range admins {
			fx.notify(resubmittedMessage(id, c))
		}
		out = c
		return nil
	})
	return out, err
}

func (e *Engine) GetCompany(ctx context.Context, actor user.Actor, companyID uuid.UUID) (company.Company, error) {
	c, err := e.store.Repos().Companies.GetByID(ctx, companyID)
	if err != nil {
		return company.Company{}, normalizeStoreError(err)
	}
	if !actor.IsAdmin() && c.OwnerUserID != actor.ID {
		return company.Company{}, ErrForbidden
	}
	return c, nil
}
