package moderation

import (
	"context"
	"strings"
	"unicode/utf8"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/risk"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ListingInput struct {
	CompanyID uuid.UUID
	listing.Content
}

// Decision is the outcome of a screening pass.
type Decision struct {
	Listing    listing.Listing
	Assessment *risk.Assessment
	// Degraded is set when the risk service failed or timed out and the
	// listing fell back to human review.
	Degraded bool
}

func validateContent(c listing.Content) error {
	v := &fieldErrors{}
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Title)); n < 3 || n > 200 {
		v.add("title", "must be between 3 and 200 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Description)) < 20 {
		v.add("description", "must be at least 20 characters")
	}
	if c.IndustryID == uuid.Nil {
		v.add("industry_id", "is required")
	}
	if c.SalaryMin != nil && *c.SalaryMin < 0 {
		v.add("salary_min", "must not be negative")
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMax < *c.SalaryMin {
		v.add("salary_max", "must not be below salary_min")
	}
	return v.err()
}

func trimContent(c listing.Content) listing.Content {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Location = strings.TrimSpace(c.Location)
	return c
}

// assess calls the risk service under the policy timeout. ok is false when the
// call failed, which callers treat as "needs human review".
func (e *Engine) assess(ctx context.Context, l listing.Listing) (risk.Assessment, bool) {
	if e.risk == nil {
		return risk.Assessment{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.policy.RiskTimeout)
	defer cancel()

	a, err := e.risk.Assess(ctx, risk.Content{
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Industry:    l.IndustryID.String(),
		SalaryMin:   l.SalaryMin,
		SalaryMax:   l.SalaryMax,
	})
	if err != nil {
		e.logger.WithFields(logrus.Fields{"listing_id": l.ID}).WithError(err).Warn("risk assessment failed, falling back to review")
		return risk.Assessment{}, false
	}
	return a.Normalize(), true
}

// applyScreening moves l to the status the assessment calls for.
func (e *Engine) applyScreening(l *listing.Listing, a risk.Assessment, ok bool) {
	if !ok {
		l.Status = listing.StatusPending
		l.SetRejectionReason(nil)
		return
	}

	score := a.Score
	l.RiskScore = &score
	l.RiskFlags = append([]string{}, a.Flags...)

	switch {
	case a.AutoApprove:
		l.Approve(e.now())
	case a.Score > e.policy.RiskRejectThreshold:
		reason := screeningReason(a.Score, a.Flags, a.Explanation)
		l.Status = listing.StatusRejectedAI
		l.SetRejectionReason(&reason)
	default:
		l.Status = listing.StatusPending
		l.SetRejectionReason(nil)
	}
}

func decisionOf(l listing.Listing, a risk.Assessment, ok bool) Decision {
	d := Decision{Listing: l, Degraded: !ok}
	if ok {
		aa := a
		d.Assessment = &aa
	}
	return d
}

// ScreenNewListing scores a listing that has not been stored yet and creates
// it in the resulting status. A failed or slow risk call yields PENDING.
func (e *Engine) ScreenNewListing(ctx context.Context, l listing.Listing) (Decision, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	a, ok := e.assess(ctx, l)
	e.applyScreening(&l, a, ok)

	err := e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		c, err := r.Companies.GetByID(ctx, l.CompanyID)
		if err != nil {
			return err
		}
		if !c.CanPost() {
			return ErrCompanyCannotPost
		}
		if err := r.Listings.Create(ctx, &l); err != nil {
			return err
		}
		if err := e.record(ctx, r, user.SystemActor(), audit.ActionAIScreening, audit.TargetListing, l.ID, deref(l.RejectionReason), string(l.Status)); err != nil {
			return err
		}
		fx.notify(screeningMessage(l))
		if l.Status == listing.StatusRejectedAI {
			fx.translate(l.ID, deref(l.RejectionReason))
		}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return decisionOf(l, a, ok), nil
}

// ReScreenEditedListing re-runs screening on an AI-rejected listing after the
// employer edited it. Any other status is refused.
func (e *Engine) ReScreenEditedListing(ctx context.Context, listingID uuid.UUID) (Decision, error) {
	before, err := e.store.Repos().Listings.GetByID(ctx, listingID)
	if err != nil {
		return Decision{}, normalizeStoreError(err)
	}
	if before.Status != listing.StatusRejectedAI {
		return Decision{}, listingState(before, ErrConflictingTransition)
	}

	a, ok := e.assess(ctx, before)

	var out listing.Listing
	err = e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if err := e.rescreen(ctx, r, fx, &l, before.Version, a, ok); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return decisionOf(out, a, ok), nil
}

// rescreen applies an assessment taken against version of an AI-rejected
// listing and stores the result.
func (e *Engine) rescreen(ctx context.Context, r repository.Repositories, fx *effects, l *listing.Listing, version int64, a risk.Assessment, ok bool) error {
	// The assessment is only valid for the content it scored.
	if l.Status != listing.StatusRejectedAI || l.Version != version {
		return listingState(*l, ErrConflictingTransition)
	}

	e.applyScreening(l, a, ok)
	if err := r.Listings.Update(ctx, l); err != nil {
		return err
	}
	if err := e.record(ctx, r, user.SystemActor(), audit.ActionAIRescreening, audit.TargetListing, l.ID, deref(l.RejectionReason), string(l.Status)); err != nil {
		return err
	}
	fx.notify(screeningMessage(*l))
	if l.Status == listing.StatusRejectedAI {
		fx.translate(l.ID, deref(l.RejectionReason))
	}
	return nil
}

func (e *Engine) CreateListing(ctx context.Context, actor user.Actor, in ListingInput) (Decision, error) {
	if !actor.IsEmployer() {
		return Decision{}, ErrForbidden
	}
	content := trimContent(in.Content)
	if err := validateContent(content); err != nil {
		return Decision{}, err
	}
	if in.CompanyID == uuid.Nil {
		return Decision{}, invalid(ErrValidation, "company_id", "is required")
	}

	c, err := e.store.Repos().Companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		return Decision{}, normalizeStoreError(err)
	}
	if c.OwnerUserID != actor.ID {
		return Decision{}, ErrForbidden
	}
	if !c.CanPost() {
		return Decision{}, ErrCompanyCannotPost
	}

	return e.ScreenNewListing(ctx, listing.Listing{
		CompanyID:  c.ID,
		EmployerID: actor.ID,
		Content:    content,
	})
}

// EditListing saves new content. An AI-rejected listing is screened again;
// other editable states keep their status.
func (e *Engine) EditListing(ctx context.Context, actor user.Actor, listingID uuid.UUID, content listing.Content) (Decision, error) {
	if !actor.IsEmployer() {
		return Decision{}, ErrForbidden
	}
	content = trimContent(content)
	if err := validateContent(content); err != nil {
		return Decision{}, err
	}

	before, err := e.store.Repos().Listings.GetByID(ctx, listingID)
	if err != nil {
		return Decision{}, normalizeStoreError(err)
	}
	if !before.IsOwnedBy(actor.ID) {
		return Decision{}, ErrForbidden
	}

	// An AI-rejected listing is scored up front and stored with its new
	// content in one transaction.
	var a risk.Assessment
	var ok bool
	rescreen := before.Status == listing.StatusRejectedAI
	if rescreen {
		edited := before
		edited.Content = content
		a, ok = e.assess(ctx, edited)
	}

	var saved listing.Listing
	err = e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
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
		if rescreen != (l.Status == listing.StatusRejectedAI) {
			return listingState(l, ErrConflictingTransition)
		}

		l.Content = content
		if rescreen {
			if err := e.rescreen(ctx, r, fx, &l, before.Version, a, ok); err != nil {
				return err
			}
		} else if err := r.Listings.Update(ctx, &l); err != nil {
			return err
		}
		saved = l
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	if !rescreen {
		return Decision{Listing: saved}, nil
	}
	return decisionOf(saved, a, ok), nil
}

// DeleteListing removes a listing. Admin deletion is terminal, cascades to
// reports and appeals and is audited; an owner may only delete a listing
// nobody is disputing.
func (e *Engine) DeleteListing(ctx context.Context, actor user.Actor, listingID uuid.UUID, reason string) error {
	switch {
	case actor.IsAdmin():
		if !e.validReason(reason) {
			return e.reasonError("reason")
		}
	case actor.IsEmployer():
	default:
		return ErrForbidden
	}

	return e.inTx(ctx, func(ctx context.Context, r repository.Repositories, fx *effects) error {
		l, err := r.Listings.GetForUpdate(ctx, listingID)
		if err != nil {
			return err
		}

		if !actor.IsAdmin() {
			if !l.IsOwnedBy(actor.ID) {
				return ErrForbidden
			}
			open, err := r.Reports.CountUnresolvedByListing(ctx, l.ID)
			if err != nil {
				return err
			}
			appealed, err := r.Appeals.HasOpenForListing(ctx, l.ID)
			if err != nil {
				return err
			}
			if open > 0 || appealed || l.Status == listing.StatusAppealed {
				return listingState(l, ErrListingUnderReview)
			}
			return r.Listings.Delete(ctx, l.ID)
		}

		if _, err := r.Appeals.DeleteByListing(ctx, l.ID); err != nil {
			return err
		}
		if _, err := r.Reports.DeleteByListing(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Listings.Delete(ctx, l.ID); err != nil {
			return err
		}
		if err := e.record(ctx, r, actor, audit.ActionDeleteListing, audit.TargetListing, l.ID, reason, string(l.Status)); err != nil {
			return err
		}
		fx.notify(deletedMessage(l, strings.TrimSpace(reason)))
		return nil
	})
}

// GetListing returns any listing to admins and owners; everyone else only
// sees live listings.
func (e *Engine) GetListing(ctx context.Context, actor user.Actor, listingID uuid.UUID) (listing.Listing, error) {
	l, err := e.store.Repos().Listings.GetByID(ctx, listingID)
	if err != nil {
		return listing.Listing{}, normalizeStoreError(err)
	}
	if actor.IsAdmin() || l.IsOwnedBy(actor.ID) || l.IsActive() {
		return l, nil
	}
	return listing.Listing{}, normalizeStoreError(listing.ErrNotFound)
}

// ListListings is the admin review queue.
func (e *Engine) ListListings(ctx context.Context, actor user.Actor, f listing.Filter) ([]listing.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid(ErrValidation, "status", "unknown listing status")
	}
	f.Limit, f.Offset = repository.NormalizePage(f.Limit, f.Offset)
	out, err := e.store.Repos().Listings.List(ctx, f)
	if err != nil {
		return nil, normalizeStoreError(err)
	}
	return out, nil
}
