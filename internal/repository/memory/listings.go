package memory

import (
	"context"
	"sort"
	"time"

	"blue-collar-portal/internal/domain/listing"

	"github.com/google/uuid"
)

type listingRepo struct{ binding }

func (r listingRepo) Create(_ context.Context, l *listing.Listing) error {
	defer r.lock()()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.RiskFlags == nil {
		l.RiskFlags = []string{}
	}
	if l.ReasonTranslations == nil {
		l.ReasonTranslations = map[string]string{}
	}
	now := r.s.now()
	l.Version = 1
	l.CreatedAt = now
	l.UpdatedAt = now
	r.s.state.listings[l.ID] = copyListing(*l)
	return nil
}

func (r listingRepo) GetByID(_ context.Context, id uuid.UUID) (listing.Listing, error) {
	defer r.lock()()

	l, ok := r.s.state.listings[id]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	return copyListing(l), nil
}

func (r listingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r listingRepo) Update(_ context.Context, l *listing.Listing) error {
	defer r.lock()()

	cur, ok := r.s.state.listings[l.ID]
	if !ok {
		return listing.ErrNotFound
	}
	if cur.Version != l.Version {
		return listing.ErrStaleVersion
	}

	l.Version++
	l.UpdatedAt = r.s.now()
	next := copyListing(*l)
	next.CreatedAt = cur.CreatedAt
	next.CompanyID = cur.CompanyID
	next.EmployerID = cur.EmployerID
	if sameReason(cur.RejectionReason, l.RejectionReason) {
		next.ReasonTranslations = cur.ReasonTranslations
	}
	r.s.state.listings[l.ID] = next
	return nil
}

func (r listingRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.lock()()

	if _, ok := r.s.state.listings[id]; !ok {
		return listing.ErrNotFound
	}
	delete(r.s.state.listings, id)
	for rid, rep := range r.s.state.reports {
		if rep.ListingID == id {
			delete(r.s.state.reports, rid)
		}
	}
	for aid, a := range r.s.state.appeals {
		if a.ListingID == id {
			delete(r.s.state.appeals, aid)
		}
	}
	return nil
}

func (r listingRepo) List(_ context.Context, f listing.Filter) ([]listing.Listing, error) {
	defer r.lock()()

	out := make([]listing.Listing, 0)
	for _, l := range r.s.state.listings {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.CompanyID != nil && l.CompanyID != *f.CompanyID {
			continue
		}
		out = append(out, copyListing(l))
	}
	newestFirst(out,
		func(l listing.Listing) time.Time { return l.CreatedAt },
		func(l listing.Listing) uuid.UUID { return l.ID },
	)
	return page(out, f.Limit, f.Offset), nil
}

func (r listingRepo) ListApprovedByCompany(_ context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	defer r.lock()()

	matches := make([]listing.Listing, 0)
	for _, l := range r.s.state.listings {
		if l.CompanyID == companyID && l.Status == listing.StatusApproved {
			matches = append(matches, l)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })

	out := make([]uuid.UUID, 0, len(matches))
	for _, l := range matches {
		out = append(out, l.ID)
	}
	return out, nil
}

func (r listingRepo) SetReasonTranslations(_ context.Context, id uuid.UUID, reason string, translations map[string]string) error {
	defer r.lock()()

	l, ok := r.s.state.listings[id]
	if !ok || l.RejectionReason == nil || *l.RejectionReason != reason {
		return nil
	}
	tr := make(map[string]string, len(translations))
	for k, v := range translations {
		tr[k] = v
	}
	l.ReasonTranslations = tr
	r.s.state.listings[id] = l
	return nil
}

func sameReason(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var _ listing.Repository = listingRepo{}
