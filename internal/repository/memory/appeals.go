package memory

import (
	"context"
	"time"

	"blue-collar-portal/internal/domain/appeal"

	"github.com/google/uuid"
)

type appealRepo struct{ binding }

func (r appealRepo) Create(_ context.Context, a *appeal.Appeal) error {
	defer r.lock()()

	if a.Status == "" {
		a.Status = appeal.StatusPending
	}
	if a.Status.IsOpen() && r.hasOpen(a.ListingID) {
		return appeal.ErrDuplicateOpen
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.EvidenceKeys == nil {
		a.EvidenceKeys = []string{}
	}
	now := r.s.now()
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now

	stored := *a
	stored.EvidenceKeys = append([]string{}, a.EvidenceKeys...)
	r.s.state.appeals[a.ID] = stored
	return nil
}

func (r appealRepo) GetByID(_ context.Context, id uuid.UUID) (appeal.Appeal, error) {
	defer r.lock()()

	a, ok := r.s.state.appeals[id]
	if !ok {
		return appeal.Appeal{}, appeal.ErrNotFound
	}
	return a, nil
}

func (r appealRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (appeal.Appeal, error) {
	return r.GetByID(ctx, id)
}

func (r appealRepo) Update(_ context.Context, a *appeal.Appeal) error {
	defer r.lock()()

	cur, ok := r.s.state.appeals[a.ID]
	if !ok {
		return appeal.ErrNotFound
	}
	if cur.Version != a.Version {
		return appeal.ErrStaleVersion
	}

	cur.Status = a.Status
	cur.AdminNotes = a.AdminNotes
	cur.ReviewedBy = a.ReviewedBy
	cur.ReviewedAt = a.ReviewedAt
	cur.Version++
	cur.UpdatedAt = r.s.now()
	r.s.state.appeals[a.ID] = cur

	a.Version = cur.Version
	a.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r appealRepo) HasOpenForListing(_ context.Context, listingID uuid.UUID) (bool, error) {
	defer r.lock()()
	return r.hasOpen(listingID), nil
}

func (r appealRepo) hasOpen(listingID uuid.UUID) bool {
	for _, a := range r.s.state.appeals {
		if a.ListingID == listingID && a.Status.IsOpen() {
			return true
		}
	}
	return false
}

func (r appealRepo) HasRejected(_ context.Context, q appeal.Decided) (bool, error) {
	defer r.lock()()

	for _, a := range r.s.state.appeals {
		if a.ListingID != q.ListingID || a.Type != q.Type || a.Status != appeal.StatusRejected {
			continue
		}
		if !sameReport(a.ReportID, q.ReportID) || a.CreatedAt.Before(q.Since) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func sameReport(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r appealRepo) DeleteByListing(_ context.Context, listingID uuid.UUID) (int64, error) {
	defer r.lock()()

	var n int64
	for id, a := range r.s.state.appeals {
		if a.ListingID == listingID {
			delete(r.s.state.appeals, id)
			n++
		}
	}
	return n, nil
}

func (r appealRepo) List(_ context.Context, f appeal.Filter) ([]appeal.Appeal, error) {
	defer r.lock()()

	out := make([]appeal.Appeal, 0)
	for _, a := range r.s.state.appeals {
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.ListingID != nil && a.ListingID != *f.ListingID {
			continue
		}
		if f.EmployerID != nil && a.EmployerID != *f.EmployerID {
			continue
		}
		out = append(out, a)
	}
	newestFirst(out,
		func(a appeal.Appeal) time.Time { return a.CreatedAt },
		func(a appeal.Appeal) uuid.UUID { return a.ID },
	)
	return page(out, f.Limit, f.Offset), nil
}

var _ appeal.Repository = appealRepo{}
