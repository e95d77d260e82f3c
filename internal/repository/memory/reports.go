package memory

import (
	"context"
	"time"

	"blue-collar-portal/internal/domain/report"

	"github.com/google/uuid"
)

type reportRepo struct{ binding }

func (r reportRepo) Create(_ context.Context, rep *report.Report) error {
	defer r.lock()()

	if rep.Status == "" {
		rep.Status = report.StatusPending
	}
	if rep.Status.IsOpen() && r.hasOpen(rep.ListingID, rep.ReporterID, uuid.Nil) {
		return report.ErrDuplicateOpen
	}
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.EvidenceKeys == nil {
		rep.EvidenceKeys = []string{}
	}
	now := r.s.now()
	rep.Version = 1
	rep.CreatedAt = now
	rep.UpdatedAt = now

	stored := *rep
	stored.EvidenceKeys = append([]string{}, rep.EvidenceKeys...)
	r.s.state.reports[rep.ID] = stored
	return nil
}

func (r reportRepo) GetByID(_ context.Context, id uuid.UUID) (report.Report, error) {
	defer r.lock()()

	rep, ok := r.s.state.reports[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	return rep, nil
}

func (r reportRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (report.Report, error) {
	return r.GetByID(ctx, id)
}

func (r reportRepo) Update(_ context.Context, rep *report.Report) error {
	defer r.lock()()

	cur, ok := r.s.state.reports[rep.ID]
	if !ok {
		return report.ErrNotFound
	}
	if cur.Version != rep.Version {
		return report.ErrStaleVersion
	}
	if rep.Status.IsOpen() && !cur.Status.IsOpen() && r.hasOpen(cur.ListingID, cur.ReporterID, cur.ID) {
		return report.ErrDuplicateOpen
	}

	cur.Status = rep.Status
	cur.AdminNotes = rep.AdminNotes
	cur.ReviewedBy = rep.ReviewedBy
	cur.ReviewedAt = rep.ReviewedAt
	cur.Version++
	cur.UpdatedAt = r.s.now()
	r.s.state.reports[rep.ID] = cur

	rep.Version = cur.Version
	rep.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r reportRepo) HasOpenByReporter(_ context.Context, listingID, reporterID uuid.UUID) (bool, error) {
	defer r.lock()()
	return r.hasOpen(listingID, reporterID, uuid.Nil), nil
}

func (r reportRepo) hasOpen(listingID, reporterID, except uuid.UUID) bool {
	for _, rep := range r.s.state.reports {
		if rep.ID == except {
			continue
		}
		if rep.ListingID == listingID && rep.ReporterID == reporterID && rep.Status.IsOpen() {
			return true
		}
	}
	return false
}

func (r reportRepo) CountUnresolvedByListing(_ context.Context, listingID uuid.UUID) (int, error) {
	defer r.lock()()

	n := 0
	for _, rep := range r.s.state.reports {
		if rep.ListingID == listingID && !rep.Status.IsClosed() {
			n++
		}
	}
	return n, nil
}

func (r reportRepo) DeleteByListing(_ context.Context, listingID uuid.UUID) (int64, error) {
	defer r.lock()()

	var n int64
	for id, rep := range r.s.state.reports {
		if rep.ListingID == listingID {
			delete(r.s.state.reports, id)
			n++
		}
	}
	return n, nil
}

func (r reportRepo) List(_ context.Context, f report.Filter) ([]report.Report, error) {
	defer r.lock()()

	out := make([]report.Report, 0)
	for _, rep := range r.s.state.reports {
		if f.Status != nil && rep.Status != *f.Status {
			continue
		}
		if f.ListingID != nil && rep.ListingID != *f.ListingID {
			continue
		}
		out = append(out, rep)
	}
	newestFirst(out,
		func(rep report.Report) time.Time { return rep.CreatedAt },
		func(rep report.Report) uuid.UUID { return rep.ID },
	)
	return page(out, f.Limit, f.Offset), nil
}

var _ report.Repository = reportRepo{}
