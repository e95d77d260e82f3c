package memory

import (
	"context"
	"sort"
	"time"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/user"

	"github.com/google/uuid"
)

type auditRepo struct{ binding }

func (r auditRepo) Record(_ context.Context, e *audit.Entry) error {
	defer r.lock()()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now()
	}
	r.s.state.audit = append(r.s.state.audit, *e)
	return nil
}

func (r auditRepo) List(_ context.Context, f audit.Filter) ([]audit.Entry, error) {
	defer r.lock()()

	out := make([]audit.Entry, 0)
	// Walk backwards so entries recorded in the same instant keep insertion order, newest first.
	for i := len(r.s.state.audit) - 1; i >= 0; i-- {
		e := r.s.state.audit[i]
		if f.TargetType != nil && e.TargetType != *f.TargetType {
			continue
		}
		if f.TargetID != nil && e.TargetID != *f.TargetID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

type companyRepo struct{ binding }

func (r companyRepo) Create(_ context.Context, c *company.Company) error {
	defer r.lock()()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.VerificationStatus == "" {
		c.VerificationStatus = company.VerificationPending
	}
	now := r.s.now()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.state.companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id uuid.UUID) (company.Company, error) {
	defer r.lock()()

	c, ok := r.s.state.companies[id]
	if !ok {
		return company.Company{}, company.ErrNotFound
	}
	return c, nil
}

func (r companyRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (company.Company, error) {
	return r.GetByID(ctx, id)
}

func (r companyRepo) Update(_ context.Context, c *company.Company) error {
	defer r.lock()()

	cur, ok := r.s.state.companies[c.ID]
	if !ok {
		return company.ErrNotFound
	}
	if cur.Version != c.Version {
		return company.ErrStaleVersion
	}
	c.Version++
	c.UpdatedAt = r.s.now()
	c.CreatedAt = cur.CreatedAt
	r.s.state.companies[c.ID] = *c
	return nil
}

func (r companyRepo) ListDisabledWithApprovedListings(_ context.Context, limit int) ([]uuid.UUID, error) {
	defer r.lock()()

	if limit <= 0 {
		limit = 100
	}
	pending := map[uuid.UUID]bool{}
	for _, l := range r.s.state.listings {
		if l.Status == listing.StatusApproved {
			pending[l.CompanyID] = true
		}
	}

	out := make([]uuid.UUID, 0)
	for id, c := range r.s.state.companies {
		if c.IsDisabled && pending[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type userRepo struct{ binding }

func (r userRepo) Create(_ context.Context, u user.User) error {
	defer r.lock()()

	if u.Status == "" {
		u.Status = user.StatusActive
	}
	now := r.s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.state.users[u.ID] = u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	defer r.lock()()

	u, ok := r.s.state.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r userRepo) SetStatus(_ context.Context, id uuid.UUID, status user.Status) error {
	defer r.lock()()

	u, ok := r.s.state.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = r.s.now()
	r.s.state.users[id] = u
	return nil
}

func (r userRepo) ListJobSeekerIDsByIndustry(_ context.Context, industryID uuid.UUID, limit int) ([]uuid.UUID, error) {
	defer r.lock()()
	return r.ids(limit, func(u user.User) bool {
		return u.Role == user.RoleJobSeeker && u.IndustryID != nil && *u.IndustryID == industryID
	}), nil
}

func (r userRepo) ListAdminIDs(_ context.Context, limit int) ([]uuid.UUID, error) {
	defer r.lock()()
	return r.ids(limit, func(u user.User) bool { return u.Role == user.RoleAdmin }), nil
}

func (r userRepo) ids(limit int, match func(user.User) bool) []uuid.UUID {
	users := make([]user.User, 0)
	for _, u := range r.s.state.users {
		if u.Status == user.StatusActive && match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

type notificationRepo struct{ binding }

func (r notificationRepo) Create(_ context.Context, n *notification.Notification) error {
	defer r.lock()()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.state.notifications = append(r.s.state.notifications, *n)
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	defer r.lock()()

	out := make([]notification.Notification, 0)
	for i := len(r.s.state.notifications) - 1; i >= 0; i-- {
		n := r.s.state.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	return page(out, limit, offset), nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID, at time.Time) error {
	defer r.lock()()

	for i, n := range r.s.state.notifications {
		if n.ID != id || n.UserID != userID {
			continue
		}
		if n.ReadAt == nil {
			t := at
			r.s.state.notifications[i].ReadAt = &t
		}
		return nil
	}
	return notification.ErrNotFound
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	defer r.lock()()

	var n int64
	for i, item := range r.s.state.notifications {
		if item.UserID == userID && item.ReadAt == nil {
			t := at
			r.s.state.notifications[i].ReadAt = &t
			n++
		}
	}
	return n, nil
}

var (
	_ audit.Repository        = auditRepo{}
	_ company.Repository      = companyRepo{}
	_ user.Repository         = userRepo{}
	_ notification.Repository = notificationRepo{}
)
