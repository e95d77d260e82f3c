// Package memory is an in-process implementation of the repository
// interfaces. Transactions hold a single store-wide lock and restore a
// snapshot when the callback fails, so callers observe the same
// all-or-nothing behavior as the Postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	listings      map[uuid.UUID]listing.Listing
	reports       map[uuid.UUID]report.Report
	appeals       map[uuid.UUID]appeal.Appeal
	audit         []audit.Entry
	companies     map[uuid.UUID]company.Company
	users         map[uuid.UUID]user.User
	notifications []notification.Notification
}

func NewStore() *Store {
	return &Store{
		state: &state{
			listings:  map[uuid.UUID]listing.Listing{},
			reports:   map[uuid.UUID]report.Report{},
			appeals:   map[uuid.UUID]appeal.Appeal{},
			companies: map[uuid.UUID]company.Company{},
			users:     map[uuid.UUID]user.User{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Repos() repository.Repositories {
	return s.bind(false)
}

// RunInTx must not call Repos() from inside fn; use the repositories it is given.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	if err := fn(ctx, s.bind(true)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) bind(inTx bool) repository.Repositories {
	b := binding{s: s, inTx: inTx}
	return repository.Repositories{
		Listings:      listingRepo{b},
		Reports:       reportRepo{b},
		Appeals:       appealRepo{b},
		Audit:         auditRepo{b},
		Companies:     companyRepo{b},
		Users:         userRepo{b},
		Notifications: notificationRepo{b},
	}
}

type binding struct {
	s    *Store
	inTx bool
}

// lock takes the store lock unless the caller already holds it through RunInTx.
func (b binding) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (st *state) clone() *state {
	out := &state{
		listings:      make(map[uuid.UUID]listing.Listing, len(st.listings)),
		reports:       make(map[uuid.UUID]report.Report, len(st.reports)),
		appeals:       make(map[uuid.UUID]appeal.Appeal, len(st.appeals)),
		audit:         append([]audit.Entry(nil), st.audit...),
		companies:     make(map[uuid.UUID]company.Company, len(st.companies)),
		users:         make(map[uuid.UUID]user.User, len(st.users)),
		notifications: append([]notification.Notification(nil), st.notifications...),
	}
	for k, v := range st.listings {
		out.listings[k] = copyListing(v)
	}
	for k, v := range st.reports {
		out.reports[k] = v
	}
	for k, v := range st.appeals {
		out.appeals[k] = v
	}
	for k, v := range st.companies {
		out.companies[k] = v
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	return out
}

func copyListing(l listing.Listing) listing.Listing {
	l.RiskFlags = append([]string{}, l.RiskFlags...)
	tr := make(map[string]string, len(l.ReasonTranslations))
	for k, v := range l.ReasonTranslations {
		tr[k] = v
	}
	l.ReasonTranslations = tr
	return l
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = repository.NormalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T{}, items[offset:end]...)
}

// newestFirst orders by creation time descending, then id, matching the SQL ordering.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) uuid.UUID) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]).String() < id(items[j]).String()
	})
}

var _ repository.Store = (*Store)(nil)
