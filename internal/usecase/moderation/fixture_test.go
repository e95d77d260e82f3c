package moderation

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"blue-collar-portal/internal/dispatch"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/risk"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/infrastructure/storage"
	"blue-collar-portal/internal/repository"
	"blue-collar-portal/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeRisk struct {
	mu    sync.Mutex
	a     risk.Assessment
	err   error
	delay time.Duration
	calls int
	// onAssess runs after the call is counted, before the result is returned.
	onAssess func()
}

func (f *fakeRisk) set(a risk.Assessment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.a, f.err = a, nil
}

func (f *fakeRisk) Assess(ctx context.Context, _ risk.Content) (risk.Assessment, error) {
	f.mu.Lock()
	a, err, delay, hook := f.a, f.err, f.delay, f.onAssess
	f.calls++
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return risk.Assessment{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	return a, err
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (s *recordingSender) Send(_ context.Context, m notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *recordingSender) titled(userID uuid.UUID, title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m.UserID == userID && m.Title == title {
			n++
		}
	}
	return n
}

func (s *recordingSender) to(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m.UserID == userID {
			n++
		}
	}
	return n
}

type prefixTranslator struct{}

func (prefixTranslator) Translate(_ context.Context, text string, langs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, l := range langs {
		out[l] = "[" + l + "] " + text
	}
	return out, nil
}

// flakyTxStore fails every transaction while err is set.
type flakyTxStore struct {
	repository.Store
	mu  sync.Mutex
	err error
}

func (s *flakyTxStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *flakyTxStore) RunInTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.RunInTx(ctx, fn)
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, false, nil
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	engine   *Engine
	risk     *fakeRisk
	sent     *recordingSender
	objects  *storage.MemoryStore
	admin    user.Actor
	employer user.Actor
	seeker   user.Actor
	company  company.Company
	industry uuid.UUID
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T, tweak ...func(*Policy, *Deps)) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	f := &fixture{
		t:        t,
		ctx:      ctx,
		store:    store,
		risk:     &fakeRisk{a: risk.Assessment{Score: 50}},
		sent:     &recordingSender{},
		objects:  storage.NewMemoryStore(),
		admin:    user.Actor{ID: uuid.New(), Role: user.RoleAdmin},
		employer: user.Actor{ID: uuid.New(), Role: user.RoleEmployer},
		seeker:   user.Actor{ID: uuid.New(), Role: user.RoleJobSeeker},
		industry: uuid.New(),
	}

	repos := store.Repos()
	ind := f.industry
	for _, u := range []user.User{
		{ID: f.admin.ID, Email: "admin@example.com", Role: user.RoleAdmin},
		{ID: f.employer.ID, Email: "boss@example.com", Role: user.RoleEmployer},
		{ID: f.seeker.ID, Email: "seeker@example.com", Role: user.RoleJobSeeker, IndustryID: &ind},
	} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	f.company = f.newCompany(f.employer.ID)

	p := DefaultPolicy()
	p.Languages = []string{"ms"}
	d := Deps{
		Store:      store,
		Risk:       f.risk,
		Notifier:   f.sent,
		Objects:    f.objects,
		Translator: prefixTranslator{},
		Dispatcher: dispatch.Inline{Logger: quietLogger()},
		Logger:     quietLogger(),
	}
	for _, fn := range tweak {
		fn(&p, &d)
	}
	f.engine = NewEngine(d, p)
	return f
}

func (f *fixture) newCompany(owner uuid.UUID) company.Company {
	f.t.Helper()
	c := &company.Company{
		OwnerUserID:        owner,
		Name:               "Harbor Logistics",
		VerificationStatus: company.VerificationApproved,
	}
	if err := f.store.Repos().Companies.Create(f.ctx, c); err != nil {
		f.t.Fatalf("seed company: %v", err)
	}
	return *c
}

func (f *fixture) content(title string) listing.Content {
	return listing.Content{
		Title:       title,
		Description: "Operate forklifts on the night shift at the north warehouse.",
		Location:    "Port Klang",
		IndustryID:  f.industry,
	}
}

// createWith screens a new listing with the given assessment.
func (f *fixture) createWith(a risk.Assessment) listing.Listing {
	f.t.Helper()
	f.risk.set(a)
	d, err := f.engine.CreateListing(f.ctx, f.employer, ListingInput{CompanyID: f.company.ID, Content: f.content("Forklift operator")})
	if err != nil {
		f.t.Fatalf("create listing: %v", err)
	}
	return d.Listing
}

func (f *fixture) approved() listing.Listing {
	f.t.Helper()
	return f.createWith(risk.Assessment{Score: 5, AutoApprove: true})
}

func (f *fixture) listing(id uuid.UUID) listing.Listing {
	f.t.Helper()
	l, err := f.store.Repos().Listings.GetByID(f.ctx, id)
	if err != nil {
		f.t.Fatalf("get listing: %v", err)
	}
	return l
}

func (f *fixture) assertInvariants() {
	f.t.Helper()
	all, err := f.store.Repos().Listings.List(f.ctx, listing.Filter{Limit: 100})
	if err != nil {
		f.t.Fatalf("list: %v", err)
	}
	for _, l := range all {
		if l.IsActive() && l.Status != listing.StatusApproved {
			f.t.Fatalf("listing %s active while %s", l.ID, l.Status)
		}
		if l.Status == listing.StatusApproved && (l.SuspendedAt != nil || l.RejectionReason != nil) {
			f.t.Fatalf("approved listing %s carries suspension or rejection fields", l.ID)
		}
		if l.Status == listing.StatusSuspended && (l.SuspendedAt == nil || l.SuspensionReason == nil) {
			f.t.Fatalf("suspended listing %s missing suspension fields", l.ID)
		}
		if (l.SuspendedAt == nil) != (l.SuspensionReason == nil) {
			f.t.Fatalf("listing %s has partial suspension fields", l.ID)
		}
	}
}

func longText(n int) string {
	return strings.Repeat("x", n)
}
