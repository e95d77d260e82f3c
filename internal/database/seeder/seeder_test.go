package seeder

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"blue-collar-portal/internal/database"

	"github.com/sirupsen/logrus"
)

type fakeRows struct {
	vals []string
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.vals)
}
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}

type fakeDB struct {
	columns map[string][]string
	execs   []string
}

func (f *fakeDB) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	f.execs = append(f.execs, query)
	return 1, nil
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (database.Rows, error) {
	return &fakeRows{vals: f.columns[args[0].(string)]}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (f *fakeDB) Ping(context.Context) error                           { return nil }
func (f *fakeDB) Close() error                                          { return nil }
func (f *fakeDB) SQLDB() *sql.DB                                        { return nil }
func (f *fakeDB) Begin(context.Context) (database.Tx, error)            { return &fakeTx{db: f}, nil }

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	return t.db.Exec(ctx, q, args...)
}
func (t *fakeTx) Query(ctx context.Context, q string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, q, args...)
}
func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (t *fakeTx) Commit(context.Context) error                         { return nil }
func (t *fakeTx) Rollback(context.Context) error                       { return nil }

type failingSeeder struct{ ran *bool }

func (failingSeeder) Name() string { return "broken" }
func (s failingSeeder) Run(context.Context, database.DB) error {
	*s.ran = true
	return errors.New("boom")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestEnsureTableColumns_ReportsEveryMissingColumn(t *testing.T) {
	db := &fakeDB{columns: map[string][]string{"users": {"id", "email"}}}

	err := EnsureTableColumns(context.Background(), db, "users", "id", "email", "role", "status")
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "users.role") || !strings.Contains(err.Error(), "users.status") {
		t.Fatalf("expected both missing columns in %q", err.Error())
	}

	if err := EnsureTableColumns(context.Background(), db, "users", "id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndustriesSeeder_InsertsEachIndustry(t *testing.T) {
	db := &fakeDB{columns: map[string][]string{"industries": {"id", "name", "created_at"}}}

	if err := (IndustriesSeeder{}).Run(context.Background(), db); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(db.execs) != len(defaultIndustries) {
		t.Fatalf("expected %d inserts, got %d", len(defaultIndustries), len(db.execs))
	}
	for _, q := range db.execs {
		if !strings.Contains(q, "ON CONFLICT (name) DO NOTHING") {
			t.Fatalf("insert is not idempotent: %s", q)
		}
	}
}

func TestDefaults_AdminOnlyWithEmail(t *testing.T) {
	if got := Defaults(""); len(got) != 1 || got[0].Name() != "industries" {
		t.Fatalf("unexpected defaults without email: %v", got)
	}
	got := Defaults(" ops@example.com ")
	if len(got) != 2 || got[1].Name() != "admin" {
		t.Fatalf("expected admin seeder, got %v", got)
	}
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	db := &fakeDB{columns: map[string][]string{"industries": {"id", "name", "created_at"}}}
	ran := false
	r := Runner{Seeders: []Seeder{failingSeeder{ran: &ran}, IndustriesSeeder{}}, Logger: quietLogger()}

	err := r.Run(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "seed broken") {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if !ran || len(db.execs) != 0 {
		t.Fatalf("later seeders must not run: ran=%v execs=%d", ran, len(db.execs))
	}

	if err := (Runner{}).Run(context.Background(), nil); !errors.Is(err, database.ErrNilDB) {
		t.Fatalf("expected ErrNilDB, got %v", err)
	}
}
