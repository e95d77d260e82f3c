package integration

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"blue-collar-portal/internal/config"
	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/database/migration"
	dbpostgres "blue-collar-portal/internal/database/postgres"
	"blue-collar-portal/internal/dispatch"
	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/infrastructure/notify"
	"blue-collar-portal/internal/repository"
	"blue-collar-portal/internal/usecase/moderation"
	"blue-collar-portal/migrations"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type seededIDs struct {
	industry uuid.UUID
	company  uuid.UUID
	admin    user.Actor
	employer user.Actor
	seeker   user.Actor
}

func TestIntegration_SuspendAppealAdjudicate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if _, err := (migration.Runner{FS: migrations.FS, Logger: logger}).Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	store := repository.NewPostgresStore(db)
	seed := seedDummyData(t, ctx, db, store)
	defer cleanupSeed(t, db, seed)

	engine := moderation.NewEngine(moderation.Deps{
		Store:      store,
		Notifier:   notify.NewGateway(store.Repos().Notifications, nil, logger),
		Dispatcher: dispatch.Inline{Logger: logger},
		Logger:     logger,
	}, moderation.DefaultPolicy())

	d, err := engine.CreateListing(ctx, seed.employer, moderation.ListingInput{
		CompanyID: seed.company,
		Content: listing.Content{
			Title:       "Warehouse picker",
			Description: "Pick and pack orders for the morning shift at the central depot.",
			Location:    "Shah Alam",
			IndustryID:  seed.industry,
		},
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if d.Listing.Status != listing.StatusPending {
		t.Fatalf("expected PENDING without a risk service, got %s", d.Listing.Status)
	}
	id := d.Listing.ID

	if _, err := engine.AdminApprove(ctx, seed.admin, id); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rep, err := engine.FileReport(ctx, seed.seeker, moderation.ReportInput{
		ListingID:   id,
		Type:        report.TypeScam,
		Description: "Recruiter asked for a processing fee over chat.",
	})
	if err != nil {
		t.Fatalf("file report: %v", err)
	}
	reportID := rep.Report.ID

	suspended, err := engine.Suspend(ctx, seed.admin, id, "Processing fees are not allowed.", &reportID)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if suspended.Status != listing.StatusSuspended || suspended.IsActive() {
		t.Fatalf("unexpected listing after suspend: %+v", suspended)
	}

	res, err := engine.SubmitAppeal(ctx, seed.employer, id, strings.Repeat("The fee was charged by an impostor account, not by us. ", 2), nil)
	if err != nil {
		t.Fatalf("submit appeal: %v", err)
	}
	if res.Listing.Status != listing.StatusAppealed {
		t.Fatalf("expected APPEALED, got %s", res.Listing.Status)
	}

	if _, err := engine.MarkAppealUnderReview(ctx, seed.admin, res.Appeal.ID); err != nil {
		t.Fatalf("mark under review: %v", err)
	}
	out, err := engine.AdjudicateAppeal(ctx, seed.admin, res.Appeal.ID, appeal.DecisionApprove, "Confirmed impersonation with the employer.")
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if out.Listing.Status != listing.StatusApproved || !out.Listing.IsActive() || out.Listing.SuspendedAt != nil {
		t.Fatalf("unexpected listing after approval: %+v", out.Listing)
	}

	got, err := store.Repos().Reports.GetByID(ctx, reportID)
	if err != nil {
		t.Fatalf("reload report: %v", err)
	}
	if got.Status != report.StatusDismissed {
		t.Fatalf("expected report DISMISSED, got %s", got.Status)
	}

	var actions int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_actions WHERE target_id = $1`, id).Scan(&actions); err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if actions < 3 {
		t.Fatalf("expected approve, suspend and appeal decision in the audit log, got %d rows", actions)
	}

	var inbox int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, seed.employer.ID).Scan(&inbox); err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if inbox == 0 {
		t.Fatalf("employer received no notifications")
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	usr := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("PORTAL_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || usr == "" {
		t.Skip("missing test DB env vars: set PORTAL_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:         host,
		DBPort:         port,
		DBName:         name,
		DBUser:         usr,
		DBPassword:     pass,
		DBSSLMode:      ssl,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func seedDummyData(t *testing.T, ctx context.Context, db database.DB, store repository.Store) seededIDs {
	t.Helper()

	seed := seededIDs{
		industry: uuid.New(),
		admin:    user.Actor{ID: uuid.New(), Role: user.RoleAdmin},
		employer: user.Actor{ID: uuid.New(), Role: user.RoleEmployer},
		seeker:   user.Actor{ID: uuid.New(), Role: user.RoleJobSeeker},
	}
	suffix := seed.industry.String()[:8]

	if _, err := db.Exec(ctx, `INSERT INTO industries (id, name) VALUES ($1, $2)`, seed.industry, "Logistics "+suffix); err != nil {
		t.Fatalf("seed industry: %v", err)
	}

	repos := store.Repos()
	ind := seed.industry
	for _, u := range []user.User{
		{ID: seed.admin.ID, Email: "admin-" + suffix + "@example.com", Role: user.RoleAdmin},
		{ID: seed.employer.ID, Email: "employer-" + suffix + "@example.com", Role: user.RoleEmployer},
		{ID: seed.seeker.ID, Email: "seeker-" + suffix + "@example.com", Role: user.RoleJobSeeker, IndustryID: &ind},
	} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	c := &company.Company{OwnerUserID: seed.employer.ID, Name: "Depot Co " + suffix, VerificationStatus: company.VerificationApproved}
	if err := repos.Companies.Create(ctx, c); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	seed.company = c.ID
	return seed
}

// cleanupSeed leaves admin_actions alone; the table rejects deletes.
func cleanupSeed(t *testing.T, db database.DB, seed seededIDs) {
	t.Helper()

	ctx := context.Background()
	_, _ = db.Exec(ctx, `DELETE FROM job_listings WHERE company_id = $1`, seed.company)
	_, _ = db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, seed.company)
	for _, id := range []uuid.UUID{seed.admin.ID, seed.employer.ID, seed.seeker.ID} {
		_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	}
	_, _ = db.Exec(ctx, `DELETE FROM industries WHERE id = $1`, seed.industry)
}

func stringsOrDefault(v string, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
