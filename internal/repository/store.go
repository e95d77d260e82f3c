package repository

import (
	"context"
	"database/sql"
	"errors"

	"blue-collar-portal/internal/database"
	dbpostgres "blue-collar-portal/internal/database/postgres"
	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ErrTxConflict is returned by RunInTx when the database aborted the
// transaction because of a concurrent writer.
var ErrTxConflict = errors.New("transaction conflict")

type Repositories struct {
	Listings      listing.Repository
	Reports       report.Repository
	Appeals       appeal.Repository
	Audit         audit.Repository
	Companies     company.Repository
	Users         user.Repository
	Notifications notification.Repository
}

// Store hands out repositories bound either to the pool or to a single
// transaction.
type Store interface {
	Repos() Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Repos() Repositories {
	return bind(s.db)
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.Tx) error {
		return fn(ctx, bind(tx))
	})
	if err != nil && dbpostgres.IsConcurrencyFailure(err) {
		return errors.Join(ErrTxConflict, err)
	}
	return err
}

func bind(q database.Querier) Repositories {
	return Repositories{
		Listings:      NewPostgresListingRepository(q),
		Reports:       NewPostgresReportRepository(q),
		Appeals:       NewPostgresAppealRepository(q),
		Audit:         NewPostgresAuditRepository(q),
		Companies:     NewPostgresCompanyRepository(q),
		Users:         NewPostgresUserRepository(q),
		Notifications: NewPostgresNotificationRepository(q),
	}
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows)
}

// NormalizePage applies the default and maximum page size used by every list query.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ Store = (*PostgresStore)(nil)
