package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/database"
	dbpostgres "blue-collar-portal/internal/database/postgres"
	"blue-collar-portal/internal/domain/appeal"

	"github.com/google/uuid"
)

const appealColumns = `id, listing_id, report_id, employer_id, appeal_type, explanation, evidence_keys,
	status, admin_notes, reviewed_by, reviewed_at, version, created_at, updated_at`

type PostgresAppealRepository struct {
	db database.Querier
}

func NewPostgresAppealRepository(db database.Querier) *PostgresAppealRepository {
	return &PostgresAppealRepository{db: db}
}

func (r *PostgresAppealRepository) Create(ctx context.Context, a *appeal.Appeal) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.EvidenceKeys == nil {
		a.EvidenceKeys = []string{}
	}
	if a.Status == "" {
		a.Status = appeal.StatusPending
	}
	now := time.Now().UTC()
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO appeals (id, listing_id, report_id, employer_id, appeal_type, explanation, evidence_keys, status, version, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.ListingID, a.ReportID, a.EmployerID, string(a.Type), a.Explanation, a.EvidenceKeys,
		string(a.Status), a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return appeal.ErrDuplicateOpen
		}
		return err
	}
	return nil
}

func (r *PostgresAppealRepository) GetByID(ctx context.Context, id uuid.UUID) (appeal.Appeal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, id)
	return scanAppeal(row)
}

func (r *PostgresAppealRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (appeal.Appeal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appealColumns+` FROM appeals WHERE id = $1 FOR UPDATE`, id)
	return scanAppeal(row)
}

func (r *PostgresAppealRepository) Update(ctx context.Context, a *appeal.Appeal) error {
	now := time.Now().UTC()
	affected, err := r.db.Exec(ctx,
		`UPDATE appeals SET status = $3, admin_notes = $4, reviewed_by = $5, reviewed_at = $6,
			version = version + 1, updated_at = $7
		 WHERE id = $1 AND version = $2`,
		a.ID, a.Version, string(a.Status), a.AdminNotes, a.ReviewedBy, a.ReviewedAt, now,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appeal.ErrStaleVersion
	}
	a.Version++
	a.UpdatedAt = now
	return nil
}

func (r *PostgresAppealRepository) HasOpenForListing(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appeals WHERE listing_id = $1 AND status = ANY($2))`,
		listingID, []string{string(appeal.StatusPending), string(appeal.StatusUnderReview)},
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresAppealRepository) HasRejected(ctx context.Context, q appeal.Decided) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appeals
			WHERE listing_id = $1 AND appeal_type = $2 AND status = $3
			  AND report_id IS NOT DISTINCT FROM $4::uuid
			  AND created_at >= $5
		)`,
		q.ListingID, string(q.Type), string(appeal.StatusRejected), q.ReportID, q.Since,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresAppealRepository) DeleteByListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM appeals WHERE listing_id = $1`, listingID)
}

func (r *PostgresAppealRepository) List(ctx context.Context, f appeal.Filter) ([]appeal.Appeal, error) {
	limit, offset := NormalizePage(f.Limit, f.Offset)

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ListingID != nil {
		args = append(args, *f.ListingID)
		where = append(where, fmt.Sprintf("listing_id = $%d", len(args)))
	}
	if f.EmployerID != nil {
		args = append(args, *f.EmployerID)
		where = append(where, fmt.Sprintf("employer_id = $%d", len(args)))
	}

	q := `SELECT ` + appealColumns + ` FROM appeals`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appeal.Appeal, 0)
	for rows.Next() {
		a, err := scanAppeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAppeal(row database.Row) (appeal.Appeal, error) {
	var a appeal.Appeal
	var typ, status string
	err := row.Scan(
		&a.ID, &a.ListingID, &a.ReportID, &a.EmployerID, &typ, &a.Explanation, &a.EvidenceKeys,
		&status, &a.AdminNotes, &a.ReviewedBy, &a.ReviewedAt, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return appeal.Appeal{}, appeal.ErrNotFound
		}
		return appeal.Appeal{}, err
	}
	a.Type = appeal.Type(typ)
	a.Status = appeal.Status(status)
	if a.EvidenceKeys == nil {
		a.EvidenceKeys = []string{}
	}
	return a, nil
}

var _ appeal.Repository = (*PostgresAppealRepository)(nil)
