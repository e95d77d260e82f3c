package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/database"
	dbpostgres "blue-collar-portal/internal/database/postgres"
	"blue-collar-portal/internal/domain/report"

	"github.com/google/uuid"
)

const reportColumns = `id, listing_id, reporter_id, report_type, description, evidence_keys, status,
	admin_notes, reviewed_by, reviewed_at, version, created_at, updated_at`

type PostgresReportRepository struct {
	db database.Querier
}

func NewPostgresReportRepository(db database.Querier) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Create(ctx context.Context, rep *report.Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.EvidenceKeys == nil {
		rep.EvidenceKeys = []string{}
	}
	if rep.Status == "" {
		rep.Status = report.StatusPending
	}
	now := time.Now().UTC()
	rep.Version = 1
	rep.CreatedAt = now
	rep.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO reports (id, listing_id, reporter_id, report_type, description, evidence_keys, status, version, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rep.ID, rep.ListingID, rep.ReporterID, string(rep.Type), rep.Description, rep.EvidenceKeys,
		string(rep.Status), rep.Version, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return report.ErrDuplicateOpen
		}
		return err
	}
	return nil
}

func (r *PostgresReportRepository) GetByID(ctx context.Context, id uuid.UUID) (report.Report, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

func (r *PostgresReportRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (report.Report, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id)
	return scanReport(row)
}

func (r *PostgresReportRepository) Update(ctx context.Context, rep *report.Report) error {
	now := time.Now().UTC()
	affected, err := r.db.Exec(ctx,
		`UPDATE reports SET status = $3, admin_notes = $4, reviewed_by = $5, reviewed_at = $6,
			version = version + 1, updated_at = $7
		 WHERE id = $1 AND version = $2`,
		rep.ID, rep.Version, string(rep.Status), rep.AdminNotes, rep.ReviewedBy, rep.ReviewedAt, now,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return report.ErrDuplicateOpen
		}
		return err
	}
	if affected == 0 {
		return report.ErrStaleVersion
	}
	rep.Version++
	rep.UpdatedAt = now
	return nil
}

func (r *PostgresReportRepository) HasOpenByReporter(ctx context.Context, listingID, reporterID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reports WHERE listing_id = $1 AND reporter_id = $2 AND status = ANY($3))`,
		listingID, reporterID, []string{string(report.StatusPending), string(report.StatusUnderReview)},
	)
	if err := row.Scan(&exists); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresReportRepository) CountUnresolvedByListing(ctx context.Context, listingID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE listing_id = $1 AND status = ANY($2)`,
		listingID, []string{
			string(report.StatusPending),
			string(report.StatusUnderReview),
			string(report.StatusPendingEmployerResponse),
		},
	)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresReportRepository) DeleteByListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM reports WHERE listing_id = $1`, listingID)
}

func (r *PostgresReportRepository) List(ctx context.Context, f report.Filter) ([]report.Report, error) {
	limit, offset := NormalizePage(f.Limit, f.Offset)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ListingID != nil {
		args = append(args, *f.ListingID)
		where = append(where, fmt.Sprintf("listing_id = $%d", len(args)))
	}

	q := `SELECT ` + reportColumns + ` FROM reports`
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

	out := make([]report.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReport(row database.Row) (report.Report, error) {
	var rep report.Report
	var typ, status string
	err := row.Scan(
		&rep.ID, &rep.ListingID, &rep.ReporterID, &typ, &rep.Description, &rep.EvidenceKeys, &status,
		&rep.AdminNotes, &rep.ReviewedBy, &rep.ReviewedAt, &rep.Version, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, err
	}
	rep.Type = report.Type(typ)
	rep.Status = report.Status(status)
	if rep.EvidenceKeys == nil {
		rep.EvidenceKeys = []string{}
	}
	return rep, nil
}

var _ report.Repository = (*PostgresReportRepository)(nil)
