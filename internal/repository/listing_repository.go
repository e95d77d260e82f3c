package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/domain/listing"

	"github.com/google/uuid"
)

const listingColumns = `id, company_id, employer_id, industry_id, title, description, location,
	salary_min, salary_max, approval_status, risk_score, risk_flags, rejection_reason,
	suspended_at, suspended_by, suspension_reason, suspension_report_id, review_notes,
	reason_translations, approved_at, version, created_at, updated_at`

type PostgresListingRepository struct {
	db database.Querier
}

func NewPostgresListingRepository(db database.Querier) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

func (r *PostgresListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.RiskFlags == nil {
		l.RiskFlags = []string{}
	}
	if l.ReasonTranslations == nil {
		l.ReasonTranslations = map[string]string{}
	}
	now := time.Now().UTC()
	l.Version = 1
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO job_listings (
			id, company_id, employer_id, industry_id, title, description, location,
			salary_min, salary_max, approval_status, risk_score, risk_flags, rejection_reason,
			review_notes, reason_translations, approved_at, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		l.ID, l.CompanyID, l.EmployerID, l.IndustryID, l.Title, l.Description, l.Location,
		l.SalaryMin, l.SalaryMax, string(l.Status), l.RiskScore, l.RiskFlags, l.RejectionReason,
		l.ReviewNotes, l.ReasonTranslations, l.ApprovedAt, l.Version, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id = $1`, id)
	return scanListing(row)
}

func (r *PostgresListingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id = $1 FOR UPDATE`, id)
	return scanListing(row)
}

func (r *PostgresListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	now := time.Now().UTC()
	if l.RiskFlags == nil {
		l.RiskFlags = []string{}
	}
	translations := l.ReasonTranslations
	if translations == nil {
		translations = map[string]string{}
	}

	affected, err := r.db.Exec(ctx,
		`UPDATE job_listings SET
			industry_id = $3, title = $4, description = $5, location = $6,
			salary_min = $7, salary_max = $8, approval_status = $9, risk_score = $10,
			risk_flags = $11, rejection_reason = $12, suspended_at = $13, suspended_by = $14,
			suspension_reason = $15, suspension_report_id = $16, review_notes = $17,
			approved_at = $18, version = version + 1, updated_at = $19,
			reason_translations = CASE WHEN rejection_reason IS NOT DISTINCT FROM $12
				THEN reason_translations ELSE $20::jsonb END
		 WHERE id = $1 AND version = $2`,
		l.ID, l.Version, l.IndustryID, l.Title, l.Description, l.Location,
		l.SalaryMin, l.SalaryMax, string(l.Status), l.RiskScore,
		l.RiskFlags, l.RejectionReason, l.SuspendedAt, l.SuspendedBy,
		l.SuspensionReason, l.SuspensionReportID, l.ReviewNotes,
		l.ApprovedAt, now, translations,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return listing.ErrStaleVersion
	}
	l.Version++
	l.UpdatedAt = now
	return nil
}

func (r *PostgresListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM job_listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return listing.ErrNotFound
	}
	return nil
}

func (r *PostgresListingRepository) List(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	limit, offset := NormalizePage(f.Limit, f.Offset)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("approval_status = $%d", len(args)))
	}
	if f.CompanyID != nil {
		args = append(args, *f.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}

	q := `SELECT ` + listingColumns + ` FROM job_listings`
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

	out := make([]listing.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresListingRepository) ListApprovedByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM job_listings WHERE company_id = $1 AND approval_status = $2 ORDER BY created_at`,
		companyID, string(listing.StatusApproved),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresListingRepository) SetReasonTranslations(ctx context.Context, id uuid.UUID, reason string, translations map[string]string) error {
	if translations == nil {
		translations = map[string]string{}
	}
	_, err := r.db.Exec(ctx,
		`UPDATE job_listings SET reason_translations = $2 WHERE id = $1 AND rejection_reason = $3`,
		id, translations, reason,
	)
	return err
}

func scanListing(row database.Row) (listing.Listing, error) {
	var l listing.Listing
	var status string
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.EmployerID, &l.IndustryID, &l.Title, &l.Description, &l.Location,
		&l.SalaryMin, &l.SalaryMax, &status, &l.RiskScore, &l.RiskFlags, &l.RejectionReason,
		&l.SuspendedAt, &l.SuspendedBy, &l.SuspensionReason, &l.SuspensionReportID, &l.ReviewNotes,
		&l.ReasonTranslations, &l.ApprovedAt, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, err
	}
	l.Status = listing.Status(status)
	if l.RiskFlags == nil {
		l.RiskFlags = []string{}
	}
	if l.ReasonTranslations == nil {
		l.ReasonTranslations = map[string]string{}
	}
	return l, nil
}

var _ listing.Repository = (*PostgresListingRepository)(nil)
