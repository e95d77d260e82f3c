package repository

import (
	"context"
	"time"

	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"

	"github.com/google/uuid"
)

const companyColumns = `id, owner_user_id, name, verification_status, verification_remark, is_disabled,
	disabled_reason, disabled_by, disabled_at, version, created_at, updated_at`

type PostgresCompanyRepository struct {
	db database.Querier
}

func NewPostgresCompanyRepository(db database.Querier) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.VerificationStatus == "" {
		c.VerificationStatus = company.VerificationPending
	}
	now := time.Now().UTC()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, owner_user_id, name, verification_status, verification_remark, is_disabled, version, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.OwnerUserID, c.Name, string(c.VerificationStatus), c.VerificationRemark, c.IsDisabled,
		c.Version, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (company.Company, error) {
	row := r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return scanCompany(row)
}

func (r *PostgresCompanyRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (company.Company, error) {
	row := r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1 FOR UPDATE`, id)
	return scanCompany(row)
}

func (r *PostgresCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	now := time.Now().UTC()
	affected, err := r.db.Exec(ctx,
		`UPDATE companies SET name = $3, verification_status = $4, verification_remark = $5,
			is_disabled = $6, disabled_reason = $7, disabled_by = $8, disabled_at = $9,
			version = version + 1, updated_at = $10
		 WHERE id = $1 AND version = $2`,
		c.ID, c.Version, c.Name, string(c.VerificationStatus), c.VerificationRemark,
		c.IsDisabled, c.DisabledReason, c.DisabledBy, c.DisabledAt, now,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return company.ErrStaleVersion
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}

func (r *PostgresCompanyRepository) ListDisabledWithApprovedListings(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT c.id FROM companies c
		 WHERE c.is_disabled
		   AND EXISTS (SELECT 1 FROM job_listings l WHERE l.company_id = c.id AND l.approval_status = $1)
		 ORDER BY c.disabled_at NULLS FIRST
		 LIMIT $2`,
		string(listing.StatusApproved), limit,
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

func scanCompany(row database.Row) (company.Company, error) {
	var c company.Company
	var status string
	err := row.Scan(
		&c.ID, &c.OwnerUserID, &c.Name, &status, &c.VerificationRemark, &c.IsDisabled,
		&c.DisabledReason, &c.DisabledBy, &c.DisabledAt, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return company.Company{}, company.ErrNotFound
		}
		return company.Company{}, err
	}
	c.VerificationStatus = company.VerificationStatus(status)
	return c, nil
}

var _ company.Repository = (*PostgresCompanyRepository)(nil)
