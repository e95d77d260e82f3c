package repository

import (
	"context"
	"time"

	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.Querier
}

func NewPostgresUserRepository(db database.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	if u.Status == "" {
		u.Status = user.StatusActive
	}
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, full_name, role, status, industry_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`,
		u.ID, u.Email, u.FullName, string(u.Role), string(u.Status), u.IndustryID, now,
	)
	return err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	var role, status string
	row := r.db.QueryRow(ctx,
		`SELECT id, email, full_name, role, status, industry_id, created_at, updated_at FROM users WHERE id = $1`,
		id,
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &status, &u.IndustryID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	u.Status = user.Status(status)
	return u, nil
}

func (r *PostgresUserRepository) SetStatus(ctx context.Context, id uuid.UUID, status user.Status) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ListJobSeekerIDsByIndustry(ctx context.Context, industryID uuid.UUID, limit int) ([]uuid.UUID, error) {
	return r.listIDs(ctx,
		`SELECT id FROM users WHERE role = $1 AND status = $2 AND industry_id = $3 ORDER BY created_at LIMIT $4`,
		string(user.RoleJobSeeker), string(user.StatusActive), industryID, limit,
	)
}

func (r *PostgresUserRepository) ListAdminIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return r.listIDs(ctx,
		`SELECT id FROM users WHERE role = $1 AND status = $2 ORDER BY created_at LIMIT $3`,
		string(user.RoleAdmin), string(user.StatusActive), limit,
	)
}

func (r *PostgresUserRepository) listIDs(ctx context.Context, q string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, q, args...)
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

var _ user.Repository = (*PostgresUserRepository)(nil)
