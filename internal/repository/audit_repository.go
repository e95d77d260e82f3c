package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/domain/audit"

	"github.com/google/uuid"
)

type PostgresAuditRepository struct {
	db database.Querier
}

func NewPostgresAuditRepository(db database.Querier) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

func (r *PostgresAuditRepository) Record(ctx context.Context, e *audit.Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_actions (id, actor_id, actor_role, action_type, target_type, target_id, reason, notes, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.ActorID, e.ActorRole, string(e.Action), string(e.TargetType), e.TargetID, e.Reason, e.Notes, e.CreatedAt,
	)
	return err
}

func (r *PostgresAuditRepository) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	limit, offset := NormalizePage(f.Limit, f.Offset)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.TargetType != nil {
		args = append(args, string(*f.TargetType))
		where = append(where, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if f.TargetID != nil {
		args = append(args, *f.TargetID)
		where = append(where, fmt.Sprintf("target_id = $%d", len(args)))
	}

	q := `SELECT id, actor_id, actor_role, action_type, target_type, target_id, reason, notes, created_at FROM admin_actions`
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

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var action, target string
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &action, &target, &e.TargetID, &e.Reason, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = audit.ActionType(action)
		e.TargetType = audit.TargetType(target)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ audit.Repository = (*PostgresAuditRepository)(nil)
