package moderation

import (
	"context"

	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"
)

// ListAuditLog returns audit entries newest first, for one target or all.
func (e *Engine) ListAuditLog(ctx context.Context, actor user.Actor, f audit.Filter) ([]audit.Entry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.TargetID != nil && f.TargetType == nil {
		return nil, invalid(ErrValidation, "target_type", "is required with target_id")
	}
	f.Limit, f.Offset = repository.NormalizePage(f.Limit, f.Offset)
	out, err := e.store.Repos().Audit.List(ctx, f)
	if err != nil {
		return nil, normalizeStoreError(err)
	}
	return out, nil
}
