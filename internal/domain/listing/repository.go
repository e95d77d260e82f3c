package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("listing not found")
	// ErrStaleVersion is returned by Update when the row changed since it was read.
	ErrStaleVersion = errors.New("listing was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (Listing, error)
	// GetForUpdate reads the row and holds it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (Listing, error)
	// Update writes moderation and content fields guarded by l.Version and
	// advances l.Version on success. Stored reason translations survive only
	// while the rejection reason is unchanged.
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter) ([]Listing, error)
	ListApprovedByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
	// SetReasonTranslations stores translations of reason. It is a no-op when
	// the listing's rejection reason has since changed.
	SetReasonTranslations(ctx context.Context, id uuid.UUID, reason string, translations map[string]string) error
}
