package appeal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("appeal not found")
	ErrStaleVersion = errors.New("appeal was modified concurrently")
	// ErrDuplicateOpen is returned by Create when the listing already has an
	// open appeal.
	ErrDuplicateOpen = errors.New("open appeal already exists")
)

type Repository interface {
	Create(ctx context.Context, a *Appeal) error
	GetByID(ctx context.Context, id uuid.UUID) (Appeal, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (Appeal, error)
	Update(ctx context.Context, a *Appeal) error
	HasOpenForListing(ctx context.Context, listingID uuid.UUID) (bool, error)
	// HasRejected reports whether an appeal against the decision described
	// by q was already rejected.
	HasRejected(ctx context.Context, q Decided) (bool, error)
	DeleteByListing(ctx context.Context, listingID uuid.UUID) (int64, error)
	List(ctx context.Context, f Filter) ([]Appeal, error)
}

// Decided identifies one adverse decision on a listing: its cause, the report
// behind it (nil when there is none) and when it took effect. Appeals filed
// before Since contested an earlier decision.
type Decided struct {
	ListingID uuid.UUID
	Type      Type
	ReportID  *uuid.UUID
	Since     time.Time
}
