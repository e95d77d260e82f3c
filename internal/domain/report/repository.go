package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("report not found")
	ErrStaleVersion = errors.New("report was modified concurrently")
	// ErrDuplicateOpen is returned by Create when the reporter already has an
	// open report on the listing.
	ErrDuplicateOpen = errors.New("open report already exists")
)

type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (Report, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (Report, error)
	Update(ctx context.Context, r *Report) error
	HasOpenByReporter(ctx context.Context, listingID, reporterID uuid.UUID) (bool, error)
	CountUnresolvedByListing(ctx context.Context, listingID uuid.UUID) (int, error)
	DeleteByListing(ctx context.Context, listingID uuid.UUID) (int64, error)
	List(ctx context.Context, f Filter) ([]Report, error)
}
