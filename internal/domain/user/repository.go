package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListJobSeekerIDsByIndustry(ctx context.Context, industryID uuid.UUID, limit int) ([]uuid.UUID, error)
	ListAdminIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}
