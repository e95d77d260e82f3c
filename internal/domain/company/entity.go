package company

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type Company struct {
	ID                 uuid.UUID
	OwnerUserID        uuid.UUID
	Name               string
	VerificationStatus VerificationStatus
	VerificationRemark *string
	IsDisabled         bool
	DisabledReason     *string
	DisabledBy         *uuid.UUID
	DisabledAt         *time.Time
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (c Company) CanPost() bool {
	return c.VerificationStatus == VerificationApproved && !c.IsDisabled
}

var (
	ErrNotFound     = errors.New("company not found")
	ErrStaleVersion = errors.New("company was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (Company, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (Company, error)
	Update(ctx context.Context, c *Company) error
	// ListDisabledWithApprovedListings finds companies whose disable cascade
	// has not reached every listing yet.
	ListDisabledWithApprovedListings(ctx context.Context, limit int) ([]uuid.UUID, error)
}
