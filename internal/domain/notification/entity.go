package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	UserID    uuid.UUID
	Title     string
	Body      string
	ActionRef string
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	ActionRef *string
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Sender delivers a message to one user. Delivery is best-effort.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
