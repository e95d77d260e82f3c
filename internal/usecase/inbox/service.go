package inbox

import (
	"context"
	"errors"
	"time"

	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

// Service is the current user's notification inbox.
type Service struct {
	notifications notification.Repository
	now           func() time.Time
}

func NewService(notifications notification.Repository) *Service {
	return &Service{
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	limit, offset = repository.NormalizePage(limit, offset)
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.notifications.MarkRead(ctx, notificationID, userID, s.now())
	if errors.Is(err, notification.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID, s.now())
}
