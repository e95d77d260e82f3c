package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"blue-collar-portal/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pusher delivers a payload to a user's live connections.
type Pusher interface {
	SendTo(userID uuid.UUID, payload []byte) bool
}

type Event struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionRef string    `json:"action_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Gateway stores each message in the recipient's inbox and then pushes it to
// any open websocket. The push is skipped silently when the user is offline.
type Gateway struct {
	inbox  notification.Repository
	pusher Pusher
	logger *logrus.Logger
	now    func() time.Time
}

func NewGateway(inbox notification.Repository, pusher Pusher, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gateway{
		inbox:  inbox,
		pusher: pusher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *Gateway) Send(ctx context.Context, m notification.Message) error {
	if m.UserID == uuid.Nil {
		return errors.New("notification without recipient")
	}

	n := &notification.Notification{
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Body,
		CreatedAt: g.now(),
	}
	if ref := strings.TrimSpace(m.ActionRef); ref != "" {
		n.ActionRef = &ref
	}

	if g.inbox != nil {
		if err := g.inbox.Create(ctx, n); err != nil {
			return err
		}
	} else {
		n.ID = uuid.New()
	}

	if g.pusher == nil {
		return nil
	}

	payload, err := json.Marshal(Event{
		Type:      "notification",
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		ActionRef: m.ActionRef,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return err
	}
	if !g.pusher.SendTo(m.UserID, payload) {
		g.logger.WithFields(logrus.Fields{"user_id": m.UserID, "notification_id": n.ID}).Debug("live push skipped")
	}
	return nil
}

var _ notification.Sender = (*Gateway)(nil)
