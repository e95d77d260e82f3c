package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakePusher struct {
	got map[uuid.UUID][][]byte
}

func (p *fakePusher) SendTo(userID uuid.UUID, payload []byte) bool {
	if p.got == nil {
		p.got = map[uuid.UUID][][]byte{}
	}
	p.got[userID] = append(p.got[userID], payload)
	return true
}

type failingInbox struct {
	notification.Repository
}

func (failingInbox) Create(context.Context, *notification.Notification) error {
	return errors.New("db down")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestGateway_PersistsThenPushes(t *testing.T) {
	store := memory.NewStore()
	pusher := &fakePusher{}
	g := NewGateway(store.Repos().Notifications, pusher, quietLogger())

	uid := uuid.New()
	err := g.Send(context.Background(), notification.Message{
		UserID:    uid,
		Title:     "Listing approved",
		Body:      "Your listing Welder is live.",
		ActionRef: "/listings/1",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	inbox, err := store.Repos().Notifications.ListByUser(context.Background(), uid, true, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Title != "Listing approved" || inbox[0].ActionRef == nil {
		t.Fatalf("unexpected inbox %+v", inbox)
	}

	if len(pusher.got[uid]) != 1 {
		t.Fatalf("expected one push got %d", len(pusher.got[uid]))
	}
	var evt Event
	if err := json.Unmarshal(pusher.got[uid][0], &evt); err != nil {
		t.Fatalf("decode push: %v", err)
	}
	if evt.Type != "notification" || evt.ID != inbox[0].ID {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestGateway_InboxFailureSkipsPush(t *testing.T) {
	pusher := &fakePusher{}
	g := NewGateway(failingInbox{}, pusher, quietLogger())

	if err := g.Send(context.Background(), notification.Message{UserID: uuid.New(), Title: "t"}); err == nil {
		t.Fatalf("expected inbox error")
	}
	if len(pusher.got) != 0 {
		t.Fatalf("push must not happen when persistence fails")
	}
}

func TestGateway_RejectsMissingRecipient(t *testing.T) {
	g := NewGateway(nil, nil, quietLogger())
	if err := g.Send(context.Background(), notification.Message{Title: "t"}); err == nil {
		t.Fatalf("expected error for nil recipient")
	}
}
