package ws

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestHub_SendToReachesOnlyRecipient(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	a1 := NewClient(hub, nil, alice)
	a2 := NewClient(hub, nil, alice)
	b1 := NewClient(hub, nil, bob)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b1)
	waitFor(t, func() bool { return hub.ConnectionCount(alice) == 2 && hub.ConnectionCount(bob) == 1 })

	if !hub.SendTo(alice, []byte(`{"title":"approved"}`)) {
		t.Fatalf("expected payload to be queued")
	}

	for _, c := range []*Client{a1, a2} {
		select {
		case got := <-c.send:
			if string(got) != `{"title":"approved"}` {
				t.Fatalf("unexpected payload %s", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("alice connection did not receive payload")
		}
	}
	select {
	case got := <-b1.send:
		t.Fatalf("bob received %s", got)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	u := uuid.New()
	c := NewClient(hub, nil, u)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ConnectionCount(u) == 1 })

	hub.Unregister(c)
	waitFor(t, func() bool { return hub.ConnectionCount(u) == 0 })

	if _, ok := <-c.send; ok {
		t.Fatalf("expected send channel closed")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	u := uuid.New()
	c := NewClient(hub, nil, u)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ConnectionCount(u) == 1 })

	for i := 0; i < cap(c.send)+1; i++ {
		hub.SendTo(u, []byte("x"))
	}
	waitFor(t, func() bool { return hub.ConnectionCount(u) == 0 })
}

func TestHub_NilSafe(t *testing.T) {
	var hub *Hub
	if hub.SendTo(uuid.New(), []byte("x")) {
		t.Fatalf("nil hub must not accept payloads")
	}
	if hub.ConnectionCount(uuid.New()) != 0 {
		t.Fatalf("nil hub has no connections")
	}
}
