package cache

import (
	"context"
	"testing"
	"time"
)

func TestRedis_UnavailableDegradesToNoop(t *testing.T) {
	r := NewRedisFromClient(nil, nil)
	ctx := context.Background()

	if err := r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out map[string]string
	hit, err := r.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if err := r.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected Ping error without client")
	}
}

func TestRedis_AcquireWithoutServerGrantsLease(t *testing.T) {
	var r *Redis
	release, ok, err := r.Acquire(context.Background(), "lock", time.Second)
	if err != nil || !ok {
		t.Fatalf("expected lease, got ok=%v err=%v", ok, err)
	}
	release()
}
