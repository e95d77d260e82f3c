package storage

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyObject = errors.New("empty object")
	ErrNotFound    = errors.New("object not found")
)

// ObjectStore keeps evidence files. Put returns a stable key; reads always go
// through a short-lived signed URL.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType, logicalPath string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, keys []string) error
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectPath builds "<prefix>/<owner>/<uuid>-<name>" with the file name reduced
// to a safe character set.
func ObjectPath(prefix string, owner uuid.UUID, filename string) string {
	name := path.Base(strings.TrimSpace(filename))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	return path.Join(strings.Trim(prefix, "/"), owner.String(), uuid.NewString()+"-"+name)
}

// callWithTimeout bounds fn by ctx and timeout for clients that take no context.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
