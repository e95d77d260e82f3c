package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process. Used when no Supabase project is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]object{}, now: time.Now}
}

func (m *MemoryStore) Put(ctx context.Context, data []byte, contentType, logicalPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	key := strings.TrimLeft(logicalPath, "/")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType}
	return key, nil
}

func (m *MemoryStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	exp := m.now().Add(ttl).Unix()
	return fmt.Sprintf("memory://objects/%s?expires=%d", url.PathEscape(key), exp), nil
}

// Delete ignores keys that are not stored.
func (m *MemoryStore) Delete(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, strings.TrimLeft(k, "/"))
	}
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ ObjectStore = (*MemoryStore)(nil)
