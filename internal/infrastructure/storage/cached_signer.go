package storage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedStore reuses signed URLs for half their lifetime so list pages do not
// re-sign every evidence key on each read.
type CachedStore struct {
	ObjectStore
	cache  JSONCache
	logger *logrus.Logger
}

func NewCachedStore(store ObjectStore, cache JSONCache, logger *logrus.Logger) *CachedStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedStore{ObjectStore: store, cache: cache, logger: logger}
}

func (c *CachedStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if c.cache == nil || ttl < 2*time.Second {
		return c.ObjectStore.SignedURL(ctx, key, ttl)
	}

	cacheKey := "storage:signed:" + key
	var cached string
	if hit, err := c.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit && cached != "" {
		return cached, nil
	}

	u, err := c.ObjectStore.SignedURL(ctx, key, ttl)
	if err != nil {
		return "", err
	}
	if err := c.cache.SetJSON(ctx, cacheKey, u, ttl/2); err != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Debug("signed url cache write failed")
	}
	return u, nil
}

var _ ObjectStore = (*CachedStore)(nil)
