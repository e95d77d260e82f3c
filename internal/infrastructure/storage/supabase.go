package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/config"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/sirupsen/logrus"
)

// SupabaseStore stores objects in one Supabase Storage bucket.
type SupabaseStore struct {
	endpoint string
	apiKey   string
	bucket   string
	timeout  time.Duration
	logger   *logrus.Logger
}

func NewSupabaseStore(cfg config.StorageConfig, logger *logrus.Logger) (*SupabaseStore, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	if base == "" || strings.TrimSpace(cfg.SupabaseKey) == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("STORAGE_BUCKET is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SupabaseStore{
		endpoint: base + "/storage/v1",
		apiKey:   cfg.SupabaseKey,
		bucket:   cfg.Bucket,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// client builds a fresh storage client per call: the library keeps request
// headers on the client, so sharing one across uploads would leak content types.
func (s *SupabaseStore) client() *storage_go.Client {
	return storage_go.NewClient(s.endpoint, s.apiKey, map[string]string{"apikey": s.apiKey})
}

func (s *SupabaseStore) Put(ctx context.Context, data []byte, contentType, logicalPath string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	key := strings.TrimLeft(logicalPath, "/")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false

	_, err := callWithTimeout(ctx, s.timeout, func() (storage_go.FileUploadResponse, error) {
		return s.client().UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).WithError(err).Warn("object upload failed")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func (s *SupabaseStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", ErrNotFound
	}
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 60
	}

	resp, err := callWithTimeout(ctx, s.timeout, func() (storage_go.SignedUrlResponse, error) {
		return s.client().CreateSignedUrl(s.bucket, key, seconds)
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return resp.SignedURL, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, keys []string) error {
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimLeft(k, "/"); k != "" {
			paths = append(paths, k)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	_, err := callWithTimeout(ctx, s.timeout, func() ([]storage_go.FileUploadResponse, error) {
		return s.client().RemoveFile(s.bucket, paths)
	})
	if err != nil {
		return fmt.Errorf("remove %d objects: %w", len(paths), err)
	}
	return nil
}

var _ ObjectStore = (*SupabaseStore)(nil)
