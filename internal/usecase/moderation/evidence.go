package moderation

import (
	"context"

	"blue-collar-portal/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadSummary counts evidence files; a failed file is skipped, never fatal.
type UploadSummary struct {
	Stored int `json:"stored"`
	Failed int `json:"failed"`
}

func (e *Engine) uploadEvidence(ctx context.Context, prefix string, owner uuid.UUID, files []File) ([]string, UploadSummary) {
	keys := make([]string, 0, len(files))
	sum := UploadSummary{}
	if len(files) == 0 {
		return keys, sum
	}
	if e.objects == nil {
		sum.Failed = len(files)
		e.logger.WithFields(logrus.Fields{"files": len(files)}).Warn("object store not configured, evidence dropped")
		return keys, sum
	}

	for _, f := range files {
		key, err := e.putOne(ctx, storage.ObjectPath(prefix, owner, f.Name), f)
		if err != nil {
			sum.Failed++
			e.logger.WithFields(logrus.Fields{"owner_id": owner, "file": f.Name}).WithError(err).Warn("evidence upload failed")
			continue
		}
		keys = append(keys, key)
		sum.Stored++
	}
	return keys, sum
}

// discardEvidence removes objects whose report or appeal was never stored.
// Keys that cannot be removed are logged for manual cleanup.
func (e *Engine) discardEvidence(ctx context.Context, keys []string) {
	if len(keys) == 0 || e.objects == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.policy.StorageTimeout)
	defer cancel()
	if err := e.objects.Delete(ctx, keys); err != nil {
		e.logger.WithFields(logrus.Fields{"keys": keys}).WithError(err).Warn("orphaned evidence left in object store")
	}
}

func (e *Engine) putOne(ctx context.Context, path string, f File) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.policy.StorageTimeout)
	defer cancel()
	return e.objects.Put(ctx, f.Data, f.ContentType, path)
}

// signKeys exchanges stored keys for fresh signed URLs. Keys that cannot be
// signed are left out.
func (e *Engine) signKeys(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	if e.objects == nil {
		return out
	}
	for _, k := range keys {
		u, err := e.signOne(ctx, k)
		if err != nil {
			e.logger.WithFields(logrus.Fields{"key": k}).WithError(err).Warn("sign evidence url failed")
			continue
		}
		out = append(out, u)
	}
	return out
}

func (e *Engine) signOne(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.policy.StorageTimeout)
	defer cancel()
	return e.objects.SignedURL(ctx, key, e.policy.SignedURLTTL)
}
