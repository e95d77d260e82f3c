package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Inline runs each task immediately on the caller's goroutine. Used by tools
// and tests that need side effects to be observable on return.
type Inline struct {
	Timeout time.Duration
	Logger  *logrus.Logger
}

func (i Inline) Submit(name string, fn Task) bool {
	if fn == nil {
		return false
	}
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := safeCall(ctx, fn); err != nil && i.Logger != nil {
		i.Logger.WithFields(logrus.Fields{"task": name}).WithError(err).Warn("dispatch task failed")
	}
	return true
}
