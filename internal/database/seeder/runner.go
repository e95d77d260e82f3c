package seeder

import (
	"context"
	"fmt"
	"time"

	"blue-collar-portal/internal/database"

	"github.com/sirupsen/logrus"
)

// Seeder inserts reference rows. Run must be safe to repeat.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

type Runner struct {
	Seeders []Seeder
	Logger  *logrus.Logger
}

// Run executes the seeders in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	log := r.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		started := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.WithFields(logrus.Fields{
			"seeder":      s.Name(),
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("seeder applied")
	}
	return nil
}
