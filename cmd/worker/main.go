package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blue-collar-portal/internal/app"
	"blue-collar-portal/internal/config"
	"blue-collar-portal/internal/database/seeder"
	"blue-collar-portal/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	migrate := flag.Bool("migrate", true, "apply pending migrations on start")
	seed := flag.Bool("seed", false, "seed reference data and exit")
	adminEmail := flag.String("admin-email", "", "seed an administrator account with this email")
	sweepOnce := flag.Bool("sweep-once", false, "run a single company cascade sweep and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.Log)

	c, err := app.NewContainer(cfg, log, app.Options{Migrate: *migrate})
	if err != nil {
		log.WithError(err).Fatal("failed to init container")
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Error("cleanup error")
		}
	}()

	if *seed {
		runSeeders(c, *adminEmail)
		return
	}

	if *sweepOnce {
		sweep(c)
		return
	}

	schedule := cfg.Worker.CascadeSweepSchedule
	sched := cron.New()
	if _, err := sched.AddFunc(schedule, func() { sweep(c) }); err != nil {
		log.WithError(err).WithField("schedule", schedule).Fatal("invalid cascade sweep schedule")
	}
	sched.Start()
	log.WithField("schedule", schedule).Info("worker started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down worker")

	// Wait for a sweep in flight before the container is closed.
	<-sched.Stop().Done()
}

func sweep(c *app.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now()
	n, err := c.Engine.SweepDisabledCompanies(ctx)
	entry := c.Logger.WithFields(logrus.Fields{
		"companies":   n,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("cascade sweep failed")
		return
	}
	entry.Info("cascade sweep complete")
}

func runSeeders(c *app.Container, adminEmail string) {
	if c.DB == nil {
		c.Logger.Warn("seeding skipped, no database configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := seeder.Runner{Seeders: seeder.Defaults(adminEmail), Logger: c.Logger}
	if err := r.Run(ctx, c.DB); err != nil {
		c.Logger.WithError(err).Fatal("seeding failed")
	}
	c.Logger.Info("seeding complete")
}
