package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/streakr/internal/cloud"
	"github.com/sadopc/streakr/internal/config"
	"github.com/sadopc/streakr/internal/logging"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/recur"
	"github.com/sadopc/streakr/internal/scheduler"
	"github.com/sadopc/streakr/internal/store"
	"github.com/sadopc/streakr/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logrus.New()
	logFile, err := logging.Init(logger, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logging.Component(logger, "main")

	ctx := context.Background()
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	hub := store.NewHub()
	defer hub.Close()

	svc := planner.New(store.NewObserved(backend, hub), cfg.UserID,
		planner.WithClock(recur.SystemClock{Location: time.Local}),
		planner.WithLogger(logging.Component(logger, "planner")),
	)
	log.WithFields(logrus.Fields{"backend": cfg.Backend, "user": cfg.UserID, "config": cfg.File}).Info("starting")

	if _, err := svc.Rollover(ctx); err != nil {
		return fmt.Errorf("initial rollover: %w", err)
	}

	sched := scheduler.New(time.Local, logging.Component(logger, "scheduler"))
	rolloverID, err := sched.ScheduleDaily(cfg.Rollover, func() {
		if _, err := svc.Rollover(context.Background()); err != nil {
			log.WithError(err).Error("scheduled rollover failed")
		}
	})
	if err != nil {
		return err
	}
	if _, err := sched.ScheduleInterval(15*time.Minute, func() {
		if _, err := svc.CatchUp(context.Background()); err != nil {
			log.WithError(err).Error("catch-up rollover failed")
		}
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	events, unsubscribe := hub.Subscribe(16)
	defer unsubscribe()

	exportDir, _ := os.UserHomeDir()
	app := tui.NewApp(svc, events, tui.Config{
		FocusDuration: cfg.FocusDuration(),
		IdleTimeout:   cfg.IdleTimeout(),
		ExportDir:     exportDir,
		NextRollover:  func() time.Time { return sched.Next(rolloverID) },
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	log.Info("exiting")
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *logrus.Logger) (store.Backend, error) {
	if cfg.Backend == config.BackendRedis {
		d, err := cloud.New(ctx, cloud.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logging.Component(logger, "cloud"))
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	s, err := store.New(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}
