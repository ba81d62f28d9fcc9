package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amonks/pomo/internal/clock"
	"github.com/amonks/pomo/internal/config"
	"github.com/amonks/pomo/internal/libsql"
	"github.com/amonks/pomo/internal/paths"
	"github.com/amonks/pomo/internal/state"
	"github.com/amonks/pomo/internal/telemetry"
	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

// EnvLog selects the log level (debug, info, warn, error).
const EnvLog = "POMO_LOG"

// app bundles what a command needs. Open it with openApp and Close it
// before returning.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    timer.Clock
	states   *state.Store
	tracker  *task.Tracker
	recorder telemetry.Recorder
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLog))) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the configuration and prints any fallback warnings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	printWarnings(cfg.Warnings)
	return cfg, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	clk, err := clock.FromEnv()
	if err != nil {
		return nil, err
	}

	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	recorder, err := telemetry.New(ctx, cfg.Telemetry, buildVersion)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		recorder = telemetry.Noop{}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		clock:  clk,
		states: state.NewStore(stateDir),
		tracker: task.NewTracker(store, task.Options{
			Clock:  clk,
			Retain: cfg.Store.RetainEvents,
			Logger: logger,
		}),
		recorder: recorder,
	}, nil
}

func openStore(ctx context.Context, cfg config.Store) (task.Store, error) {
	switch cfg.Backend {
	case config.BackendLibsql:
		if cfg.URL == "" {
			return nil, errors.New("store.url is required for the libsql backend")
		}
		store, err := libsql.Open(ctx, cfg.URL, cfg.AuthToken)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		dataDir, err := paths.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		store, err := task.OpenFileStore(dataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(a.tracker.Close(), a.recorder.Close(ctx))
}

func (a *app) now() time.Time {
	return a.clock.Now()
}

// record logs a finished session against the focused task and exports it.
func (a *app) record(ctx context.Context, c timer.Completion, taskID string) error {
	projectID := ""
	if taskID != "" {
		if t, err := a.tracker.ResolveTask(ctx, taskID); err == nil {
			projectID = t.ProjectID
		}
	}
	a.recorder.RecordCompletion(ctx, c, projectID)

	if _, _, err := a.tracker.Record(ctx, c, taskID); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}
