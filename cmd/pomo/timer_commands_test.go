package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/amonks/pomo/internal/config"
	"github.com/amonks/pomo/internal/state"
	"github.com/amonks/pomo/internal/telemetry"
	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time { return c.now }

func newTestApp(t *testing.T, clk *steppingClock) *app {
	t.Helper()
	store, err := task.OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	a := &app{
		cfg:      &config.Config{Timer: timer.DefaultConfig()},
		logger:   slog.New(slog.DiscardHandler),
		clock:    clk,
		states:   state.NewStore(t.TempDir()),
		tracker:  task.NewTracker(store, task.Options{Clock: clk}),
		recorder: telemetry.Noop{},
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func toggle(t *timer.Timer, _ *state.State) error {
	t.Toggle()
	return nil
}

func TestSharedTimerKeepsPauseFromOtherCommand(t *testing.T) {
	ctx := context.Background()
	clk := &steppingClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	a := newTestApp(t, clk)
	shared := sharedTimer{ctx: ctx, app: a}

	res, err := shared.Update(func(t *timer.Timer) { t.Toggle() })
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !res.State.Running {
		t.Fatal("expected the timer to be running")
	}

	// `pomo stop` runs while the timer screen is open.
	clk.now = clk.now.Add(10 * time.Minute)
	if _, err := a.withTimer(ctx, toggle); err != nil {
		t.Fatalf("stop: %v", err)
	}

	clk.now = clk.now.Add(16 * time.Minute)
	res, err = shared.Update(nil)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(res.Completions) != 0 || res.State.Running || res.State.AccumulatedSeconds != 600 {
		t.Fatalf("expected the paused session to stay paused, got %+v completions=%d", res.State, len(res.Completions))
	}

	saved, err := a.states.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if saved.Timer.Running || saved.Timer.AccumulatedSeconds != 600 {
		t.Fatalf("expected the pause to stay saved, got %+v", saved.Timer)
	}
	events, err := a.tracker.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no recorded sessions, got %+v", events)
	}
}

func TestSharedTimerRecordsCompletionOnce(t *testing.T) {
	ctx := context.Background()
	clk := &steppingClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	a := newTestApp(t, clk)
	shared := sharedTimer{ctx: ctx, app: a}

	if _, err := shared.Update(func(t *timer.Timer) { t.Toggle() }); err != nil {
		t.Fatalf("start: %v", err)
	}

	clk.now = clk.now.Add(26 * time.Minute)
	// `pomo status` fast-forwards first, then the screen refreshes.
	if _, err := a.withTimer(ctx, nil); err != nil {
		t.Fatalf("status: %v", err)
	}
	res, err := shared.Update(nil)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(res.Completions) != 0 || res.State.Mode != timer.ModeShortBreak {
		t.Fatalf("expected the screen to see the completed session, got %+v completions=%d", res.State, len(res.Completions))
	}

	events, err := a.tracker.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one recorded session, got %d", len(events))
	}
}
