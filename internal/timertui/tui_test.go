package timertui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/amonks/pomo/timer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func useASCIIRenderer(t *testing.T) {
	originalProfile := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(originalProfile)
	})
}

// memoryStore keeps the shared state in memory. Tests change state directly
// to stand in for other pomo commands writing the state file.
type memoryStore struct {
	cfg      timer.Config
	clock    timer.Clock
	state    timer.State
	recorded []timer.Completion
	err      error
}

func newMemoryStore(cfg timer.Config, clock timer.Clock) *memoryStore {
	return &memoryStore{cfg: cfg, clock: clock, state: timer.New()}
}

func (s *memoryStore) Update(op func(*timer.Timer)) (Result, error) {
	if s.err != nil {
		return Result{}, s.err
	}
	var completions []timer.Completion
	t := timer.NewTimer(timer.Options{
		Config: s.cfg,
		Clock:  s.clock,
		State:  &s.state,
		Handlers: timer.Handlers{
			OnComplete: func(c timer.Completion) {
				completions = append(completions, c)
				s.recorded = append(s.recorded, c)
			},
		},
	})
	t.Tick()
	if op != nil {
		op(t)
	}
	s.state = t.State()
	return Result{State: s.state, Completions: completions}, nil
}

func newModel(store *memoryStore, opts Options) model {
	opts.Config = store.cfg
	opts.Clock = store.clock
	opts.Store = store
	return New(opts).(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(model)
}

func TestSpaceStartsAndTickCompletes(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := newMemoryStore(timer.DefaultConfig(), clock)
	m := newModel(store, Options{DailyGoal: 8, TodayCount: 2, TaskTitle: "Write report"})

	got := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !got.state.Running || !store.state.Running {
		t.Fatal("expected space to start and save the timer")
	}

	clock.Advance(25*time.Minute + time.Second)
	got = send(t, got, tickMsg(clock.now))

	if len(store.recorded) != 1 || store.recorded[0].Mode != timer.ModeWork || store.recorded[0].Interrupted {
		t.Fatalf("expected one work completion, got %+v", store.recorded)
	}
	if got.todayCount != 3 {
		t.Fatalf("expected today count 3, got %d", got.todayCount)
	}
	if got.state.Mode != timer.ModeShortBreak {
		t.Fatalf("expected short break next, got %s", got.state.Mode)
	}

	view := got.View()
	for _, want := range []string{"Short Break", "Focus complete. Next: Short Break.", "3/8 pomodoros", "Write report"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}

	clock.Advance(time.Second)
	send(t, got, tickMsg(clock.now))
	if len(store.recorded) != 1 {
		t.Fatalf("expected no further completions, got %d", len(store.recorded))
	}
}

func TestTickPicksUpChangesFromOtherCommands(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := newMemoryStore(timer.DefaultConfig(), clock)
	got := send(t, newModel(store, Options{}), tea.KeyMsg{Type: tea.KeySpace})

	// `pomo stop` from another terminal ten minutes in.
	clock.Advance(10 * time.Minute)
	store.state, _ = timer.Toggle(store.state, store.cfg, clock.now)

	clock.Advance(16 * time.Minute)
	got = send(t, got, tickMsg(clock.now))

	if len(store.recorded) != 0 {
		t.Fatalf("a paused session must not complete, got %+v", store.recorded)
	}
	if got.state.Running || store.state.Running {
		t.Fatalf("expected the pause to survive the tick, got %+v", store.state)
	}
	if store.state.AccumulatedSeconds != 600 {
		t.Fatalf("expected 600s accumulated, got %v", store.state.AccumulatedSeconds)
	}
	if !strings.Contains(got.View(), "15:00") || !strings.Contains(got.View(), "paused") {
		t.Fatalf("expected paused 15:00 in view:\n%s", got.View())
	}

	// `pomo mode long` from another terminal, then a key press here.
	store.state = timer.SetMode(store.state, timer.ModeLongBreak)
	got = send(t, got, runes("s"))
	if got.state.Mode != timer.ModeLongBreak || store.state.Mode != timer.ModeLongBreak {
		t.Fatalf("expected reset to act on the saved long break, got %s", got.state.Mode)
	}
}

func TestModeKeys(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := newMemoryStore(timer.DefaultConfig(), clock)
	m := newModel(store, Options{})

	got := send(t, m, runes("l"))
	if got.state.Mode != timer.ModeLongBreak {
		t.Fatalf("expected long break, got %s", got.state.Mode)
	}
	if !strings.Contains(got.View(), "15:00") {
		t.Fatalf("expected 15:00 in view:\n%s", got.View())
	}

	got = send(t, got, runes("b"))
	if got.state.Mode != timer.ModeShortBreak {
		t.Fatalf("expected short break, got %s", got.state.Mode)
	}

	got = send(t, got, runes("w"), tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(90 * time.Second)
	got = send(t, got, runes("s"))
	state := got.state
	if state.Mode != timer.ModeWork || state.Running || state.AccumulatedSeconds != 0 {
		t.Fatalf("expected reset work timer, got %+v", state)
	}
	if !timer.Equal(store.state, state) {
		t.Fatalf("expected the store to hold the screen's state, got %+v", store.state)
	}
}

func TestQuitReturnsQuitCommand(t *testing.T) {
	store := newMemoryStore(timer.DefaultConfig(), &fakeClock{now: time.Now()})
	m := newModel(store, Options{})

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}
}

func TestFlowModeStopShowsInterruption(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	cfg := timer.DefaultConfig()
	cfg.FlowModeEnabled = true
	store := newMemoryStore(cfg, clock)
	m := newModel(store, Options{})

	got := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(10 * time.Minute)
	got = send(t, got, tickMsg(clock.now))
	if len(store.recorded) != 0 {
		t.Fatal("flow mode should not complete on tick")
	}
	if !strings.Contains(got.View(), "10:00") {
		t.Fatalf("expected elapsed 10:00 in view:\n%s", got.View())
	}

	got = send(t, got, tea.KeyMsg{Type: tea.KeySpace})
	if len(store.recorded) != 1 || !store.recorded[0].Interrupted {
		t.Fatalf("expected one interrupted completion, got %+v", store.recorded)
	}
	if !strings.Contains(got.View(), "Focus stopped after 10:00.") {
		t.Fatalf("expected interruption message in view:\n%s", got.View())
	}
	if got.todayCount != 0 {
		t.Fatalf("interrupted sessions should not count, got %d", got.todayCount)
	}
}

func TestStoreErrorsAreShown(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := newMemoryStore(timer.DefaultConfig(), clock)
	m := newModel(store, Options{})

	store.err = errors.New("disk full")
	got := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got.err == nil || !strings.Contains(got.View(), "update timer: disk full") {
		t.Fatalf("expected store error in view:\n%s", got.View())
	}
	if got.state.Running {
		t.Fatal("a failed update must keep the last known state")
	}

	store.err = nil
	got = send(t, got, tea.KeyMsg{Type: tea.KeySpace})
	if got.err != nil || !got.state.Running {
		t.Fatalf("expected recovery after the store works again, got err=%v state=%+v", got.err, got.state)
	}
}

func TestRecordErrorsAreShown(t *testing.T) {
	useASCIIRenderer(t)
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := &failingRecordStore{memoryStore: newMemoryStore(timer.DefaultConfig(), clock)}
	m := New(Options{Config: timer.DefaultConfig(), Clock: clock, Store: store}).(model)

	got := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(26 * time.Minute)
	got = send(t, got, tickMsg(clock.now))
	if got.state.Mode != timer.ModeShortBreak {
		t.Fatalf("expected the saved state to advance, got %s", got.state.Mode)
	}
	if !strings.Contains(got.View(), "record session: offline") {
		t.Fatalf("expected record error in view:\n%s", got.View())
	}
}

type failingRecordStore struct {
	*memoryStore
}

func (s *failingRecordStore) Update(op func(*timer.Timer)) (Result, error) {
	res, err := s.memoryStore.Update(op)
	if err == nil && len(res.Completions) > 0 {
		res.RecordErr = errors.New("record session: offline")
	}
	return res, err
}

func TestFocusMsgRefreshes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	store := newMemoryStore(timer.DefaultConfig(), clock)
	m := newModel(store, Options{})

	got := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(2 * time.Hour)
	send(t, got, tea.FocusMsg{})
	if len(store.recorded) != 1 {
		t.Fatalf("expected focus to complete the overdue session once, got %d", len(store.recorded))
	}
}
