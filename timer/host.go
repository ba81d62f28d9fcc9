package timer

import (
	"sync"
	"time"
)

// Clock provides the current wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Handlers receive the effects of a Timer mutation.
type Handlers struct {
	// OnComplete is called once for every completed or interrupted session.
	OnComplete func(Completion)

	// OnStateChange is called with the new state after every mutation.
	OnStateChange func(State)
}

// Options configures a Timer.
type Options struct {
	Config   Config
	Clock    Clock
	Handlers Handlers

	// State restores a previously persisted state. Nil starts from New().
	State *State
}

// Timer holds the single live State for a host and dispatches the
// completions returned by the transition functions to its handlers.
// Handlers run after the internal lock is released.
type Timer struct {
	mu       sync.Mutex
	cfg      Config
	clock    Clock
	handlers Handlers
	state    State
}

// NewTimer creates a Timer.
func NewTimer(opts Options) *Timer {
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	state := New()
	if opts.State != nil {
		state = normalizeState(*opts.State)
	}
	return &Timer{
		cfg:      opts.Config.Normalize(),
		clock:    clock,
		handlers: opts.Handlers,
		state:    state,
	}
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Config returns the normalized configuration.
func (t *Timer) Config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// View describes the current state at the clock's time.
func (t *Timer) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Describe(t.state, t.cfg, t.clock.Now())
}

// Toggle starts or stops the timer.
func (t *Timer) Toggle() *Completion {
	return t.apply(func(s State, cfg Config, now time.Time) (State, *Completion) {
		return Toggle(s, cfg, now)
	})
}

// Tick refreshes the timer, completing a session whose target was crossed.
func (t *Timer) Tick() *Completion {
	return t.apply(Tick)
}

// SetMode switches modes without completing the current session.
func (t *Timer) SetMode(mode Mode) {
	t.apply(func(s State, _ Config, _ time.Time) (State, *Completion) {
		return SetMode(s, mode), nil
	})
}

// Reset re-arms mode, or the current mode when empty.
func (t *Timer) Reset(mode Mode) {
	t.apply(func(s State, _ Config, _ time.Time) (State, *Completion) {
		return Reset(s, mode), nil
	})
}

func (t *Timer) apply(fn func(State, Config, time.Time) (State, *Completion)) *Completion {
	t.mu.Lock()
	prev := t.state
	next, completion := fn(prev, t.cfg, t.clock.Now())
	t.state = next
	handlers := t.handlers
	t.mu.Unlock()

	if completion != nil && handlers.OnComplete != nil {
		handlers.OnComplete(*completion)
	}
	if handlers.OnStateChange != nil && !Equal(prev, next) {
		handlers.OnStateChange(next)
	}
	return completion
}

// Equal reports whether two states are identical.
func Equal(a, b State) bool {
	if a.Mode != b.Mode || a.Running != b.Running ||
		a.AccumulatedSeconds != b.AccumulatedSeconds || a.SessionCount != b.SessionCount {
		return false
	}
	if (a.StartedAt == nil) != (b.StartedAt == nil) {
		return false
	}
	return a.StartedAt == nil || a.StartedAt.Equal(*b.StartedAt)
}
