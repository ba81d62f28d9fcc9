package timer

import (
	"math"
	"time"
)

// State is the engine's owned state. Hosts hold the single live value and
// replace it with whatever the transition functions return.
type State struct {
	Mode               Mode       `json:"mode"`
	Running            bool       `json:"running"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	AccumulatedSeconds float64    `json:"accumulated_seconds"`
	SessionCount       int        `json:"session_count"`
}

// Completion describes a finished or interrupted session.
type Completion struct {
	Mode           Mode      `json:"mode"`
	Interrupted    bool      `json:"interrupted"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
}

// DurationMinutes returns the elapsed time rounded to whole minutes.
func (c Completion) DurationMinutes() int {
	return int(math.Round(c.ElapsedSeconds / 60))
}

// New returns the initial state: a stopped work session.
func New() State {
	return State{Mode: ModeWork}
}

// FlowMode reports whether the state counts up instead of down.
func FlowMode(s State, cfg Config) bool {
	return s.Mode == ModeWork && cfg.FlowModeEnabled
}

// Elapsed returns the seconds counted in the current session at now.
func Elapsed(s State, now time.Time) float64 {
	elapsed := s.AccumulatedSeconds
	if s.Running && s.StartedAt != nil {
		if segment := now.Sub(*s.StartedAt).Seconds(); segment > 0 {
			elapsed += segment
		}
	}
	return math.Max(0, elapsed)
}

// Toggle starts a stopped timer or stops a running one.
//
// In flow mode, stopping ends the session: the completion is interrupted
// when the target was not reached. In countdown mode a crossed target
// completes the session instead of pausing it.
func Toggle(s State, cfg Config, now time.Time) (State, *Completion) {
	s = normalizeState(s)
	if !s.Running {
		s.Running = true
		s.StartedAt = timePtr(now)
		return s, nil
	}

	if FlowMode(s, cfg) {
		elapsed := Elapsed(s, now)
		interrupted := elapsed < cfg.TargetSeconds(ModeWork)
		completion := &Completion{
			Mode:           ModeWork,
			Interrupted:    interrupted,
			StartedAt:      now.Add(-seconds(elapsed)),
			CompletedAt:    now,
			ElapsedSeconds: elapsed,
		}
		s = stopped(s)
		s.AccumulatedSeconds = 0
		if !interrupted {
			s.SessionCount++
		}
		return s, completion
	}

	if next, completion := Tick(s, cfg, now); completion != nil {
		return next, completion
	}

	s.AccumulatedSeconds = Elapsed(s, now)
	return stopped(s), nil
}

// Tick recomputes elapsed time and completes a countdown session whose
// target has been crossed. The returned state no longer satisfies the
// crossing condition, so a completion is emitted at most once.
func Tick(s State, cfg Config, now time.Time) (State, *Completion) {
	s = normalizeState(s)
	if !s.Running || FlowMode(s, cfg) {
		return s, nil
	}

	target := cfg.TargetSeconds(s.Mode)
	if Elapsed(s, now) < target {
		return s, nil
	}

	remaining := math.Max(0, target-s.AccumulatedSeconds)
	completedAt := now
	if s.StartedAt != nil {
		completedAt = s.StartedAt.Add(seconds(remaining))
	}
	elapsed := math.Max(target, s.AccumulatedSeconds)
	completion := &Completion{
		Mode:           s.Mode,
		StartedAt:      completedAt.Add(-seconds(elapsed)),
		CompletedAt:    completedAt,
		ElapsedSeconds: elapsed,
	}

	next := State{SessionCount: s.SessionCount}
	if s.Mode == ModeWork {
		next.SessionCount++
		next.Mode = breakAfter(next.SessionCount, cfg)
	} else {
		next.Mode = ModeWork
	}
	if cfg.AutoStartBreaks && next.Mode.IsBreak() {
		next.Running = true
		next.StartedAt = timePtr(now)
	}
	return next, completion
}

// SetMode switches to mode and stops the timer at the start of the session.
// Unknown modes switch to ModeWork.
func SetMode(s State, mode Mode) State {
	if !mode.IsValid() {
		mode = ModeWork
	}
	return State{Mode: mode, SessionCount: normalizeState(s).SessionCount}
}

// Reset re-arms mode at its full duration. An empty mode resets the current one.
func Reset(s State, mode Mode) State {
	if mode == "" {
		mode = normalizeState(s).Mode
	}
	return SetMode(s, mode)
}

func breakAfter(sessionCount int, cfg Config) Mode {
	if sessionCount%cfg.Normalize().LongBreakInterval == 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}

func stopped(s State) State {
	s.Running = false
	s.StartedAt = nil
	return s
}

func normalizeState(s State) State {
	if !s.Mode.IsValid() {
		s.Mode = ModeWork
	}
	if s.Running && s.StartedAt == nil {
		s.Running = false
	}
	if s.AccumulatedSeconds < 0 || math.IsNaN(s.AccumulatedSeconds) {
		s.AccumulatedSeconds = 0
	}
	if s.SessionCount < 0 {
		s.SessionCount = 0
	}
	return s
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
