package timer

import (
	"fmt"
	"math"
	"time"
)

// View holds values derived from a state for display.
type View struct {
	Mode         Mode `json:"mode"`
	Running      bool `json:"running"`
	FlowMode     bool `json:"flow_mode"`
	SessionCount int  `json:"session_count"`

	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	TargetSeconds   float64 `json:"target_seconds"`
	TimeLeftSeconds float64 `json:"time_left_seconds"`

	// DisplaySeconds is the time left in countdown mode and the elapsed
	// time in flow mode.
	DisplaySeconds float64 `json:"display_seconds"`
	OverTarget     bool    `json:"over_target"`
	Progress       float64 `json:"progress"`
}

// Describe derives display values for s at now.
func Describe(s State, cfg Config, now time.Time) View {
	s = normalizeState(s)
	elapsed := Elapsed(s, now)
	target := cfg.TargetSeconds(s.Mode)
	flow := FlowMode(s, cfg)

	view := View{
		Mode:            s.Mode,
		Running:         s.Running,
		FlowMode:        flow,
		SessionCount:    s.SessionCount,
		ElapsedSeconds:  elapsed,
		TargetSeconds:   target,
		TimeLeftSeconds: math.Max(0, target-elapsed),
		OverTarget:      elapsed >= target,
		Progress:        math.Min(1, elapsed/target),
	}
	if flow {
		view.DisplaySeconds = elapsed
	} else {
		view.DisplaySeconds = view.TimeLeftSeconds
		view.OverTarget = false
	}
	return view
}

// Clock formats DisplaySeconds as MM:SS, or H:MM:SS past an hour.
func (v View) Clock() string {
	if v.FlowMode {
		return FormatClock(math.Floor(v.DisplaySeconds))
	}
	return FormatClock(v.DisplaySeconds)
}

// FormatClock formats seconds as MM:SS, or H:MM:SS past an hour.
// Countdown values round up so the display never reads 00:00 early.
func FormatClock(secs float64) string {
	total := int(math.Ceil(math.Max(0, secs)))
	hours := total / 3600
	minutes := (total % 3600) / 60
	rest := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, rest)
	}
	return fmt.Sprintf("%02d:%02d", minutes, rest)
}
