// Package timer implements the pomodoro session clock.
//
// The engine is a set of pure transition functions over an explicit State
// value. Elapsed time is always derived from absolute timestamps, so a host
// that was suspended for minutes observes the whole gap on its next call.
//
// The public API mirrors the CLI commands:
//   - Toggle, SetMode, Reset for user actions
//   - Tick for the periodic refresh and for fast-forwarding after a gap
//   - Describe for display values
package timer

import (
	"strings"

	"github.com/amonks/pomo/internal/validation"
)

// Mode selects which configured duration applies to a session.
type Mode string

const (
	// ModeWork is a focused work session.
	ModeWork Mode = "work"

	// ModeShortBreak is the break taken after most work sessions.
	ModeShortBreak Mode = "short_break"

	// ModeLongBreak is the break taken every LongBreakInterval work sessions.
	ModeLongBreak Mode = "long_break"
)

// ValidModes returns all valid mode values.
func ValidModes() []Mode {
	return []Mode{ModeWork, ModeShortBreak, ModeLongBreak}
}

// IsValid returns true if the mode is a known valid value.
func (m Mode) IsValid() bool {
	for _, valid := range ValidModes() {
		if m == valid {
			return true
		}
	}
	return false
}

// IsBreak reports whether the mode is one of the break modes.
func (m Mode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// Label returns a human-readable name for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeWork:
		return "Focus"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return string(m)
	}
}

// ParseMode parses a mode name, accepting the short aliases used on the
// command line.
func ParseMode(value string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "work", "focus", "pomodoro":
		return ModeWork, nil
	case "short", "shortbreak", "break":
		return ModeShortBreak, nil
	case "long", "longbreak":
		return ModeLongBreak, nil
	}
	return "", validation.FormatInvalidValueError(ErrInvalidMode, value, []string{"work", "short", "long"})
}
