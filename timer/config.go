package timer

import (
	"errors"
	"math"
)

// ErrInvalidMode indicates an unknown mode name.
var ErrInvalidMode = errors.New("invalid mode")

// Default session parameters.
const (
	DefaultWorkMinutes       = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultLongBreakInterval = 4
)

// Config holds the per-session parameters supplied by the settings layer.
type Config struct {
	WorkMinutes       float64 `json:"work_minutes" toml:"work-minutes"`
	ShortBreakMinutes float64 `json:"short_break_minutes" toml:"short-break-minutes"`
	LongBreakMinutes  float64 `json:"long_break_minutes" toml:"long-break-minutes"`
	LongBreakInterval int     `json:"long_break_interval" toml:"long-break-interval"`
	AutoStartBreaks   bool    `json:"auto_start_breaks" toml:"auto-start-breaks"`
	FlowModeEnabled   bool    `json:"flow_mode" toml:"flow-mode"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WorkMinutes:       DefaultWorkMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
		LongBreakInterval: DefaultLongBreakInterval,
	}
}

// Normalize substitutes defaults for non-positive or non-finite values.
func (c Config) Normalize() Config {
	c.WorkMinutes = positiveOr(c.WorkMinutes, DefaultWorkMinutes)
	c.ShortBreakMinutes = positiveOr(c.ShortBreakMinutes, DefaultShortBreakMinutes)
	c.LongBreakMinutes = positiveOr(c.LongBreakMinutes, DefaultLongBreakMinutes)
	if c.LongBreakInterval <= 0 {
		c.LongBreakInterval = DefaultLongBreakInterval
	}
	return c
}

// TargetSeconds returns the configured length of a session in the given mode.
func (c Config) TargetSeconds(mode Mode) float64 {
	c = c.Normalize()
	switch mode {
	case ModeShortBreak:
		return c.ShortBreakMinutes * 60
	case ModeLongBreak:
		return c.LongBreakMinutes * 60
	default:
		return c.WorkMinutes * 60
	}
}

func positiveOr(value, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fallback
	}
	return value
}
