// Package clock provides the wall-clock sources used by the timer host.
package clock

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amonks/pomo/timer"
)

// EnvNow names the variable that pins the clock to an RFC 3339 time.
const EnvNow = "POMO_NOW"

// System reads the system clock.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same time.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed time.
func (c Fixed) Now() time.Time { return c.Time }

// FromEnv returns a Fixed clock when POMO_NOW is set and the system clock otherwise.
func FromEnv() (timer.Clock, error) {
	value := strings.TrimSpace(os.Getenv(EnvNow))
	if value == "" {
		return System{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvNow, err)
	}
	return Fixed{Time: t}, nil
}
