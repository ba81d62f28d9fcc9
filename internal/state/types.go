// Package state manages the shared pomo state file.
//
// The state file (~/.local/state/pomo/state.json) holds the single live
// timer and the task that completed work sessions are credited to. Every
// CLI invocation and the interactive timer load it, apply one transition,
// and write it back. All access is serialized through file locking.
package state

import (
	"time"

	"github.com/amonks/pomo/timer"
)

// State represents the persisted state file.
type State struct {
	Timer timer.State `json:"timer"`

	// ActiveTaskID is the task credited with completed work sessions.
	ActiveTaskID string `json:"active_task_id,omitempty"`

	// UpdatedAt is when a transition last changed the timer.
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// New returns the state used when no state file exists.
func New() *State {
	return &State{Timer: timer.New()}
}
