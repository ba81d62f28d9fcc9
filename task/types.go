// Package task tracks tasks, projects and the pomodoro event log.
//
// Storage is abstracted behind Store so the same business operations run
// over the local JSONL files or a libsql database. The public API mirrors
// the CLI commands:
//   - CreateTask, UpdateTask, CompleteTask, ReopenTask, DeleteTask
//   - CreateProject, CompleteProject, DeleteProject
//   - Record for timer completions
package task

import (
	"encoding/json"
	"time"

	"github.com/amonks/pomo/timer"
)

const (
	// DefaultEstimate is the estimate given to tasks created without one.
	DefaultEstimate = 1

	// MaxEstimate bounds EstimatedPomodoros.
	MaxEstimate = 100

	// DefaultProjectColor is the color given to projects created without one.
	DefaultProjectColor = "#6366f1"

	// DefaultRetention is the number of events kept in the log.
	DefaultRetention = 1000

	// MaxTitleLength is the maximum allowed length for task titles and project names.
	MaxTitleLength = 500
)

// Task is a unit of work that pomodoros are spent on.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	ProjectID          string     `json:"project_id,omitempty"`
	EstimatedPomodoros int        `json:"estimated_pomodoros"`
	ActualPomodoros    int        `json:"actual_pomodoros"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Project groups tasks for reporting.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Event records the outcome of one timer session. Events are never
// modified once appended.
type Event struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id,omitempty"`
	Mode            timer.Mode `json:"mode,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     time.Time  `json:"completed_at"`
	Interrupted     bool       `json:"interrupted"`
}

// UnmarshalJSON decodes an event, leaving timestamps that fail to parse
// as the zero time so a damaged record contributes nothing to reports.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              string          `json:"id"`
		TaskID          string          `json:"task_id"`
		Mode            timer.Mode      `json:"mode"`
		DurationMinutes json.Number     `json:"duration_minutes"`
		StartedAt       json.RawMessage `json:"started_at"`
		CompletedAt     json.RawMessage `json:"completed_at"`
		Interrupted     bool            `json:"interrupted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event{
		ID:          raw.ID,
		TaskID:      raw.TaskID,
		Mode:        raw.Mode,
		StartedAt:   parseLenientTime(raw.StartedAt),
		CompletedAt: parseLenientTime(raw.CompletedAt),
		Interrupted: raw.Interrupted,
	}
	if minutes, err := raw.DurationMinutes.Float64(); err == nil && minutes > 0 {
		e.DurationMinutes = int(minutes + 0.5)
	}
	return nil
}

func parseLenientTime(raw json.RawMessage) time.Time {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}
	}
	return ParseTime(value)
}

// ParseTime parses an RFC 3339 timestamp, a zone-less timestamp or a bare
// date. Anything else yields the zero time.
func ParseTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsWork reports whether the event records a work session. Events written
// without a mode are work sessions.
func (e Event) IsWork() bool {
	return e.Mode == "" || e.Mode == timer.ModeWork
}
