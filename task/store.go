package task

import "context"

// Store persists tasks, projects and events.
type Store interface {
	// Tasks returns every task.
	Tasks(ctx context.Context) ([]Task, error)
	// SaveTask inserts or replaces the task with t.ID.
	SaveTask(ctx context.Context, t Task) error
	// DeleteTask removes the task with the given ID.
	DeleteTask(ctx context.Context, id string) error

	// Projects returns every project.
	Projects(ctx context.Context) ([]Project, error)
	// SaveProject inserts or replaces the project with p.ID.
	SaveProject(ctx context.Context, p Project) error
	// DeleteProject removes the project with the given ID.
	DeleteProject(ctx context.Context, id string) error

	// Events returns the event log, oldest first.
	Events(ctx context.Context) ([]Event, error)
	// AppendEvent adds e to the log, keeping at most retain of the newest
	// events. A non-positive retain keeps everything.
	AppendEvent(ctx context.Context, e Event, retain int) error

	Close() error
}
