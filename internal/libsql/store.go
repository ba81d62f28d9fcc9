// Package libsql stores tasks, projects and events in a libsql database,
// either a local file or a remote Turso instance.
package libsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

const maxRetries = 3

// Store implements task.Store over database/sql.
type Store struct {
	db *sql.DB
}

var _ task.Store = (*Store)(nil)

// Open connects to url, verifies the connection and applies pending
// migrations. authToken is only sent when non-empty.
func Open(ctx context.Context, url, authToken string) (*Store, error) {
	connStr := url
	if authToken != "" {
		connStr += "?authToken=" + authToken
	}
	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open libsql database: %w", err)
	}

	// Remote streams are closed aggressively, so avoid reusing idle connections.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to libsql database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate libsql database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsStreamError reports whether err is a remote "stream not found" error.
func IsStreamError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "stream not found")
}

// WithRetry runs fn, retrying up to maxRetries times on stream errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil || !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return result, err
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return WithRetry(ctx, maxRetries, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

// Tasks returns every task.
func (s *Store) Tasks(ctx context.Context) ([]task.Task, error) {
	return WithRetry(ctx, maxRetries, func() ([]task.Task, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, description, project_id, estimated_pomodoros, actual_pomodoros,
			       completed, completed_at, due_date, created_at, updated_at
			FROM tasks ORDER BY created_at, id
		`)
		if err != nil {
			return nil, fmt.Errorf("query tasks: %w", err)
		}
		defer rows.Close()

		var tasks []task.Task
		for rows.Next() {
			var t task.Task
			var completedAt, dueDate sql.NullString
			var createdAt, updatedAt string
			if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.EstimatedPomodoros,
				&t.ActualPomodoros, &t.Completed, &completedAt, &dueDate, &createdAt, &updatedAt); err != nil {
				return nil, fmt.Errorf("scan task: %w", err)
			}
			t.CompletedAt = nullableTime(completedAt)
			t.DueDate = nullableTime(dueDate)
			t.CreatedAt = task.ParseTime(createdAt)
			t.UpdatedAt = task.ParseTime(updatedAt)
			tasks = append(tasks, t)
		}
		return tasks, rows.Err()
	})
}

// SaveTask inserts or replaces a task.
func (s *Store) SaveTask(ctx context.Context, t task.Task) error {
	_, err := s.exec(ctx, `
		INSERT OR REPLACE INTO tasks (id, title, description, project_id, estimated_pomodoros,
			actual_pomodoros, completed, completed_at, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.ProjectID, t.EstimatedPomodoros, t.ActualPomodoros,
		boolInt(t.Completed), formatNullable(t.CompletedAt), formatNullable(t.DueDate),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return requireAffected(res, task.ErrTaskNotFound, id)
}

// Projects returns every project.
func (s *Store) Projects(ctx context.Context) ([]task.Project, error) {
	return WithRetry(ctx, maxRetries, func() ([]task.Project, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, color, completed, completed_at, due_date, created_at
			FROM projects ORDER BY created_at, id
		`)
		if err != nil {
			return nil, fmt.Errorf("query projects: %w", err)
		}
		defer rows.Close()

		var projects []task.Project
		for rows.Next() {
			var p task.Project
			var completedAt, dueDate sql.NullString
			var createdAt string
			if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Completed, &completedAt, &dueDate, &createdAt); err != nil {
				return nil, fmt.Errorf("scan project: %w", err)
			}
			p.CompletedAt = nullableTime(completedAt)
			p.DueDate = nullableTime(dueDate)
			p.CreatedAt = task.ParseTime(createdAt)
			projects = append(projects, p)
		}
		return projects, rows.Err()
	})
}

// SaveProject inserts or replaces a project.
func (s *Store) SaveProject(ctx context.Context, p task.Project) error {
	_, err := s.exec(ctx, `
		INSERT OR REPLACE INTO projects (id, name, color, completed, completed_at, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Color, boolInt(p.Completed), formatNullable(p.CompletedAt), formatNullable(p.DueDate), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return requireAffected(res, task.ErrProjectNotFound, id)
}

// Events returns the event log, oldest first.
func (s *Store) Events(ctx context.Context) ([]task.Event, error) {
	return WithRetry(ctx, maxRetries, func() ([]task.Event, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, task_id, mode, duration_minutes, started_at, completed_at, interrupted
			FROM events ORDER BY seq
		`)
		if err != nil {
			return nil, fmt.Errorf("query events: %w", err)
		}
		defer rows.Close()

		var events []task.Event
		for rows.Next() {
			var e task.Event
			var mode, startedAt, completedAt string
			if err := rows.Scan(&e.ID, &e.TaskID, &mode, &e.DurationMinutes, &startedAt, &completedAt, &e.Interrupted); err != nil {
				return nil, fmt.Errorf("scan event: %w", err)
			}
			e.Mode = timer.Mode(mode)
			e.StartedAt = task.ParseTime(startedAt)
			e.CompletedAt = task.ParseTime(completedAt)
			events = append(events, e)
		}
		return events, rows.Err()
	})
}

// AppendEvent inserts an event and trims the log to the newest retain
// events in the same transaction.
func (s *Store) AppendEvent(ctx context.Context, e task.Event, retain int) error {
	_, err := WithRetry(ctx, maxRetries, func() (struct{}, error) {
		return struct{}{}, s.appendEvent(ctx, e, retain)
	})
	return err
}

func (s *Store) appendEvent(ctx context.Context, e task.Event, retain int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	mode := e.Mode
	if mode == "" {
		mode = timer.ModeWork
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, task_id, mode, duration_minutes, started_at, completed_at, interrupted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.TaskID, string(mode), e.DurationMinutes, formatTime(e.StartedAt), formatTime(e.CompletedAt), boolInt(e.Interrupted)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if retain > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM events WHERE seq NOT IN (
				SELECT seq FROM events ORDER BY seq DESC LIMIT ?
			)
		`, retain); err != nil {
			return fmt.Errorf("trim events: %w", err)
		}
	}
	return tx.Commit()
}

func requireAffected(res sql.Result, notFound error, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullable(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := task.ParseTime(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
