package task

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

const (
	// TasksFile is the name of the JSONL file containing tasks.
	TasksFile = "tasks.jsonl"

	// ProjectsFile is the name of the JSONL file containing projects.
	ProjectsFile = "projects.jsonl"

	// EventsFile is the name of the JSONL file containing the event log.
	EventsFile = "events.jsonl"

	lockFile = "store.lock"

	maxJSONLineBytes = 1024 * 1024
)

// FileStore keeps tasks, projects and events in JSONL files in a directory.
// Every read and write holds an exclusive lock on the directory's lock file,
// so concurrent pomo processes see consistent files.
type FileStore struct {
	dir string
}

// OpenFileStore opens the JSONL store in dir, creating the directory if needed.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the store files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Tasks returns every task.
func (s *FileStore) Tasks(ctx context.Context) ([]Task, error) {
	return readStore[Task](ctx, s, TasksFile)
}

// SaveTask inserts or replaces a task.
func (s *FileStore) SaveTask(ctx context.Context, t Task) error {
	return updateStore(ctx, s, TasksFile, func(tasks []Task) ([]Task, error) {
		return upsert(tasks, t, func(existing Task) bool { return existing.ID == t.ID }), nil
	})
}

// DeleteTask removes a task.
func (s *FileStore) DeleteTask(ctx context.Context, id string) error {
	return updateStore(ctx, s, TasksFile, func(tasks []Task) ([]Task, error) {
		kept, removed := remove(tasks, func(t Task) bool { return t.ID == id })
		if !removed {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return kept, nil
	})
}

// Projects returns every project.
func (s *FileStore) Projects(ctx context.Context) ([]Project, error) {
	return readStore[Project](ctx, s, ProjectsFile)
}

// SaveProject inserts or replaces a project.
func (s *FileStore) SaveProject(ctx context.Context, p Project) error {
	return updateStore(ctx, s, ProjectsFile, func(projects []Project) ([]Project, error) {
		return upsert(projects, p, func(existing Project) bool { return existing.ID == p.ID }), nil
	})
}

// DeleteProject removes a project.
func (s *FileStore) DeleteProject(ctx context.Context, id string) error {
	return updateStore(ctx, s, ProjectsFile, func(projects []Project) ([]Project, error) {
		kept, removed := remove(projects, func(p Project) bool { return p.ID == id })
		if !removed {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return kept, nil
	})
}

// Events returns the event log, oldest first.
func (s *FileStore) Events(ctx context.Context) ([]Event, error) {
	return readStore[Event](ctx, s, EventsFile)
}

// AppendEvent adds an event, trimming the log to the newest retain events.
func (s *FileStore) AppendEvent(ctx context.Context, e Event, retain int) error {
	return updateStore(ctx, s, EventsFile, func(events []Event) ([]Event, error) {
		events = append(events, e)
		if retain > 0 && len(events) > retain {
			events = events[len(events)-retain:]
		}
		return events, nil
	})
}

// Close releases the store. FileStore holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

func readStore[T any](ctx context.Context, s *FileStore, filename string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []T
	err := s.withLock(func() error {
		var err error
		items, err = readJSONL[T](filepath.Join(s.dir, filename))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return items, nil
}

func updateStore[T any](ctx context.Context, s *FileStore, filename string, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, filename)
	return s.withLock(func() error {
		items, err := readJSONL[T](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", filename, err)
		}
		items, err = fn(items)
		if err != nil {
			return err
		}
		if err := writeJSONL(path, items); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
		return nil
	})
}

// withLock executes fn while holding an exclusive lock on the store's lock file.
func (s *FileStore) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, lockFile), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return readJSONLFromReader[T](f)
}

func readJSONLFromReader[T any](reader io.Reader) ([]T, error) {
	var items []T
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

// writeJSONL replaces the file at path with items, one JSON object per line.
func writeJSONL[T any](path string, items []T) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	encoder := json.NewEncoder(f)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func upsert[T any](items []T, item T, match func(T) bool) []T {
	for i := range items {
		if match(items[i]) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, match func(T) bool) ([]T, bool) {
	kept := items[:0]
	removed := false
	for _, item := range items {
		if match(item) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
