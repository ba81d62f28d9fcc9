package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	created := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	if err := store.SaveTask(ctx, Task{ID: "t1", Title: "One", CreatedAt: created}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveTask(ctx, Task{ID: "t1", Title: "One again", CreatedAt: created}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.SaveProject(ctx, Project{ID: "p1", Name: "Work", Color: "#ff0000"}); err != nil {
		t.Fatalf("save project: %v", err)
	}

	reopened, err := OpenFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	tasks, err := reopened.Tasks(ctx)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "One again" || !tasks[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	projects, err := reopened.Projects(ctx)
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Color != "#ff0000" {
		t.Fatalf("unexpected projects: %+v", projects)
	}

	if err := reopened.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if err := reopened.DeleteProject(ctx, "p1"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestFileStoreEmpty(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "nested", "data"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	events, err := store.Events(context.Background())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestFileStoreToleratesMalformedTimestamps(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		`{"id":"a","duration_minutes":25,"started_at":"2026-03-09T09:00:00Z","completed_at":"2026-03-09T09:25:00Z","interrupted":false}`,
		`{"id":"b","duration_minutes":25,"completed_at":"not a date","interrupted":false}`,
		`{"id":"c","duration_minutes":44.6,"completed_at":12345}`,
		``,
	}
	if err := os.WriteFile(filepath.Join(dir, EventsFile), []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, _ := OpenFileStore(dir)
	events, err := store.Events(context.Background())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].CompletedAt.IsZero() {
		t.Errorf("expected valid timestamp for event a")
	}
	if !events[1].CompletedAt.IsZero() || !events[2].CompletedAt.IsZero() {
		t.Errorf("expected zero timestamps for malformed events")
	}
	if events[2].DurationMinutes != 45 {
		t.Errorf("expected rounded duration 45, got %d", events[2].DurationMinutes)
	}
	if !events[0].IsWork() {
		t.Errorf("events without a mode are work sessions")
	}
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store, _ := OpenFileStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := Event{ID: string(rune('a' + i)), CompletedAt: time.Now()}
			if err := store.AppendEvent(ctx, e, 0); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	events, err := store.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 20 {
		t.Fatalf("expected 20 events, got %d", len(events))
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	store, _ := OpenFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Tasks(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
