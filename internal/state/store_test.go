package state

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amonks/pomo/timer"
)

func TestStore_LoadEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	st, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load empty state: %v", err)
	}

	if st == nil {
		t.Fatal("expected non-nil state")
	}

	if st.Timer.Mode != timer.ModeWork || st.Timer.Running {
		t.Errorf("expected stopped work timer, got %+v", st.Timer)
	}

	if st.ActiveTaskID != "" {
		t.Errorf("expected no active task, got %q", st.ActiveTaskID)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	started := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	st := &State{
		Timer: timer.State{
			Mode:               timer.ModeShortBreak,
			Running:            true,
			StartedAt:          &started,
			AccumulatedSeconds: 12.5,
			SessionCount:       3,
		},
		ActiveTaskID: "abcd1234",
		UpdatedAt:    started,
	}

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}

	if !timer.Equal(loaded.Timer, st.Timer) {
		t.Errorf("timer mismatch: expected %+v, got %+v", st.Timer, loaded.Timer)
	}
	if loaded.ActiveTaskID != "abcd1234" {
		t.Errorf("expected active task abcd1234, got %q", loaded.ActiveTaskID)
	}
	if !loaded.UpdatedAt.Equal(started) {
		t.Errorf("expected updated at %v, got %v", started, loaded.UpdatedAt)
	}
}

func TestStore_LoadInvalidMode(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	if err := os.WriteFile(store.statePath(), []byte(`{"timer":{"mode":"nap","session_count":2}}`), 0644); err != nil {
		t.Fatalf("write state: %v", err)
	}

	st, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Timer.Mode != timer.ModeWork || st.Timer.SessionCount != 2 {
		t.Errorf("expected work mode with session count kept, got %+v", st.Timer)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	if err := os.WriteFile(store.statePath(), []byte(`{`), 0644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}

func TestStore_SaveNoChange(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	st := New()

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save initial state: %v", err)
	}

	statePath := store.statePath()
	oldTime := time.Unix(1, 0)
	if err := os.Chtimes(statePath, oldTime, oldTime); err != nil {
		t.Fatalf("failed to set mod time: %v", err)
	}

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save identical state: %v", err)
	}

	info, err := os.Stat(statePath)
	if err != nil {
		t.Fatalf("failed to stat state file: %v", err)
	}

	if !info.ModTime().Equal(oldTime) {
		t.Errorf("expected mod time to stay %v, got %v", oldTime, info.ModTime())
	}
}

func TestStore_Update(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	err := store.Update(func(st *State) error {
		st.ActiveTaskID = "task1234"
		st.Timer = timer.SetMode(st.Timer, timer.ModeLongBreak)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to update state: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}

	if loaded.ActiveTaskID != "task1234" || loaded.Timer.Mode != timer.ModeLongBreak {
		t.Errorf("update did not persist: %+v", loaded)
	}
}

func TestStore_UpdateErrorDoesNotSave(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)
	failure := errors.New("boom")

	err := store.Update(func(st *State) error {
		st.ActiveTaskID = "discarded"
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected update error, got %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	if loaded.ActiveTaskID != "" {
		t.Errorf("failed update should not persist, got %q", loaded.ActiveTaskID)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	var wg sync.WaitGroup
	numGoroutines := 10
	incrementsPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < incrementsPerGoroutine; j++ {
				err := store.Update(func(st *State) error {
					st.Timer.SessionCount++
					return nil
				})
				if err != nil {
					t.Errorf("concurrent update failed: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load final state: %v", err)
	}

	if got := loaded.Timer.SessionCount; got != numGoroutines*incrementsPerGoroutine {
		t.Errorf("expected %d increments, got %d", numGoroutines*incrementsPerGoroutine, got)
	}
}
