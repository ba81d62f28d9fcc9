package editor

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestCommandPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		pomo   string
		visual string
		editor string
		want   []string
	}{
		{name: "fallback", want: []string{"vi"}},
		{name: "editor", editor: "nano", want: []string{"nano"}},
		{name: "visual wins over editor", visual: "code --wait", editor: "nano", want: []string{"code", "--wait"}},
		{name: "pomo editor wins", pomo: "hx", visual: "code --wait", editor: "nano", want: []string{"hx"}},
		{name: "blank values are skipped", pomo: "  ", editor: "nano", want: []string{"nano"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEditor, tt.pomo)
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.editor)
			if got := Command(); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEditReportsExitStatus(t *testing.T) {
	t.Setenv(EnvEditor, "false")
	err := Edit(filepath.Join(t.TempDir(), "task.md"))
	if err == nil || !strings.Contains(err.Error(), "false exited with status 1") {
		t.Fatalf("expected exit status error, got %v", err)
	}
}

func TestEditTaskReadsEditedFile(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-editor")
	content := "#!/bin/sh\nprintf 'title = \"Edited title\"\\nestimate = 3\\n---\\nNotes here\\n' > \"$1\"\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	t.Setenv(EnvEditor, script)

	parsed, err := EditTask(DefaultCreateData(), time.UTC)
	if err != nil {
		t.Fatalf("EditTask failed: %v", err)
	}
	if parsed.Title != "Edited title" || parsed.Estimate != 3 || parsed.Description != "Notes here" {
		t.Fatalf("unexpected parsed task: %+v", parsed)
	}
}
