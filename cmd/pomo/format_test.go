package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/amonks/pomo/stats"
	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

func plainID(id string, _ int) string { return id }

func TestFormatTimerLine(t *testing.T) {
	tests := []struct {
		name string
		view timer.View
		want string
	}{
		{
			name: "countdown",
			view: timer.View{Mode: timer.ModeWork, Running: true, DisplaySeconds: 900},
			want: "Focus: 15:00 left, running",
		},
		{
			name: "paused break",
			view: timer.View{Mode: timer.ModeShortBreak, DisplaySeconds: 300},
			want: "Short Break: 05:00 left, stopped",
		},
		{
			name: "flow past target",
			view: timer.View{Mode: timer.ModeWork, FlowMode: true, Running: true, OverTarget: true, DisplaySeconds: 1800.5},
			want: "Focus: 30:00 elapsed (past target), running",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimerLine(tt.view); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrintCompletions(t *testing.T) {
	start := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	completions := []timer.Completion{
		{Mode: timer.ModeWork, Interrupted: true, StartedAt: start, CompletedAt: start.Add(10 * time.Minute), ElapsedSeconds: 600},
		{Mode: timer.ModeWork, StartedAt: start, CompletedAt: start.Add(25 * time.Minute), ElapsedSeconds: 1500},
	}

	var buf bytes.Buffer
	printCompletions(&buf, completions, timer.State{Mode: timer.ModeLongBreak, Running: true})

	want := "Focus stopped after 10:00.\nFocus complete (25:00).\nStarted: Long Break.\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatTaskTable(t *testing.T) {
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "abcd1234", Title: "Write report", ProjectID: "p1", EstimatedPomodoros: 3, ActualPomodoros: 1, DueDate: &due},
		{ID: "efgh5678", Title: "Read paper", Completed: true, EstimatedPomodoros: 1},
	}

	out := formatTaskTable(tasks, map[string]string{"p1": "Thesis"}, nil, "abcd1234", plainID, now)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "POMODOROS") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"abcd1234 *", "open", "1/3", "Thesis", "Mar 12", "Write report"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("expected %q in %q", want, lines[1])
		}
	}
	for _, want := range []string{"efgh5678", "done", "1/1", "Read paper"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("expected %q in %q", want, lines[2])
		}
	}
	if strings.Contains(lines[2], "*") {
		t.Errorf("only the focused task should be marked: %q", lines[2])
	}
}

func TestFormatEventTable(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	events := []task.Event{
		{ID: "e2", TaskID: "gone", DurationMinutes: 10, CompletedAt: now.Add(-time.Hour), Interrupted: true},
		{ID: "e1", TaskID: "t1", DurationMinutes: 25, CompletedAt: now.Add(-2 * time.Hour)},
		{ID: "e0", DurationMinutes: 25},
	}

	out := formatEventTable(events, map[string]string{"t1": "Write report"}, now)
	for _, want := range []string{"2026-03-09 11:00", "interrupted", "(deleted gone)", "2026-03-09 10:00", "Write report"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestFormatStats(t *testing.T) {
	day := "Friday"
	hour := "9 AM"
	s := stats.Stats{
		TotalCompleted:        4,
		TotalInterrupted:      1,
		TotalMinutes:          100,
		CompletionRate:        80,
		CurrentStreak:         1,
		LongestStreak:         3,
		AvgPomodorosPerDay:    2,
		AvgFocusMinutesPerDay: 50,
		Today:                 stats.DailyStats{Date: "2026-03-09", Completed: 2, Minutes: 50},
		ByProject: []stats.ProjectStats{
			{ProjectID: "p1", ProjectName: "Thesis", Color: "#ff0000", Pomodoros: 3, Minutes: 75},
			{ProjectID: stats.NoProjectID, ProjectName: stats.NoProjectName, Color: stats.NoProjectColor, Pomodoros: 1, Minutes: 25},
		},
		EstimateAccuracy: 150,
		Insights: stats.Insights{
			MostProductiveDay:  &day,
			MostProductiveHour: &hour,
			PeakDayCount:       3,
			PeakHourCount:      2,
		},
	}
	days := []stats.DailyStats{
		{Date: "2026-03-08"},
		{Date: "2026-03-09", Completed: 2, Minutes: 50},
	}

	out := formatStats(s, 8, "Last 7 days", days)
	for _, want := range []string{
		"2/8 pomodoros, 50m",
		"1 day (longest 3 days)",
		"4 completed, 1 interrupted (80% completed)",
		"1h 40m",
		"2.0 pomodoros, 50m",
		"more than estimated",
		"Sun Mar 8",
		"Thesis",
		"No Project",
		"most productive day is Friday",
		"9 AM hour",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, strings.Repeat("█", statsBarWidth)) {
		t.Errorf("expected the busiest day to fill the bar:\n%s", out)
	}
}
