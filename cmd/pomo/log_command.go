package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/listflags"
	"github.com/amonks/pomo/internal/ui"
	"github.com/amonks/pomo/task"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent pomodoros",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

var (
	logLimit int
	logJSON  bool
)

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum number of events (0 for all)")
	listflags.AddJSONFlag(logCmd, &logJSON)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.tracker.Events(ctx)
	if err != nil {
		return err
	}
	if logLimit > 0 && len(events) > logLimit {
		events = events[:logLimit]
	}

	if logJSON {
		if events == nil {
			events = []task.Event{}
		}
		return encodeJSONToStdout(events)
	}

	if len(events) == 0 {
		fmt.Println("No pomodoros recorded.")
		return nil
	}

	tasks, err := a.tracker.ListTasks(ctx, task.TaskFilter{All: true})
	if err != nil {
		return err
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	fmt.Print(formatEventTable(events, titles, a.now()))
	return nil
}

func formatEventTable(events []task.Event, titles map[string]string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"COMPLETED", "MINUTES", "RESULT", "TASK"}, len(events))
	loc := now.Location()
	for _, e := range events {
		completed := "-"
		if !e.CompletedAt.IsZero() {
			completed = e.CompletedAt.In(loc).Format("2006-01-02 15:04")
		}
		result := "done"
		if e.Interrupted {
			result = "interrupted"
		}
		title := "-"
		if e.TaskID != "" {
			title = titles[e.TaskID]
			if title == "" {
				title = "(deleted " + e.TaskID + ")"
			}
		}
		builder.AddRow(completed, fmt.Sprintf("%d", e.DurationMinutes), result, ui.TruncateTableCell(title))
	}
	return builder.String()
}
