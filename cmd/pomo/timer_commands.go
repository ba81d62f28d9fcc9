package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/listflags"
	"github.com/amonks/pomo/internal/state"
	"github.com/amonks/pomo/internal/timertui"
	"github.com/amonks/pomo/task"
	"github.com/amonks/pomo/timer"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the timer",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Pause the timer (in flow mode, finish the session)",
	Aliases: []string{
		"pause",
	},
	Args: cobra.NoArgs,
	RunE: runStop,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Start the timer if stopped, stop it if running",
	Args:  cobra.NoArgs,
	RunE:  runToggle,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusJSON bool

var modeCmd = &cobra.Command{
	Use:   "mode <work|short|long>",
	Short: "Switch timer mode without finishing the current session",
	Args:  cobra.ExactArgs(1),
	RunE:  runMode,
}

var resetCmd = &cobra.Command{
	Use:   "reset [work|short|long]",
	Short: "Stop the timer and clear elapsed time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReset,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive timer",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd, toggleCmd, statusCmd, modeCmd, resetCmd, runCmd)
	listflags.AddJSONFlag(statusCmd, &statusJSON)
}

// timerResult is what a timer command observed.
type timerResult struct {
	state       state.State
	completions []timer.Completion

	// saved reports that state was written back to the state file.
	saved bool
}

// withTimer loads the shared timer under the state lock, fast-forwards it
// to now, applies op and saves the result. Every completion produced along
// the way is recorded. Recording failures do not prevent the state from
// being saved, so a session is never recorded twice.
func (a *app) withTimer(ctx context.Context, op func(t *timer.Timer, st *state.State) error) (timerResult, error) {
	var result timerResult
	var recordErr error
	err := a.states.Update(func(st *state.State) error {
		t := timer.NewTimer(timer.Options{
			Config: a.cfg.Timer,
			Clock:  a.clock,
			State:  &st.Timer,
			Handlers: timer.Handlers{
				OnComplete: func(c timer.Completion) {
					result.completions = append(result.completions, c)
					if err := a.record(ctx, c, st.ActiveTaskID); err != nil {
						a.logger.Error("failed to record session", "error", err)
						recordErr = errors.Join(recordErr, err)
					}
				},
				OnStateChange: func(timer.State) {
					st.UpdatedAt = a.now()
				},
			},
		})

		t.Tick()
		if op != nil {
			if err := op(t, st); err != nil {
				return err
			}
		}
		st.Timer = t.State()
		result.state = *st
		return nil
	})
	if err != nil {
		return result, err
	}
	result.saved = true
	return result, recordErr
}

func runTimerCommand(cmd *cobra.Command, op func(t *timer.Timer, st *state.State) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.withTimer(ctx, op)
	printCompletions(os.Stdout, result.completions, result.state.Timer)
	if err != nil {
		return err
	}
	return a.printStatus(ctx, os.Stdout, result.state)
}

func runStart(cmd *cobra.Command, args []string) error {
	return runTimerCommand(cmd, func(t *timer.Timer, _ *state.State) error {
		if t.State().Running {
			return nil
		}
		t.Toggle()
		return nil
	})
}

func runStop(cmd *cobra.Command, args []string) error {
	return runTimerCommand(cmd, func(t *timer.Timer, _ *state.State) error {
		if !t.State().Running {
			return nil
		}
		t.Toggle()
		return nil
	})
}

func runToggle(cmd *cobra.Command, args []string) error {
	return runTimerCommand(cmd, func(t *timer.Timer, _ *state.State) error {
		t.Toggle()
		return nil
	})
}

func runMode(cmd *cobra.Command, args []string) error {
	mode, err := timer.ParseMode(args[0])
	if err != nil {
		return err
	}
	return runTimerCommand(cmd, func(t *timer.Timer, _ *state.State) error {
		t.SetMode(mode)
		return nil
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	var mode timer.Mode
	if len(args) == 1 {
		parsed, err := timer.ParseMode(args[0])
		if err != nil {
			return err
		}
		mode = parsed
	}
	return runTimerCommand(cmd, func(t *timer.Timer, _ *state.State) error {
		t.Reset(mode)
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.withTimer(ctx, nil)
	if !statusJSON {
		printCompletions(os.Stdout, result.completions, result.state.Timer)
	}
	if err != nil {
		return err
	}

	if statusJSON {
		out, err := a.statusOutput(ctx, result.state)
		if err != nil {
			return err
		}
		return encodeJSONToStdout(out)
	}
	return a.printStatus(ctx, os.Stdout, result.state)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.withTimer(ctx, nil)
	if err != nil {
		return err
	}
	st := result.state

	var taskTitle string
	if st.ActiveTaskID != "" {
		if t, err := a.tracker.ResolveTask(ctx, st.ActiveTaskID); err == nil {
			taskTitle = t.Title
		}
	}
	today, err := a.tracker.TodayCount(ctx, a.now().Location())
	if err != nil {
		return err
	}

	return timertui.Run(ctx, timertui.Options{
		Config:     a.cfg.Timer,
		Clock:      a.clock,
		Store:      sharedTimer{ctx: ctx, app: a},
		TaskTitle:  taskTitle,
		DailyGoal:  a.cfg.Stats.DailyGoal,
		TodayCount: today,
	})
}

// sharedTimer gives the timer screen the same locked load, fast-forward
// and save cycle as the other timer commands, so changes made from another
// terminal are picked up on the next refresh instead of overwritten.
type sharedTimer struct {
	ctx context.Context
	app *app
}

func (s sharedTimer) Update(op func(*timer.Timer)) (timertui.Result, error) {
	result, err := s.app.withTimer(s.ctx, func(t *timer.Timer, _ *state.State) error {
		if op != nil {
			op(t)
		}
		return nil
	})
	if !result.saved {
		return timertui.Result{}, err
	}
	return timertui.Result{
		State:       result.state.Timer,
		Completions: result.completions,
		RecordErr:   err,
	}, nil
}

// statusView is the JSON shape of `pomo status --json`.
type statusView struct {
	timer.View
	Display      string     `json:"clock"`
	ActiveTaskID string     `json:"active_task_id,omitempty"`
	ActiveTask   *task.Task `json:"active_task,omitempty"`
	TodayCount   int        `json:"today_count"`
	DailyGoal    int        `json:"daily_goal"`
}

func (a *app) statusOutput(ctx context.Context, st state.State) (statusView, error) {
	view := timer.Describe(st.Timer, a.cfg.Timer, a.now())
	out := statusView{
		View:         view,
		Display:      view.Clock(),
		ActiveTaskID: st.ActiveTaskID,
		DailyGoal:    a.cfg.Stats.DailyGoal,
	}
	if st.ActiveTaskID != "" {
		if t, err := a.tracker.ResolveTask(ctx, st.ActiveTaskID); err == nil {
			out.ActiveTask = &t
		} else {
			a.logger.Warn("focused task not found", "task", st.ActiveTaskID, "error", err)
		}
	}
	today, err := a.tracker.TodayCount(ctx, a.now().Location())
	if err != nil {
		return out, err
	}
	out.TodayCount = today
	return out, nil
}

func (a *app) printStatus(ctx context.Context, w io.Writer, st state.State) error {
	out, err := a.statusOutput(ctx, st)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, formatTimerLine(out.View))
	fmt.Fprintf(w, "Completed sessions: %d\n", out.SessionCount)
	if out.ActiveTask != nil {
		fmt.Fprintf(w, "Task: %s\n", out.ActiveTask.Title)
	}
	fmt.Fprintf(w, "Today: %d/%d pomodoros\n", out.TodayCount, out.DailyGoal)
	return nil
}

func formatTimerLine(view timer.View) string {
	var b strings.Builder
	b.WriteString(view.Mode.Label())
	b.WriteString(": ")
	b.WriteString(view.Clock())
	if view.FlowMode {
		b.WriteString(" elapsed")
		if view.OverTarget {
			b.WriteString(" (past target)")
		}
	} else {
		b.WriteString(" left")
	}
	if view.Running {
		b.WriteString(", running")
	} else {
		b.WriteString(", stopped")
	}
	return b.String()
}

func printCompletions(w io.Writer, completions []timer.Completion, final timer.State) {
	for i, c := range completions {
		label := c.Mode.Label()
		if c.Interrupted {
			fmt.Fprintf(w, "%s stopped after %s.\n", label, timer.FormatClock(c.ElapsedSeconds))
			continue
		}
		fmt.Fprintf(w, "%s complete (%s).\n", label, timer.FormatClock(c.ElapsedSeconds))
		if i == len(completions)-1 && final.Mode != c.Mode {
			verb := "Next"
			if final.Running {
				verb = "Started"
			}
			fmt.Fprintf(w, "%s: %s.\n", verb, final.Mode.Label())
		}
	}
}
