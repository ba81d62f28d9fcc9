// Package timertui is the full-screen timer started by `pomo run`.
package timertui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amonks/pomo/timer"
)

const tickInterval = time.Second

// Result is what one Store update produced.
type Result struct {
	State       timer.State
	Completions []timer.Completion

	// RecordErr reports completions that could not be recorded. State was
	// saved regardless.
	RecordErr error
}

// Store holds the timer state shared with other pomo commands.
type Store interface {
	// Update loads the saved state, fast-forwards it to now, applies op
	// (which may be nil) and saves the result in one locked step. Every
	// completion produced along the way is recorded.
	Update(op func(*timer.Timer)) (Result, error)
}

// Options configures the timer screen.
type Options struct {
	Config timer.Config
	Clock  timer.Clock
	Store  Store

	// TaskTitle names the focused task, if any.
	TaskTitle string

	DailyGoal  int
	TodayCount int
}

type model struct {
	store    Store
	cfg      timer.Config
	clock    timer.Clock
	state    timer.State
	keys     keyMap
	help     help.Model
	progress progress.Model

	taskTitle  string
	dailyGoal  int
	todayCount int

	status string
	err    error
}

type tickMsg time.Time

// Run shows the timer until the user quits or ctx is canceled. Every
// change has already been saved to the store when Run returns.
func Run(ctx context.Context, opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx), tea.WithReportFocus())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// New builds the bubbletea model and loads the current state from the store.
func New(opts Options) tea.Model {
	m := model{
		store:      opts.Store,
		cfg:        opts.Config.Normalize(),
		clock:      opts.Clock,
		state:      timer.New(),
		keys:       newKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		taskTitle:  opts.TaskTitle,
		dailyGoal:  opts.DailyGoal,
		todayCount: opts.TodayCount,
	}
	return m.update(nil)
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(60, msg.Width-8))
		return m, nil

	case tickMsg:
		return m.update(nil), tick()

	// Timers do not fire while the terminal is suspended or the laptop
	// sleeps. Elapsed time is derived from timestamps, so a refresh is enough.
	case tea.FocusMsg, tea.ResumeMsg:
		return m.update(nil), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.update(nil), tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.status = ""
		m = m.update(func(t *timer.Timer) { t.Toggle() })
	case key.Matches(msg, m.keys.Reset):
		m.status = ""
		m = m.update(func(t *timer.Timer) { t.Reset("") })
	case key.Matches(msg, m.keys.Work):
		m = m.switchMode(timer.ModeWork)
	case key.Matches(msg, m.keys.ShortBreak):
		m = m.switchMode(timer.ModeShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		m = m.switchMode(timer.ModeLongBreak)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m model) switchMode(mode timer.Mode) model {
	m.status = ""
	return m.update(func(t *timer.Timer) { t.SetMode(mode) })
}

// update runs op against the saved state and folds the result into the
// model. On failure the last known state stays on screen.
func (m model) update(op func(*timer.Timer)) model {
	res, err := m.store.Update(op)
	if err != nil {
		m.err = fmt.Errorf("update timer: %w", err)
		return m
	}
	m.state = res.State
	m.err = res.RecordErr
	for _, c := range res.Completions {
		if c.Mode == timer.ModeWork && !c.Interrupted {
			m.todayCount++
		}
	}
	if n := len(res.Completions); n > 0 {
		m.status = completionMessage(res.Completions[n-1], m.state)
	}
	return m
}

func completionMessage(c timer.Completion, next timer.State) string {
	if c.Interrupted {
		return fmt.Sprintf("%s stopped after %s.", c.Mode.Label(), timer.FormatClock(c.ElapsedSeconds))
	}
	if c.Mode == next.Mode {
		return fmt.Sprintf("%s complete.", c.Mode.Label())
	}
	msg := fmt.Sprintf("%s complete. Next: %s.", c.Mode.Label(), next.Mode.Label())
	if next.Running {
		msg = fmt.Sprintf("%s complete. %s started.", c.Mode.Label(), next.Mode.Label())
	}
	return msg
}

func (m model) View() string {
	view := timer.Describe(m.state, m.cfg, m.clock.Now())

	var b strings.Builder
	header := modeStyle(view.Mode).Render(view.Mode.Label())
	if view.FlowMode {
		header += valueMuted.Render("  flow")
	}
	header += valueMuted.Render(fmt.Sprintf("  session %d", view.SessionCount+1))
	b.WriteString(header)
	b.WriteString("\n")

	clock := view.Clock()
	if view.OverTarget {
		clock = overrunStyle.Render(clock + " +")
	}
	if !view.Running {
		clock += valueMuted.Render("  paused")
	}
	b.WriteString(clockStyle.Render(clock))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(view.Progress))
	b.WriteString("\n\n")

	if m.taskTitle != "" {
		b.WriteString(labelStyle.Render("Task  "))
		b.WriteString(m.taskTitle)
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("Today "))
	if m.dailyGoal > 0 {
		b.WriteString(fmt.Sprintf("%d/%d pomodoros", m.todayCount, m.dailyGoal))
	} else {
		b.WriteString(fmt.Sprintf("%d pomodoros", m.todayCount))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return frameStyle.Render(b.String())
}
