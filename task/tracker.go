package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amonks/pomo/internal/ids"
	internalstrings "github.com/amonks/pomo/internal/strings"
	"github.com/amonks/pomo/timer"
)

// Options configures a Tracker.
type Options struct {
	// Clock supplies timestamps. Nil uses the system clock.
	Clock timer.Clock

	// Retain bounds the event log. Zero uses DefaultRetention.
	Retain int

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Tracker implements task, project and event operations over a Store.
type Tracker struct {
	store  Store
	clock  timer.Clock
	retain int
	logger *slog.Logger
}

// NewTracker creates a Tracker backed by store.
func NewTracker(store Store, opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Retain == 0 {
		opts.Retain = DefaultRetention
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		store:  store,
		clock:  opts.Clock,
		retain: opts.Retain,
		logger: opts.Logger,
	}
}

// Close closes the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// CreateTaskOptions configures a new task.
type CreateTaskOptions struct {
	Description string

	// Project is a project ID, ID prefix or name.
	Project string

	// Estimate is the estimated pomodoro count. Nil uses DefaultEstimate.
	Estimate *int

	DueDate *time.Time
}

// CreateTask creates a new task with the given title.
func (t *Tracker) CreateTask(ctx context.Context, title string, opts CreateTaskOptions) (*Task, error) {
	title = internalstrings.NormalizeWhitespace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}

	estimate := DefaultEstimate
	if opts.Estimate != nil {
		estimate = *opts.Estimate
	}
	if err := ValidateEstimate(estimate); err != nil {
		return nil, err
	}

	var projectID string
	if opts.Project != "" {
		project, err := t.ResolveProject(ctx, opts.Project)
		if err != nil {
			return nil, err
		}
		projectID = project.ID
	}

	now := t.clock.Now()
	task := Task{
		ID:                 ids.ForEntity("task", title, now),
		Title:              title,
		Description:        internalstrings.NormalizeNewlines(opts.Description),
		ProjectID:          projectID,
		EstimatedPomodoros: estimate,
		DueDate:            opts.DueDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := t.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return &task, nil
}

// UpdateTaskOptions configures fields to update on a task.
// Nil pointers mean "don't update this field".
type UpdateTaskOptions struct {
	Title       *string
	Description *string

	// Project is a project ID, ID prefix or name. An empty string unlinks the task.
	Project *string

	Estimate *int
	DueDate  *time.Time

	// ClearDueDate removes the due date.
	ClearDueDate bool
}

// UpdateTask updates the task identified by id.
func (t *Tracker) UpdateTask(ctx context.Context, id string, opts UpdateTaskOptions) (*Task, error) {
	task, err := t.ResolveTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Title != nil {
		title := internalstrings.NormalizeWhitespace(*opts.Title)
		if err := ValidateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if opts.Description != nil {
		task.Description = internalstrings.NormalizeNewlines(*opts.Description)
	}
	if opts.Project != nil {
		task.ProjectID = ""
		if *opts.Project != "" {
			project, err := t.ResolveProject(ctx, *opts.Project)
			if err != nil {
				return nil, err
			}
			task.ProjectID = project.ID
		}
	}
	if opts.Estimate != nil {
		if err := ValidateEstimate(*opts.Estimate); err != nil {
			return nil, err
		}
		task.EstimatedPomodoros = *opts.Estimate
	}
	if opts.ClearDueDate {
		task.DueDate = nil
	} else if opts.DueDate != nil {
		task.DueDate = opts.DueDate
	}

	return t.saveTask(ctx, task)
}

// CompleteTask marks a task completed.
func (t *Tracker) CompleteTask(ctx context.Context, id string) (*Task, error) {
	task, err := t.ResolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return &task, nil
	}
	now := t.clock.Now()
	task.Completed = true
	task.CompletedAt = &now
	return t.saveTask(ctx, task)
}

// ReopenTask marks a completed task as open again.
func (t *Tracker) ReopenTask(ctx context.Context, id string) (*Task, error) {
	task, err := t.ResolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Completed = false
	task.CompletedAt = nil
	return t.saveTask(ctx, task)
}

// DeleteTask removes a task. Events that reference it are kept.
func (t *Tracker) DeleteTask(ctx context.Context, id string) (*Task, error) {
	task, err := t.ResolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.store.DeleteTask(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return &task, nil
}

func (t *Tracker) saveTask(ctx context.Context, task Task) (*Task, error) {
	task.UpdatedAt = t.clock.Now()
	if err := t.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return &task, nil
}

// TaskFilter selects tasks for ListTasks.
type TaskFilter struct {
	// All includes completed tasks.
	All bool

	// Project restricts the list to one project (ID, ID prefix or name).
	Project string
}

// ListTasks returns tasks matching filter: open tasks first, then by due
// date, then by creation time.
func (t *Tracker) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	tasks, err := t.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	var projectID string
	if filter.Project != "" {
		project, err := t.ResolveProject(ctx, filter.Project)
		if err != nil {
			return nil, err
		}
		projectID = project.ID
	}

	filtered := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Completed && !filter.All {
			continue
		}
		if projectID != "" && task.ProjectID != projectID {
			continue
		}
		filtered = append(filtered, task)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return filtered, nil
}

// ResolveTask returns the task whose ID starts with prefix.
func (t *Tracker) ResolveTask(ctx context.Context, prefix string) (Task, error) {
	tasks, err := t.store.Tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	match, found, ambiguous := ids.MatchPrefix(taskIDs, prefix)
	if !found {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, prefix)
	}
	if ambiguous {
		return Task{}, fmt.Errorf("%w: %s", ErrAmbiguousTaskIDPrefix, prefix)
	}
	for _, task := range tasks {
		if task.ID == match {
			return task, nil
		}
	}
	return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, prefix)
}

// CreateProject creates a project. An empty color uses DefaultProjectColor.
func (t *Tracker) CreateProject(ctx context.Context, name, color string) (*Project, error) {
	name = internalstrings.NormalizeWhitespace(name)
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	color = internalstrings.NormalizeLowerTrimSpace(color)
	if color == "" {
		color = DefaultProjectColor
	}
	if err := ValidateColor(color); err != nil {
		return nil, err
	}

	now := t.clock.Now()
	project := Project{
		ID:        ids.ForEntity("project", name, now),
		Name:      name,
		Color:     color,
		CreatedAt: now,
	}
	if err := t.store.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return &project, nil
}

// CompleteProject marks a project completed along with its open tasks.
func (t *Tracker) CompleteProject(ctx context.Context, id string) (*Project, []Task, error) {
	project, err := t.ResolveProject(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := t.store.Tasks(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := t.clock.Now()
	var completed []Task
	for _, task := range tasks {
		if task.ProjectID != project.ID || task.Completed {
			continue
		}
		task.Completed = true
		task.CompletedAt = &now
		task.UpdatedAt = now
		if err := t.store.SaveTask(ctx, task); err != nil {
			return nil, nil, fmt.Errorf("save task: %w", err)
		}
		completed = append(completed, task)
	}

	project.Completed = true
	project.CompletedAt = &now
	if err := t.store.SaveProject(ctx, project); err != nil {
		return nil, nil, fmt.Errorf("save project: %w", err)
	}
	return &project, completed, nil
}

// DeleteProject removes a project and unlinks its tasks.
func (t *Tracker) DeleteProject(ctx context.Context, id string) (*Project, error) {
	project, err := t.ResolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := t.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	for _, task := range tasks {
		if task.ProjectID != project.ID {
			continue
		}
		task.ProjectID = ""
		task.UpdatedAt = now
		if err := t.store.SaveTask(ctx, task); err != nil {
			return nil, fmt.Errorf("save task: %w", err)
		}
	}

	if err := t.store.DeleteProject(ctx, project.ID); err != nil {
		return nil, fmt.Errorf("delete project: %w", err)
	}
	return &project, nil
}

// ListProjects returns projects ordered by name. Completed projects are
// included only when all is set.
func (t *Tracker) ListProjects(ctx context.Context, all bool) ([]Project, error) {
	projects, err := t.store.Projects(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]Project, 0, len(projects))
	for _, project := range projects {
		if project.Completed && !all {
			continue
		}
		filtered = append(filtered, project)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})
	return filtered, nil
}

// ResolveProject returns the project whose ID starts with ref, or whose
// name equals ref case-insensitively.
func (t *Tracker) ResolveProject(ctx context.Context, ref string) (Project, error) {
	projects, err := t.store.Projects(ctx)
	if err != nil {
		return Project{}, err
	}
	projectIDs := make([]string, 0, len(projects))
	for _, project := range projects {
		projectIDs = append(projectIDs, project.ID)
	}

	match, found, ambiguous := ids.MatchPrefix(projectIDs, ref)
	if ambiguous {
		return Project{}, fmt.Errorf("%w: %s", ErrAmbiguousProjectIDPrefix, ref)
	}
	for _, project := range projects {
		if found && project.ID == match {
			return project, nil
		}
	}

	name := internalstrings.NormalizeLowerTrimSpace(ref)
	for _, project := range projects {
		if strings.ToLower(project.Name) == name {
			return project, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, ref)
}

// Record appends the event for a work-session completion and credits the
// task when the session was not interrupted. Break completions are not
// logged; ok reports whether an event was appended.
func (t *Tracker) Record(ctx context.Context, c timer.Completion, taskID string) (event Event, ok bool, err error) {
	if c.Mode != timer.ModeWork {
		t.logger.Debug("break finished", "mode", c.Mode, "completed_at", c.CompletedAt)
		return Event{}, false, nil
	}

	event = Event{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		Mode:            c.Mode,
		DurationMinutes: c.DurationMinutes(),
		StartedAt:       c.StartedAt,
		CompletedAt:     c.CompletedAt,
		Interrupted:     c.Interrupted,
	}
	if err := t.store.AppendEvent(ctx, event, t.retain); err != nil {
		return Event{}, false, fmt.Errorf("append event: %w", err)
	}
	t.logger.Info("pomodoro recorded",
		"id", event.ID, "task", taskID, "minutes", event.DurationMinutes, "interrupted", event.Interrupted)

	if taskID == "" || event.Interrupted {
		return event, true, nil
	}

	task, err := t.ResolveTask(ctx, taskID)
	if err != nil {
		t.logger.Warn("recorded pomodoro for missing task", "task", taskID, "error", err)
		return event, true, nil
	}
	task.ActualPomodoros++
	if _, err := t.saveTask(ctx, task); err != nil {
		return event, true, err
	}
	return event, true, nil
}

// Events returns the event log, newest first.
func (t *Tracker) Events(ctx context.Context) ([]Event, error) {
	events, err := t.store.Events(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CompletedAt.After(events[j].CompletedAt)
	})
	return events, nil
}

// TodayCount returns the number of completed work sessions on the current
// calendar day in loc.
func (t *Tracker) TodayCount(ctx context.Context, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.Local
	}
	events, err := t.store.Events(ctx)
	if err != nil {
		return 0, err
	}
	y, m, d := t.clock.Now().In(loc).Date()
	count := 0
	for _, event := range events {
		if event.Interrupted || event.CompletedAt.IsZero() {
			continue
		}
		ey, em, ed := event.CompletedAt.In(loc).Date()
		if ey == y && em == m && ed == d {
			count++
		}
	}
	return count, nil
}

// Snapshot returns the events, tasks and projects needed for reports.
func (t *Tracker) Snapshot(ctx context.Context) ([]Event, []Task, []Project, error) {
	events, err := t.store.Events(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	tasks, err := t.store.Tasks(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	projects, err := t.store.Projects(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return events, tasks, projects, nil
}
