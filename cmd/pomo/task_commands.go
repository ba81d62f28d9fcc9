package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/editor"
	"github.com/amonks/pomo/internal/listflags"
	"github.com/amonks/pomo/internal/markdown"
	"github.com/amonks/pomo/internal/state"
	"github.com/amonks/pomo/internal/ui"
	"github.com/amonks/pomo/task"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Manage tasks",
}

// task add
var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a task",
	Long: `Create a task.

By default, opens $EDITOR on a TOML representation of the task when
running interactively without flags. Use --no-edit to skip the editor,
or --edit to force it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskAdd,
}

var (
	taskAddProject     string
	taskAddEstimate    int
	taskAddDue         string
	taskAddDescription string
	taskAddEdit        bool
	taskAddNoEdit      bool
)

// task list
var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE:    runTaskList,
}

var (
	taskListAll     bool
	taskListJSON    bool
	taskListProject string
)

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// task edit
var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a task",
	Long: `Update a task.

By default, opens $EDITOR when running interactively and no update
flags are given. Use --no-edit to skip the editor, or --edit to force it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskEdit,
}

var (
	taskEditTitle       string
	taskEditProject     string
	taskEditEstimate    int
	taskEditDue         string
	taskEditClearDue    bool
	taskEditDescription string
	taskEditEdit        bool
	taskEditNoEdit      bool
)

// task done
var taskDoneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Mark tasks completed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskDone,
}

// task reopen
var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>...",
	Short: "Reopen completed tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskReopen,
}

// task rm
var taskRmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete tasks",
	Long: `Delete tasks.

Recorded pomodoros stay in the log and keep counting toward statistics.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskRm,
}

// task focus
var taskFocusCmd = &cobra.Command{
	Use:   "focus [id]",
	Short: "Choose the task that receives finished pomodoros",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaskFocus,
}

var taskFocusClear bool

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskDoneCmd, taskReopenCmd, taskRmCmd, taskFocusCmd)

	taskAddCmd.Flags().StringVarP(&taskAddProject, "project", "p", "", "Project name or ID")
	taskAddCmd.Flags().IntVarP(&taskAddEstimate, "estimate", "n", task.DefaultEstimate, "Estimated pomodoros")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	taskAddCmd.Flags().BoolVarP(&taskAddEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	taskAddCmd.Flags().BoolVar(&taskAddNoEdit, "no-edit", false, "Do not open $EDITOR")

	listflags.AddAllFlag(taskListCmd, &taskListAll)
	listflags.AddJSONFlag(taskListCmd, &taskListJSON)
	taskListCmd.Flags().StringVarP(&taskListProject, "project", "p", "", "Only list tasks in this project")

	listflags.AddJSONFlag(taskShowCmd, &taskShowJSON)

	taskEditCmd.Flags().StringVar(&taskEditTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVarP(&taskEditProject, "project", "p", "", "Project name or ID (empty to unlink)")
	taskEditCmd.Flags().IntVarP(&taskEditEstimate, "estimate", "n", 0, "Estimated pomodoros")
	taskEditCmd.Flags().StringVar(&taskEditDue, "due", "", "Due date (YYYY-MM-DD)")
	taskEditCmd.Flags().BoolVar(&taskEditClearDue, "clear-due", false, "Remove the due date")
	taskEditCmd.Flags().StringVarP(&taskEditDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	taskEditCmd.Flags().BoolVarP(&taskEditEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	taskEditCmd.Flags().BoolVar(&taskEditNoEdit, "no-edit", false, "Do not open $EDITOR")

	taskFocusCmd.Flags().BoolVar(&taskFocusClear, "clear", false, "Stop crediting pomodoros to any task")

	addFlagAliases(taskAddCmd, taskListCmd, taskEditCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var title string
	if len(args) == 1 {
		title = args[0]
	}

	hasCreateFlags := len(args) > 0 || hasChangedFlags(cmd, "project", "estimate", "due", "description")
	if shouldUseEditor(hasCreateFlags, taskAddEdit, taskAddNoEdit, editor.IsInteractive()) {
		data := editor.DefaultCreateData()
		data.Title = title
		if cmd.Flags().Changed("project") {
			data.Project = taskAddProject
		}
		if cmd.Flags().Changed("estimate") {
			data.Estimate = taskAddEstimate
		}
		if cmd.Flags().Changed("due") {
			data.Due = taskAddDue
		}
		if cmd.Flags().Changed("description") {
			data.Description = taskAddDescription
		}

		parsed, err := editor.EditTask(data, a.now().Location())
		if err != nil {
			return err
		}
		created, err := a.tracker.CreateTask(ctx, parsed.Title, parsed.ToCreateOptions())
		if err != nil {
			return err
		}
		fmt.Printf("Created task %s: %s\n", created.ID, created.Title)
		return nil
	}

	if title == "" {
		return errors.New("title is required (or run interactively to use $EDITOR)")
	}

	description, err := resolveDescriptionFromStdin(taskAddDescription, os.Stdin)
	if err != nil {
		return err
	}
	due, err := task.ParseDueDate(taskAddDue, a.now().Location())
	if err != nil {
		return err
	}

	opts := task.CreateTaskOptions{
		Description: description,
		Project:     taskAddProject,
		DueDate:     due,
	}
	if cmd.Flags().Changed("estimate") {
		opts.Estimate = &taskAddEstimate
	}

	created, err := a.tracker.CreateTask(ctx, title, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %s: %s\n", created.ID, created.Title)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.tracker.ListTasks(ctx, task.TaskFilter{All: taskListAll, Project: taskListProject})
	if err != nil {
		return err
	}

	if taskListJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return encodeJSONToStdout(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	names, err := a.projectNames(ctx)
	if err != nil {
		return err
	}
	st, err := a.states.Load()
	if err != nil {
		return err
	}
	prefixLengths, err := a.taskPrefixLengths(ctx)
	if err != nil {
		return err
	}

	fmt.Print(formatTaskTable(tasks, names, prefixLengths, st.ActiveTaskID, ui.HighlightID, a.now()))
	return nil
}

func formatTaskTable(tasks []task.Task, projectNames map[string]string, prefixLengths map[string]int, focusedID string, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "POMODOROS", "PROJECT", "DUE", "TITLE"}, len(tasks))

	for _, t := range tasks {
		id := highlight(t.ID, ui.PrefixLength(prefixLengths, t.ID))
		if t.ID == focusedID {
			id += " *"
		}
		project := projectNames[t.ProjectID]
		if project == "" {
			project = "-"
		}
		builder.AddRow(
			id,
			taskStatus(t),
			fmt.Sprintf("%d/%d", t.ActualPomodoros, t.EstimatedPomodoros),
			ui.TruncateTableCell(project),
			ui.FormatDate(t.DueDate, now),
			ui.TruncateTableCell(t.Title),
		)
	}

	return builder.String()
}

func taskStatus(t task.Task) string {
	if t.Completed {
		return "done"
	}
	return "open"
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tracker.ResolveTask(ctx, args[0])
	if err != nil {
		return err
	}

	if taskShowJSON {
		return encodeJSONToStdout(t)
	}

	names, err := a.projectNames(ctx)
	if err != nil {
		return err
	}
	st, err := a.states.Load()
	if err != nil {
		return err
	}
	printTaskDetail(os.Stdout, t, names[t.ProjectID], t.ID == st.ActiveTaskID)
	return nil
}

const taskDetailLineWidth = 80

// printTaskDetail prints detailed information about a task.
func printTaskDetail(w io.Writer, t task.Task, projectName string, focused bool) {
	fmt.Fprintf(w, "ID:        %s\n", t.ID)
	fmt.Fprintf(w, "Title:     %s\n", t.Title)
	fmt.Fprintf(w, "Status:    %s\n", taskStatus(t))
	if projectName != "" {
		fmt.Fprintf(w, "Project:   %s\n", projectName)
	}
	fmt.Fprintf(w, "Pomodoros: %d/%d\n", t.ActualPomodoros, t.EstimatedPomodoros)
	if t.DueDate != nil {
		fmt.Fprintf(w, "Due:       %s\n", t.DueDate.Format("2006-01-02"))
	}
	if focused {
		fmt.Fprintln(w, "Focused:   yes")
	}
	fmt.Fprintf(w, "Created:   %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:   %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	if description := markdown.SafeRender(taskDetailLineWidth, 2, []byte(t.Description)); description != nil {
		fmt.Fprintf(w, "\nDescription:\n%s\n", description)
	}
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	hasUpdateFlags := hasChangedFlags(cmd, "title", "project", "estimate", "due", "clear-due", "description")
	if shouldUseEditor(hasUpdateFlags, taskEditEdit, taskEditNoEdit, editor.IsInteractive()) {
		existing, err := a.tracker.ResolveTask(ctx, args[0])
		if err != nil {
			return err
		}
		names, err := a.projectNames(ctx)
		if err != nil {
			return err
		}
		parsed, err := editor.EditTask(editor.DataFromTask(existing, names[existing.ProjectID]), a.now().Location())
		if err != nil {
			return err
		}
		updated, err := a.tracker.UpdateTask(ctx, existing.ID, parsed.ToUpdateOptions())
		if err != nil {
			return err
		}
		fmt.Printf("Updated task %s: %s\n", updated.ID, updated.Title)
		return nil
	}

	if !hasUpdateFlags {
		return errors.New("no updates given (use flags, or --edit to open $EDITOR)")
	}

	opts := task.UpdateTaskOptions{ClearDueDate: taskEditClearDue}
	if cmd.Flags().Changed("title") {
		opts.Title = &taskEditTitle
	}
	if cmd.Flags().Changed("project") {
		opts.Project = &taskEditProject
	}
	if cmd.Flags().Changed("estimate") {
		opts.Estimate = &taskEditEstimate
	}
	if cmd.Flags().Changed("due") {
		due, err := task.ParseDueDate(taskEditDue, a.now().Location())
		if err != nil {
			return err
		}
		opts.DueDate = due
		opts.ClearDueDate = opts.ClearDueDate || due == nil
	}
	if cmd.Flags().Changed("description") {
		description, err := resolveDescriptionFromStdin(taskEditDescription, os.Stdin)
		if err != nil {
			return err
		}
		opts.Description = &description
	}

	updated, err := a.tracker.UpdateTask(ctx, args[0], opts)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s: %s\n", updated.ID, updated.Title)
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return eachTask(cmd, args, func(ctx context.Context, a *app, id string) error {
		t, err := a.tracker.CompleteTask(ctx, id)
		if err != nil {
			return err
		}
		if err := a.clearFocus(t.ID); err != nil {
			return err
		}
		fmt.Printf("Completed task %s: %s\n", t.ID, t.Title)
		return nil
	})
}

func runTaskReopen(cmd *cobra.Command, args []string) error {
	return eachTask(cmd, args, func(ctx context.Context, a *app, id string) error {
		t, err := a.tracker.ReopenTask(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Reopened task %s: %s\n", t.ID, t.Title)
		return nil
	})
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	return eachTask(cmd, args, func(ctx context.Context, a *app, id string) error {
		t, err := a.tracker.DeleteTask(ctx, id)
		if err != nil {
			return err
		}
		if err := a.clearFocus(t.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s: %s\n", t.ID, t.Title)
		return nil
	})
}

// eachTask applies fn to every ID, continuing past failures. The returned
// error joins every failure.
func eachTask(cmd *cobra.Command, args []string, fn func(ctx context.Context, a *app, id string) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var errs []error
	for _, id := range args {
		if err := fn(ctx, a, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runTaskFocus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if taskFocusClear {
		if len(args) > 0 {
			return errors.New("--clear does not take a task ID")
		}
		if err := a.states.Update(func(st *state.State) error {
			st.ActiveTaskID = ""
			st.UpdatedAt = a.now()
			return nil
		}); err != nil {
			return err
		}
		fmt.Println("Cleared focus.")
		return nil
	}

	if len(args) == 0 {
		st, err := a.states.Load()
		if err != nil {
			return err
		}
		if st.ActiveTaskID == "" {
			fmt.Println("No focused task.")
			return nil
		}
		t, err := a.tracker.ResolveTask(ctx, st.ActiveTaskID)
		if err != nil {
			return err
		}
		fmt.Printf("Focused on %s: %s\n", t.ID, t.Title)
		return nil
	}

	t, err := a.tracker.ResolveTask(ctx, args[0])
	if err != nil {
		return err
	}
	if t.Completed {
		return fmt.Errorf("task %s is completed; reopen it first", t.ID)
	}
	if err := a.states.Update(func(st *state.State) error {
		st.ActiveTaskID = t.ID
		st.UpdatedAt = a.now()
		return nil
	}); err != nil {
		return err
	}
	fmt.Printf("Focused on %s: %s\n", t.ID, t.Title)
	return nil
}

// clearFocus unsets the focused task if it is id.
func (a *app) clearFocus(id string) error {
	return a.states.Update(func(st *state.State) error {
		if !strings.EqualFold(st.ActiveTaskID, id) {
			return nil
		}
		st.ActiveTaskID = ""
		st.UpdatedAt = a.now()
		return nil
	})
}

func (a *app) projectNames(ctx context.Context) (map[string]string, error) {
	projects, err := a.tracker.ListProjects(ctx, true)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

// taskPrefixLengths computes unique ID prefixes across every task, so a
// prefix shown in a filtered list still resolves unambiguously.
func (a *app) taskPrefixLengths(ctx context.Context) (map[string]int, error) {
	all, err := a.tracker.ListTasks(ctx, task.TaskFilter{All: true})
	if err != nil {
		return nil, err
	}
	taskIDs := make([]string, 0, len(all))
	for _, t := range all {
		taskIDs = append(taskIDs, t.ID)
	}
	return ui.PrefixLengths(taskIDs), nil
}
