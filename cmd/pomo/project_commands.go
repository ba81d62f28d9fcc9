package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/listflags"
	"github.com/amonks/pomo/internal/ui"
	"github.com/amonks/pomo/task"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "p"},
	Short:   "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectAddColor string

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var (
	projectListAll  bool
	projectListJSON bool
)

var projectDoneCmd = &cobra.Command{
	Use:   "done <name-or-id>",
	Short: "Mark a project and its open tasks completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDone,
}

var projectRmCmd = &cobra.Command{
	Use:     "rm <name-or-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a project, keeping its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectRm,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectDoneCmd, projectRmCmd)

	projectAddCmd.Flags().StringVarP(&projectAddColor, "color", "c", "", "Hex color like #6366f1")

	listflags.AddAllFlag(projectListCmd, &projectListAll)
	listflags.AddJSONFlag(projectListCmd, &projectListJSON)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.tracker.CreateProject(ctx, args[0], projectAddColor)
	if err != nil {
		return err
	}
	fmt.Printf("Created project %s: %s\n", project.ID, project.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.tracker.ListProjects(ctx, projectListAll)
	if err != nil {
		return err
	}

	if projectListJSON {
		if projects == nil {
			projects = []task.Project{}
		}
		return encodeJSONToStdout(projects)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	openCounts, err := a.openTaskCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Print(formatProjectTable(projects, openCounts, ui.HighlightID, a.now()))
	return nil
}

func formatProjectTable(projects []task.Project, openCounts map[string]int, highlight func(string, int) string, now time.Time) string {
	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}
	prefixLengths := ui.PrefixLengths(projectIDs)

	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "OPEN", "CREATED", "NAME"}, len(projects))
	for _, p := range projects {
		status := "active"
		if p.Completed {
			status = "done"
		}
		builder.AddRow(
			highlight(p.ID, ui.PrefixLength(prefixLengths, p.ID)),
			status,
			fmt.Sprintf("%d", openCounts[p.ID]),
			ui.FormatTimeAgo(p.CreatedAt, now),
			ui.Swatch(p.Color)+" "+ui.TruncateTableCell(p.Name),
		)
	}
	return builder.String()
}

func (a *app) openTaskCounts(ctx context.Context) (map[string]int, error) {
	tasks, err := a.tracker.ListTasks(ctx, task.TaskFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.ProjectID != "" {
			counts[t.ProjectID]++
		}
	}
	return counts, nil
}

func runProjectDone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, completed, err := a.tracker.CompleteProject(ctx, args[0])
	if err != nil {
		return err
	}
	for _, t := range completed {
		if err := a.clearFocus(t.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Completed project %s: %s (%d open tasks completed)\n", project.ID, project.Name, len(completed))
	return nil
}

func runProjectRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.tracker.DeleteProject(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Deleted project %s: %s\n", project.ID, project.Name)
	return nil
}
