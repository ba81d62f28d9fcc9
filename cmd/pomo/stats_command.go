package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/ui"
	"github.com/amonks/pomo/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize focus sessions",
	Long: `Summarize focus sessions: totals, streaks, daily history,
time per project and when you tend to work.

Streaks count consecutive days with at least one finished pomodoro.
With --exclude-weekends (or stats.exclude-weekends-from-streak in the
config file), Friday and the following Monday count as consecutive.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var (
	statsExcludeWeekends bool
	statsJSON            bool
	statsYAML            bool
	statsWeek            bool
	statsMonth           bool
)

const (
	statsBarWidth   = 30
	statsLineWidth  = 72
	statsLabelWidth = 15
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsExcludeWeekends, "exclude-weekends", false, "Let streaks skip Saturdays and Sundays")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsYAML, "yaml", false, "Output as YAML")
	statsCmd.Flags().BoolVar(&statsWeek, "week", false, "Chart the last seven days (default)")
	statsCmd.Flags().BoolVar(&statsMonth, "month", false, "Chart the current month")
	statsCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	statsCmd.MarkFlagsMutuallyExclusive("week", "month")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	events, tasks, projects, err := a.tracker.Snapshot(ctx)
	if err != nil {
		return err
	}

	excludeWeekends := a.cfg.Stats.ExcludeWeekendsFromStreak
	if cmd.Flags().Changed("exclude-weekends") {
		excludeWeekends = statsExcludeWeekends
	}
	now := a.now()
	snapshot := stats.Compute(events, tasks, projects, stats.Options{
		ExcludeWeekendsFromStreak: excludeWeekends,
		Now:                       now,
		Location:                  now.Location(),
	})

	switch {
	case statsJSON:
		return encodeJSONToStdout(snapshot)
	case statsYAML:
		return encodeYAMLToStdout(snapshot)
	}

	days := snapshot.ThisWeek
	title := "Last 7 days"
	if statsMonth {
		days = snapshot.ThisMonth
		title = now.Format("January 2006")
	}
	fmt.Fprint(os.Stdout, formatStats(snapshot, a.cfg.Stats.DailyGoal, title, days))
	return nil
}

func formatStats(s stats.Stats, dailyGoal int, chartTitle string, days []stats.DailyStats) string {
	var b strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&b, "%-*s%s\n", statsLabelWidth, label, value)
	}

	today := fmt.Sprintf("%d pomodoros, %s", s.Today.Completed, stats.FormatMinutes(s.Today.Minutes))
	if dailyGoal > 0 {
		today = fmt.Sprintf("%d/%d pomodoros, %s", s.Today.Completed, dailyGoal, stats.FormatMinutes(s.Today.Minutes))
	}
	row("Today", today)
	row("Streak", fmt.Sprintf("%s (longest %s)", pluralDays(s.CurrentStreak), pluralDays(s.LongestStreak)))
	row("Total", fmt.Sprintf("%d completed, %d interrupted (%d%% completed)", s.TotalCompleted, s.TotalInterrupted, s.CompletionRate))
	row("Focus time", stats.FormatMinutes(s.TotalMinutes))
	row("Daily average", fmt.Sprintf("%.1f pomodoros, %s", s.AvgPomodorosPerDay, stats.FormatMinutes(s.AvgFocusMinutesPerDay)))
	row("Estimates", stats.EstimateLabel(s.EstimateAccuracy))

	b.WriteString("\n")
	b.WriteString(ui.Heading.Render(chartTitle))
	b.WriteString("\n")
	b.WriteString(formatDailyChart(days))

	if len(s.ByProject) > 0 {
		b.WriteString("\n")
		b.WriteString(ui.Heading.Render("By project"))
		b.WriteString("\n")
		b.WriteString(formatProjectChart(s.ByProject))
	}

	if summary := insightSummary(s.Insights); summary != "" {
		b.WriteString("\n")
		b.WriteString(ui.Heading.Render("Insights"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(summary, statsLineWidth))
		b.WriteString("\n")
	}

	return b.String()
}

func formatDailyChart(days []stats.DailyStats) string {
	maxCompleted := 0
	for _, d := range days {
		maxCompleted = max(maxCompleted, d.Completed)
	}

	var b strings.Builder
	for _, d := range days {
		label := d.Date
		if day, err := time.Parse("2006-01-02", d.Date); err == nil {
			label = day.Format("Mon Jan 2")
		}
		fmt.Fprintf(&b, "  %-10s %2d %s\n", label, d.Completed, ui.Bar(d.Completed, maxCompleted, statsBarWidth, ""))
	}
	return b.String()
}

func formatProjectChart(projects []stats.ProjectStats) string {
	maxPomodoros := 0
	nameWidth := 0
	for _, p := range projects {
		maxPomodoros = max(maxPomodoros, p.Pomodoros)
		nameWidth = max(nameWidth, len([]rune(p.ProjectName)))
	}

	var b strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&b, "  %s %-*s %3d  %-7s %s\n",
			ui.Swatch(p.Color), nameWidth, p.ProjectName, p.Pomodoros, stats.FormatMinutes(p.Minutes),
			ui.Bar(p.Pomodoros, maxPomodoros, statsBarWidth, p.Color))
	}
	return b.String()
}

func insightSummary(in stats.Insights) string {
	var parts []string
	if in.MostProductiveDay != nil {
		parts = append(parts, fmt.Sprintf("Your most productive day is %s, with %d pomodoros finished.", *in.MostProductiveDay, in.PeakDayCount))
	}
	if in.MostProductiveHour != nil {
		parts = append(parts, fmt.Sprintf("You finish the most pomodoros in the %s hour (%d so far).", *in.MostProductiveHour, in.PeakHourCount))
	}
	return strings.Join(parts, " ")
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
