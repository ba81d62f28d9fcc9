// Package stats derives productivity statistics from the pomodoro event log.
//
// Compute is a pure function: it never mutates its inputs, and identical
// inputs always produce equal snapshots. Events whose completion time is
// missing or failed to parse contribute to no aggregate.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/amonks/pomo/task"
)

const (
	// NoProjectID identifies the bucket for events without a project.
	NoProjectID = "none"

	// NoProjectName is the display name of the NoProjectID bucket.
	NoProjectName = "No Project"

	// NoProjectColor is the neutral color of the NoProjectID bucket.
	NoProjectColor = "#9ca3af"

	dateLayout = "2006-01-02"
)

// Options configures Compute.
type Options struct {
	// ExcludeWeekendsFromStreak makes Friday adjacent to the following Monday.
	ExcludeWeekendsFromStreak bool

	// Now is the reference time for windows and streaks. Zero uses time.Now.
	Now time.Time

	// Location determines calendar days and hours. Nil uses time.Local.
	Location *time.Location
}

// Stats is a full statistics snapshot.
type Stats struct {
	TotalCompleted   int `json:"total_completed" yaml:"total_completed"`
	TotalInterrupted int `json:"total_interrupted" yaml:"total_interrupted"`
	TotalMinutes     int `json:"total_minutes" yaml:"total_minutes"`
	CompletionRate   int `json:"completion_rate" yaml:"completion_rate"`

	CurrentStreak int `json:"current_streak" yaml:"current_streak"`
	LongestStreak int `json:"longest_streak" yaml:"longest_streak"`

	AvgPomodorosPerDay    float64 `json:"avg_pomodoros_per_day" yaml:"avg_pomodoros_per_day"`
	AvgFocusMinutesPerDay int     `json:"avg_focus_minutes_per_day" yaml:"avg_focus_minutes_per_day"`

	Today     DailyStats   `json:"today" yaml:"today"`
	ThisWeek  []DailyStats `json:"this_week" yaml:"this_week"`
	ThisMonth []DailyStats `json:"this_month" yaml:"this_month"`

	ByProject []ProjectStats `json:"by_project" yaml:"by_project"`

	// EstimateAccuracy is actual pomodoros as a percentage of estimated
	// pomodoros over completed tasks.
	EstimateAccuracy int `json:"estimate_accuracy" yaml:"estimate_accuracy"`

	Insights Insights `json:"insights" yaml:"insights"`
}

// DailyStats aggregates one calendar day.
type DailyStats struct {
	Date        string `json:"date" yaml:"date"`
	Completed   int    `json:"completed" yaml:"completed"`
	Interrupted int    `json:"interrupted" yaml:"interrupted"`
	Minutes     int    `json:"minutes" yaml:"minutes"`
}

// ProjectStats aggregates completed sessions for one project.
type ProjectStats struct {
	ProjectID   string `json:"project_id" yaml:"project_id"`
	ProjectName string `json:"project_name" yaml:"project_name"`
	Color       string `json:"color" yaml:"color"`
	Pomodoros   int    `json:"pomodoros" yaml:"pomodoros"`
	Minutes     int    `json:"minutes" yaml:"minutes"`
}

// Insights describes when completed sessions happen.
type Insights struct {
	MostProductiveDay  *string `json:"most_productive_day" yaml:"most_productive_day"`
	MostProductiveHour *string `json:"most_productive_hour" yaml:"most_productive_hour"`
	PeakDayCount       int     `json:"peak_day_count" yaml:"peak_day_count"`
	PeakHourCount      int     `json:"peak_hour_count" yaml:"peak_hour_count"`

	// ByDayOfWeek is indexed by time.Weekday (0 is Sunday).
	ByDayOfWeek [7]int `json:"by_day_of_week" yaml:"by_day_of_week,flow"`

	// ByHourOfDay is indexed by local hour.
	ByHourOfDay [24]int `json:"by_hour_of_day" yaml:"by_hour_of_day,flow"`
}

type bucket struct {
	completed   int
	interrupted int
	minutes     int
}

// Compute derives a snapshot from events, tasks and projects.
func Compute(events []task.Event, tasks []task.Task, projects []task.Project, opts Options) Stats {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := civilDay(now, loc)

	var s Stats
	byDay := make(map[time.Time]*bucket)
	var considered int
	for _, e := range events {
		if e.CompletedAt.IsZero() || !e.IsWork() {
			continue
		}
		considered++

		day := civilDay(e.CompletedAt, loc)
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		if e.Interrupted {
			s.TotalInterrupted++
			b.interrupted++
			continue
		}
		s.TotalCompleted++
		s.TotalMinutes += e.DurationMinutes
		b.completed++
		b.minutes += e.DurationMinutes

		local := e.CompletedAt.In(loc)
		s.Insights.ByDayOfWeek[local.Weekday()]++
		s.Insights.ByHourOfDay[local.Hour()]++
	}

	s.CompletionRate = 100
	if considered > 0 {
		s.CompletionRate = roundInt(float64(s.TotalCompleted) / float64(considered) * 100)
	}

	var active []time.Time
	for day, b := range byDay {
		if b.completed > 0 {
			active = append(active, day)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Before(active[j]) })

	adj := adjacency{excludeWeekends: opts.ExcludeWeekendsFromStreak}
	s.CurrentStreak = adj.currentStreak(active, today)
	s.LongestStreak = adj.longestStreak(active)

	activeDays := max(1, len(active))
	s.AvgPomodorosPerDay = math.Round(float64(s.TotalCompleted)/float64(activeDays)*10) / 10
	s.AvgFocusMinutesPerDay = roundInt(float64(s.TotalMinutes) / float64(activeDays))

	s.Today = dailyStats(today, byDay)
	s.ThisWeek = make([]DailyStats, 0, 7)
	for i := 6; i >= 0; i-- {
		s.ThisWeek = append(s.ThisWeek, dailyStats(today.AddDate(0, 0, -i), byDay))
	}
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == today.Month(); day = day.AddDate(0, 0, 1) {
		s.ThisMonth = append(s.ThisMonth, dailyStats(day, byDay))
	}

	s.ByProject = byProject(events, tasks, projects)
	s.EstimateAccuracy = estimateAccuracy(tasks)
	s.Insights = insights(s.Insights.ByDayOfWeek, s.Insights.ByHourOfDay)
	return s
}

func dailyStats(day time.Time, byDay map[time.Time]*bucket) DailyStats {
	stats := DailyStats{Date: day.Format(dateLayout)}
	if b := byDay[day]; b != nil {
		stats.Completed = b.completed
		stats.Interrupted = b.interrupted
		stats.Minutes = b.minutes
	}
	return stats
}

func byProject(events []task.Event, tasks []task.Task, projects []task.Project) []ProjectStats {
	taskProject := make(map[string]string, len(tasks))
	for _, t := range tasks {
		taskProject[t.ID] = t.ProjectID
	}
	projectByID := make(map[string]task.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}

	groups := make(map[string]*ProjectStats)
	for _, e := range events {
		if e.Interrupted || e.CompletedAt.IsZero() || !e.IsWork() {
			continue
		}
		id := NoProjectID
		group := ProjectStats{ProjectID: NoProjectID, ProjectName: NoProjectName, Color: NoProjectColor}
		if project, ok := projectByID[taskProject[e.TaskID]]; ok && e.TaskID != "" {
			id = project.ID
			group = ProjectStats{ProjectID: project.ID, ProjectName: project.Name, Color: project.Color}
			if group.Color == "" {
				group.Color = NoProjectColor
			}
		}
		g := groups[id]
		if g == nil {
			g = &group
			groups[id] = g
		}
		g.Pomodoros++
		g.Minutes += e.DurationMinutes
	}

	result := make([]ProjectStats, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Pomodoros != b.Pomodoros {
			return a.Pomodoros > b.Pomodoros
		}
		if a.Minutes != b.Minutes {
			return a.Minutes > b.Minutes
		}
		if a.ProjectName != b.ProjectName {
			return a.ProjectName < b.ProjectName
		}
		return a.ProjectID < b.ProjectID
	})
	return result
}

func estimateAccuracy(tasks []task.Task) int {
	var estimated, actual int
	for _, t := range tasks {
		if !t.Completed || t.EstimatedPomodoros <= 0 {
			continue
		}
		estimated += t.EstimatedPomodoros
		actual += t.ActualPomodoros
	}
	if estimated == 0 {
		return 100
	}
	return roundInt(float64(actual) / float64(estimated) * 100)
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func insights(byDay [7]int, byHour [24]int) Insights {
	in := Insights{ByDayOfWeek: byDay, ByHourOfDay: byHour}

	dayIndex, dayCount := argmax(byDay[:])
	in.PeakDayCount = dayCount
	if dayCount > 0 {
		name := dayNames[dayIndex]
		in.MostProductiveDay = &name
	}

	hourIndex, hourCount := argmax(byHour[:])
	in.PeakHourCount = hourCount
	if hourCount > 0 {
		label := FormatHour(hourIndex)
		in.MostProductiveHour = &label
	}
	return in
}

// argmax returns the first index holding the maximum value.
func argmax(values []int) (int, int) {
	index, best := 0, 0
	for i, v := range values {
		if v > best {
			index, best = i, v
		}
	}
	return index, best
}

// civilDay returns the calendar date of t in loc as midnight UTC, so that
// day arithmetic is free of DST shifts.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
