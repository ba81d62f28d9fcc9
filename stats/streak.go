package stats

import "time"

// adjacency decides which calendar day is expected before or after another.
type adjacency struct {
	excludeWeekends bool
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// counts reports whether day can be a streak day at all.
func (a adjacency) counts(day time.Time) bool {
	return !a.excludeWeekends || !isWeekend(day)
}

func (a adjacency) prev(day time.Time) time.Time {
	return a.step(day, -1)
}

func (a adjacency) next(day time.Time) time.Time {
	return a.step(day, 1)
}

func (a adjacency) step(day time.Time, dir int) time.Time {
	day = day.AddDate(0, 0, dir)
	for !a.counts(day) {
		day = day.AddDate(0, 0, dir)
	}
	return day
}

// anchor returns the latest day a streak may end on: today, or with
// weekends excluded, the last weekday on or before today.
func (a adjacency) anchor(today time.Time) time.Time {
	if a.counts(today) {
		return today
	}
	return a.prev(today)
}

func (a adjacency) filter(days []time.Time) []time.Time {
	kept := make([]time.Time, 0, len(days))
	for _, day := range days {
		if a.counts(day) {
			kept = append(kept, day)
		}
	}
	return kept
}

// currentStreak counts back from the most recent active day, which must be
// the anchor day or the expected day before it. days must be ascending.
func (a adjacency) currentStreak(days []time.Time, today time.Time) int {
	days = a.filter(days)
	if len(days) == 0 {
		return 0
	}

	active := make(map[time.Time]bool, len(days))
	for _, day := range days {
		active[day] = true
	}

	latest := days[len(days)-1]
	anchor := a.anchor(today)
	if !latest.Equal(anchor) && !latest.Equal(a.prev(anchor)) {
		return 0
	}

	streak := 0
	for day := latest; active[day]; day = a.prev(day) {
		streak++
	}
	return streak
}

// longestStreak scans ascending days for the longest adjacent run.
func (a adjacency) longestStreak(days []time.Time) int {
	days = a.filter(days)
	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && day.Equal(a.next(days[i-1])) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}
