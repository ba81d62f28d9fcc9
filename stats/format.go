package stats

import "fmt"

// FormatMinutes formats a minute count as "45m", "2h" or "1h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}

// FormatHour formats an hour of the day as "12 AM", "9 AM", "12 PM" or "3 PM".
func FormatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour == 12:
		return "12 PM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

// EstimateLabel describes an estimate accuracy percentage in terms of what
// happened, without judging the estimate.
func EstimateLabel(accuracy int) string {
	switch {
	case accuracy == 100:
		return "on estimate"
	case accuracy < 100:
		return fmt.Sprintf("used %d%% of estimated pomodoros (fewer than estimated)", accuracy)
	default:
		return fmt.Sprintf("used %d%% of estimated pomodoros (more than estimated)", accuracy)
	}
}
