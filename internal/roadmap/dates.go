package roadmap

import "time"

const day = 24 * time.Hour

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / day)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// PlanEnd returns the end date of a plan lasting the given number of months.
// A month is counted as 30 days.
func PlanEnd(start time.Time, months int) time.Time {
	return AddDays(start, months*30)
}
