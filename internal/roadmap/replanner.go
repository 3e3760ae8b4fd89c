package roadmap

import "time"

// Replan outcome codes.
const (
	ReasonNoActiveGoal      = "no_active_goal"
	ReasonNoActivePlan      = "no_active_plan"
	ReasonOnTrack           = "on_track"
	ReasonNoIncompleteTasks = "no_incomplete_tasks"
	ReasonNoChangeNeeded    = "no_change_needed"
	ReasonRescheduled       = "rescheduled"
)

// TaskDate identifies the current date of a persisted task.
type TaskDate struct {
	ID   uint
	Date time.Time
}

// DateChange is a task that must move to a new date.
type DateChange struct {
	TaskID uint
	Date   time.Time
}

// EffectiveEnd never lets a reschedule land in the past.
func EffectiveEnd(targetEnd, today time.Time) time.Time {
	today = Day(today)
	if targetEnd.IsZero() || Day(targetEnd).Before(today) {
		return today
	}
	return Day(targetEnd)
}

// SpreadDates interpolates n dates linearly over [start, end]. The first date
// is start and, for n >= 2, the last date is end.
func SpreadDates(n int, start, end time.Time) []time.Time {
	if n <= 0 {
		return nil
	}
	start = Day(start)
	span := max(DaysBetween(start, end)+1, 1)

	out := make([]time.Time, n)
	for i := range out {
		offset := 0
		if n > 1 && span > 1 {
			offset = i * (span - 1) / (n - 1)
		}
		out[i] = AddDays(start, offset)
	}
	return out
}

// Reschedule spreads the incomplete tasks, ordered by (date, id), over
// [today, EffectiveEnd(targetEnd, today)] and returns only the tasks whose
// date actually changes.
func Reschedule(incomplete []TaskDate, today, targetEnd time.Time) []DateChange {
	if len(incomplete) == 0 {
		return nil
	}
	dates := SpreadDates(len(incomplete), today, EffectiveEnd(targetEnd, today))

	changes := make([]DateChange, 0, len(incomplete))
	for i, task := range incomplete {
		if Day(task.Date).Equal(dates[i]) {
			continue
		}
		changes = append(changes, DateChange{TaskID: task.ID, Date: dates[i]})
	}
	return changes
}
