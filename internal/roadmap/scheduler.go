package roadmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/advait122/ROADmap/internal/skills"
)

// SkillEffort is one prioritized skill fed to the scheduler.
type SkillEffort struct {
	GoalSkillID uint
	Name        string
	EffortHours float64
}

// TaskSpec describes a task before it is persisted.
type TaskSpec struct {
	GoalSkillID   *uint
	TaskDate      time.Time
	Title         string
	Description   string
	TargetMinutes int
}

// DailyTarget returns the minutes scheduled per day for a workload of
// totalMinutes spread over totalDays with the given weekly budget.
func DailyTarget(totalMinutes, totalDays, weeklyHours int) int {
	if totalDays < 1 {
		totalDays = 1
	}
	average := (totalMinutes + totalDays - 1) / totalDays
	capacity := weeklyHours * 60 / 7
	return max(average, capacity, 1)
}

// BuildSchedule lays skills back to back over [start, end], one chunk per day.
// The daily target comes from the rounded total of all effort hours, while
// each skill allocates its own rounded minutes, so the two can differ by a
// minute per skill. Minutes that do not fit before end are added to the last
// task created, so skills reached after the window is exhausted get no tasks
// of their own.
func BuildSchedule(items []SkillEffort, start, end time.Time, weeklyHours int) []TaskSpec {
	start = Day(start)
	totalDays := max(DaysBetween(start, end)+1, 1)

	minutes := make([]int, len(items))
	totalHours := 0.0
	for i, item := range items {
		minutes[i] = skills.Minutes(item.EffortHours)
		if item.EffortHours > 0 {
			totalHours += item.EffortHours
		}
	}
	totalMinutes := skills.Minutes(totalHours)
	if totalMinutes == 0 {
		return nil
	}

	target := DailyTarget(totalMinutes, totalDays, weeklyHours)

	tasks := make([]TaskSpec, 0, totalDays)
	cursor := 0
	for i, item := range items {
		remaining := minutes[i]
		if remaining <= 0 {
			continue
		}

		for remaining > 0 && cursor < totalDays {
			chunk := min(target, remaining)
			tasks = append(tasks, newLearnTask(item, AddDays(start, cursor), chunk))
			remaining -= chunk
			cursor++
		}

		if remaining > 0 && len(tasks) > 0 {
			tasks[len(tasks)-1].TargetMinutes += remaining
		}
	}

	return tasks
}

func newLearnTask(item SkillEffort, date time.Time, minutes int) TaskSpec {
	name := strings.TrimSpace(item.Name)
	spec := TaskSpec{
		TaskDate:      date,
		Title:         fmt.Sprintf("Learn %s", name),
		Description:   fmt.Sprintf("Roadmap practice for %s. Watch the suggested playlist and complete notes/problems.", name),
		TargetMinutes: minutes,
	}
	if item.GoalSkillID != 0 {
		id := item.GoalSkillID
		spec.GoalSkillID = &id
	}
	return spec
}

// RevisionMinutes is the length of a revision task created after a failed assessment.
const RevisionMinutes = 45

// MaxRevisionTopics caps the revision tasks created per failed attempt.
const MaxRevisionTopics = 3

// RevisionTasks builds revision work for the weakest topics of a failed
// assessment. Titles already present among incomplete tasks are skipped.
func RevisionTasks(goalSkillID uint, skillName string, weakTopics []string, existingTitles map[string]struct{}, today time.Time) []TaskSpec {
	topics := make([]string, 0, MaxRevisionTopics)
	for _, topic := range weakTopics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
		if len(topics) == MaxRevisionTopics {
			break
		}
	}
	if len(topics) == 0 {
		topics = append(topics, "Core Concepts")
	}

	name := strings.TrimSpace(skillName)
	out := make([]TaskSpec, 0, len(topics))
	for idx, topic := range topics {
		title := fmt.Sprintf("Revision: %s - %s", name, topic)
		if _, exists := existingTitles[title]; exists {
			continue
		}
		id := goalSkillID
		out = append(out, TaskSpec{
			GoalSkillID:   &id,
			TaskDate:      AddDays(today, idx+1),
			Title:         title,
			Description:   fmt.Sprintf("Revisit %s in %s and retry the practice problems before the next assessment.", topic, name),
			TargetMinutes: RevisionMinutes,
		})
	}
	return out
}
