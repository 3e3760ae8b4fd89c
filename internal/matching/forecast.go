package matching

import (
	"sort"
	"time"

	"github.com/advait122/ROADmap/internal/roadmap"
	"github.com/advait122/ROADmap/internal/skills"
)

const (
	// DefaultHorizonDays is the forecast window used when none is given.
	DefaultHorizonDays = 7
	// ForecastLimit bounds the forecast output.
	ForecastLimit = 25
)

// SkillProgress summarises the scheduled work left for one goal skill.
type SkillProgress struct {
	Key             string
	Completed       bool
	TaskCount       int
	IncompleteDates []time.Time
}

// ProjectUnlocks estimates when each goal skill will be finished. Skills
// without tasks are unknown, and skills whose last incomplete task falls
// after today+horizon are left out.
func ProjectUnlocks(progress []SkillProgress, today time.Time, horizonDays int) map[string]time.Time {
	if horizonDays < 0 {
		horizonDays = DefaultHorizonDays
	}
	today = roadmap.Day(today)
	horizon := roadmap.AddDays(today, horizonDays)

	out := make(map[string]time.Time, len(progress))
	for _, skill := range progress {
		key := skills.Normalize(skill.Key)
		if key == "" {
			continue
		}
		if skill.Completed {
			out[key] = today
			continue
		}
		if skill.TaskCount == 0 {
			continue
		}
		if len(skill.IncompleteDates) == 0 {
			out[key] = today
			continue
		}

		latest := roadmap.Day(skill.IncompleteDates[0])
		for _, date := range skill.IncompleteDates[1:] {
			if d := roadmap.Day(date); d.After(latest) {
				latest = d
			}
		}
		if !latest.After(horizon) {
			out[key] = latest
		}
	}
	return out
}

// ForecastItem is an opportunity expected to become eligible within the horizon.
type ForecastItem struct {
	Match
	PredictedEligibleDate time.Time
	SkillsToUnlock        []string
}

// Forecast lists cached non-eligible matches whose missing skills are all
// projected, dated by the latest unlock among them. Skills already held but
// missing from unlocks count as today. Labels map skill keys to names.
func Forecast(cached []Match, currentKeys []string, unlocks map[string]time.Time, labels map[string]string, today time.Time, limit int) []ForecastItem {
	if limit <= 0 {
		limit = ForecastLimit
	}
	today = roadmap.Day(today)
	current := toSet(currentKeys)

	items := make([]ForecastItem, 0)
	for _, match := range cached {
		if match.Bucket == BucketEligibleNow || len(match.MissingSkills) == 0 {
			continue
		}

		predicted := time.Time{}
		projected := true
		for _, key := range match.MissingSkills {
			date, ok := unlocks[key]
			if !ok {
				if _, held := current[key]; !held {
					projected = false
					break
				}
				date = today
			}
			if date.After(predicted) {
				predicted = date
			}
		}
		if !projected {
			continue
		}

		toUnlock := make([]string, 0, len(match.MissingSkills))
		for _, key := range match.MissingSkills {
			if label, ok := labels[key]; ok && label != "" {
				toUnlock = append(toUnlock, label)
				continue
			}
			toUnlock = append(toUnlock, skills.Display(key))
		}

		items = append(items, ForecastItem{
			Match:                 match,
			PredictedEligibleDate: predicted,
			SkillsToUnlock:        toUnlock,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PredictedEligibleDate.Equal(items[j].PredictedEligibleDate) {
			return items[i].PredictedEligibleDate.Before(items[j].PredictedEligibleDate)
		}
		return items[i].Score > items[j].Score
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
