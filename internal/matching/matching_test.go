package matching_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/matching"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func TestClassifyAlmostEligibleWithTwoMissing(t *testing.T) {
	profile := matching.Profile{CurrentKeys: []string{"python"}, NextKeys: []string{"sql"}, NextNames: []string{"SQL"}}
	candidates := []matching.Candidate{
		{OpportunityID: 1, Title: "Data Intern", Company: "Acme", RequiredSkills: []string{"Python", "SQL", "Git"}},
	}

	matches := matching.Classify(profile, candidates, 0)
	require.Len(t, matches, 1)
	match := matches[0]
	require.Equal(t, matching.BucketAlmostEligible, match.Bucket)
	require.Equal(t, []string{"sql", "git"}, match.MissingSkills)
	require.InDelta(t, 1.0/3.0, match.Score, 1e-9)
	require.Equal(t, 3, match.RequiredCount)
	require.Equal(t, 1, match.MatchedCount)
	require.Equal(t, []string{"SQL"}, match.NextSkills)
	require.False(t, match.EligibleNow)
}

func TestClassifyBucketRules(t *testing.T) {
	profile := matching.Profile{
		CurrentKeys:   []string{"python", "sql"},
		NextKeys:      []string{"docker"},
		TargetCompany: " ACME ",
	}
	candidates := []matching.Candidate{
		{OpportunityID: 1, Company: "Other", RequiredSkills: []string{"java", "c++", "go", "rust"}},
		{OpportunityID: 2, Company: "Other", RequiredSkills: []string{"java", "docker", "go", "rust"}},
		{OpportunityID: 3, Company: "acme", RequiredSkills: []string{"Python", "python", "SQL"}},
		{OpportunityID: 4, Company: "Other", RequiredSkills: []string{"", "!!"}},
		{OpportunityID: 5, Company: "Acme", RequiredSkills: []string{"python", "java"}},
	}

	matches := matching.Classify(profile, candidates, 0)
	require.Len(t, matches, 4)

	byID := map[uint]matching.Match{}
	for _, match := range matches {
		byID[match.OpportunityID] = match
	}

	require.Equal(t, matching.BucketComingSoon, byID[1].Bucket)
	require.Equal(t, matching.BucketAlmostEligible, byID[2].Bucket)
	require.Equal(t, matching.BucketEligibleNow, byID[3].Bucket)
	require.True(t, byID[3].EligibleNow)
	require.Equal(t, 2, byID[3].RequiredCount)
	require.Equal(t, 1.0, byID[3].Score)
	require.InDelta(t, 0.65, byID[5].Score, 1e-9)

	for _, match := range matches {
		require.Equal(t, len(match.MissingSkills) == 0, match.Bucket == matching.BucketEligibleNow)
	}

	require.Equal(t, []uint{3, 5, 2, 1}, ids(matches))
}

func TestClassifyIsDeterministicAndTruncates(t *testing.T) {
	profile := matching.Profile{CurrentKeys: []string{"python"}}
	candidates := make([]matching.Candidate, 0, 200)
	for i := 0; i < 200; i++ {
		required := []string{"python"}
		if i%3 == 0 {
			required = append(required, "sql")
		}
		if i%5 == 0 {
			required = append(required, "git", "java", "linux")
		}
		candidates = append(candidates, matching.Candidate{
			OpportunityID:  uint(i + 1),
			Title:          fmt.Sprintf("Role %d", i),
			RequiredSkills: required,
		})
	}

	first := matching.Classify(profile, candidates, 0)
	second := matching.Classify(profile, candidates, 0)
	require.Len(t, first, matching.DefaultLimit)
	require.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if matching.BucketRank(prev.Bucket) == matching.BucketRank(cur.Bucket) && prev.Score == cur.Score {
			require.Less(t, prev.OpportunityID, cur.OpportunityID)
		}
	}
}

func TestGroupByBucketAlwaysHasAllBuckets(t *testing.T) {
	grouped := matching.GroupByBucket(nil)
	for _, bucket := range matching.Buckets() {
		require.NotNil(t, grouped[bucket])
		require.Empty(t, grouped[bucket])
	}
}

func TestDetectTransitionsFiresOncePerTransition(t *testing.T) {
	today := day(t, "2024-06-01")
	deadline := day(t, "2024-06-05")
	candidates := []matching.Candidate{
		{OpportunityID: 9, Title: "SDE Intern", Company: "Acme", Deadline: &deadline, RequiredSkills: []string{"python", "sql", "git", "java"}},
	}

	runs := [][]string{
		{"python"},
		{"python", "sql", "git", "java"},
		{"python", "sql", "git", "java"},
	}

	var previous map[uint]matching.PreviousState
	counts := map[string]int{}
	for _, current := range runs {
		matches := matching.Classify(matching.Profile{CurrentKeys: current}, candidates, 0)
		for _, event := range matching.DetectTransitions(matches, previous, today) {
			counts[event.Type]++
		}
		previous = matching.Snapshot(matches)
	}

	require.Equal(t, 1, counts[matching.EventNewlyEligible])
	require.Equal(t, 1, counts[matching.EventDeadlineAlert])
}

func TestDetectTransitionsMessagesAndWindow(t *testing.T) {
	today := day(t, "2024-06-01")
	soon := day(t, "2024-06-04")
	late := day(t, "2024-06-20")
	past := day(t, "2024-05-30")

	matches := []matching.Match{
		{OpportunityID: 1, Title: "Backend Intern", Company: "Acme", Bucket: matching.BucketAlmostEligible, Deadline: &soon},
		{OpportunityID: 2, Title: "Analyst", Company: "Beta", Bucket: matching.BucketEligibleNow, EligibleNow: true, Deadline: &late},
		{OpportunityID: 3, Title: "Researcher", Company: "Gamma", Bucket: matching.BucketComingSoon, Deadline: &soon},
		{OpportunityID: 4, Title: "Hackathon", Company: "Delta", Bucket: matching.BucketAlmostEligible, Deadline: &past},
		{OpportunityID: 5, Title: "Designer", Company: "Eta", Bucket: matching.BucketEligibleNow, EligibleNow: true},
	}
	previous := map[uint]matching.PreviousState{
		5: {Bucket: matching.BucketEligibleNow, EligibleNow: true},
	}

	events := matching.DetectTransitions(matches, previous, today)
	require.Equal(t, []matching.Event{
		{
			Type:          matching.EventDeadlineAlert,
			Title:         "Opportunity Deadline Soon",
			Body:          "Backend Intern (Acme) closes in 3 day(s). Status: almost eligible.",
			OpportunityID: 1,
		},
		{
			Type:          matching.EventNewlyEligible,
			Title:         "Newly Eligible Opportunity",
			Body:          "You are now eligible for Analyst at Beta.",
			OpportunityID: 2,
		},
	}, events)
}

func TestProjectUnlocksRespectsHorizon(t *testing.T) {
	today := day(t, "2024-06-01")
	progress := []matching.SkillProgress{
		{Key: "python", Completed: true},
		{Key: "sql", TaskCount: 3, IncompleteDates: []time.Time{day(t, "2024-06-03"), day(t, "2024-06-06")}},
		{Key: "git", TaskCount: 2, IncompleteDates: []time.Time{day(t, "2024-06-13")}},
		{Key: "java", TaskCount: 2},
		{Key: "linux"},
	}

	unlocks := matching.ProjectUnlocks(progress, today, 7)
	require.Equal(t, map[string]time.Time{
		"python": today,
		"sql":    day(t, "2024-06-06"),
		"java":   today,
	}, unlocks)
}

func TestForecastExcludesSkillsBeyondHorizon(t *testing.T) {
	today := day(t, "2024-06-01")
	unlocks := map[string]time.Time{
		"sql":  day(t, "2024-06-06"),
		"java": day(t, "2024-06-02"),
	}
	cached := []matching.Match{
		{OpportunityID: 1, Bucket: matching.BucketEligibleNow, EligibleNow: true},
		{OpportunityID: 2, Bucket: matching.BucketAlmostEligible, Score: 0.5, MissingSkills: []string{"git"}},
		{OpportunityID: 3, Bucket: matching.BucketAlmostEligible, Score: 0.5, MissingSkills: []string{"sql", "java"}},
		{OpportunityID: 4, Bucket: matching.BucketAlmostEligible, Score: 0.4, MissingSkills: []string{"java"}},
		{OpportunityID: 5, Bucket: matching.BucketComingSoon, Score: 0.9, MissingSkills: []string{"java", "c++"}},
		{OpportunityID: 6, Bucket: matching.BucketAlmostEligible, Score: 0.7, MissingSkills: []string{"java"}},
	}
	labels := map[string]string{"sql": "Structured Query Language"}

	items := matching.Forecast(cached, []string{"c++"}, unlocks, labels, today, 0)
	require.Len(t, items, 4)
	require.Equal(t, []uint{5, 6, 4, 3}, []uint{
		items[0].OpportunityID, items[1].OpportunityID, items[2].OpportunityID, items[3].OpportunityID,
	})
	require.Equal(t, day(t, "2024-06-02"), items[0].PredictedEligibleDate)
	require.Equal(t, []string{"Java", "C++"}, items[0].SkillsToUnlock)
	require.Equal(t, day(t, "2024-06-06"), items[3].PredictedEligibleDate)
	require.Equal(t, []string{"Structured Query Language", "Java"}, items[3].SkillsToUnlock)
}

func ids(matches []matching.Match) []uint {
	out := make([]uint, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.OpportunityID)
	}
	return out
}
