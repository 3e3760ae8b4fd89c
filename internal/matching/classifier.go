package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/advait122/ROADmap/internal/skills"
)

// Eligibility buckets, in ranking order.
const (
	BucketEligibleNow    = "eligible_now"
	BucketAlmostEligible = "almost_eligible"
	BucketComingSoon     = "coming_soon"
)

const (
	// CompanyBonus is added to the score of opportunities at the goal's target company.
	CompanyBonus = 0.15
	// DefaultLimit bounds the ranked list persisted per goal.
	DefaultLimit = 120
	// NextSkillCount is how many pending goal skills count as "next".
	NextSkillCount = 2
	// almostEligibleMissing is the largest missing count still classed as almost eligible.
	almostEligibleMissing = 2
)

var bucketRank = map[string]int{
	BucketEligibleNow:    0,
	BucketAlmostEligible: 1,
	BucketComingSoon:     2,
}

// Buckets lists every bucket in ranking order.
func Buckets() []string {
	return []string{BucketEligibleNow, BucketAlmostEligible, BucketComingSoon}
}

// BucketRank orders buckets; unknown values sort last.
func BucketRank(bucket string) int {
	if rank, ok := bucketRank[bucket]; ok {
		return rank
	}
	return len(bucketRank)
}

// Profile is the skill state a student is classified against.
type Profile struct {
	CurrentKeys   []string
	NextKeys      []string
	NextNames     []string
	TargetCompany string
}

// Candidate is an opportunity offered to the classifier.
type Candidate struct {
	OpportunityID  uint
	Title          string
	Company        string
	Type           string
	URL            string
	Deadline       *time.Time
	RequiredSkills []string
}

// Match is the classification of one opportunity for a goal.
type Match struct {
	OpportunityID uint
	Title         string
	Company       string
	Type          string
	URL           string
	Deadline      *time.Time
	Bucket        string
	Score         float64
	RequiredCount int
	MatchedCount  int
	MissingSkills []string
	NextSkills    []string
	EligibleNow   bool
}

// Classify buckets and scores every candidate with at least one required
// skill, then ranks by (bucket, score desc) keeping catalog order on ties and
// truncates to limit. A non-positive limit uses DefaultLimit.
func Classify(profile Profile, candidates []Candidate, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	current := toSet(profile.CurrentKeys)
	next := toSet(profile.NextKeys)
	company := strings.ToLower(strings.TrimSpace(profile.TargetCompany))
	nextNames := append([]string{}, profile.NextNames...)

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		required := skills.Keys(candidate.RequiredSkills)
		if len(required) == 0 {
			continue
		}

		missing := make([]string, 0, len(required))
		for _, key := range required {
			if _, ok := current[key]; !ok {
				missing = append(missing, key)
			}
		}

		matched := len(required) - len(missing)
		score := float64(matched) / float64(len(required))
		if company != "" && strings.ToLower(candidate.Company) == company {
			score += CompanyBonus
		}
		if score > 1 {
			score = 1
		}

		bucket := classify(missing, next)
		matches = append(matches, Match{
			OpportunityID: candidate.OpportunityID,
			Title:         candidate.Title,
			Company:       candidate.Company,
			Type:          candidate.Type,
			URL:           candidate.URL,
			Deadline:      candidate.Deadline,
			Bucket:        bucket,
			Score:         score,
			RequiredCount: len(required),
			MatchedCount:  matched,
			MissingSkills: missing,
			NextSkills:    nextNames,
			EligibleNow:   bucket == BucketEligibleNow,
		})
	}

	Rank(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func classify(missing []string, next map[string]struct{}) string {
	if len(missing) == 0 {
		return BucketEligibleNow
	}
	if len(missing) <= almostEligibleMissing {
		return BucketAlmostEligible
	}
	for _, key := range missing {
		if _, ok := next[key]; ok {
			return BucketAlmostEligible
		}
	}
	return BucketComingSoon
}

// Rank sorts matches in place by bucket rank then score descending.
func Rank(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := BucketRank(matches[i].Bucket), BucketRank(matches[j].Bucket)
		if ri != rj {
			return ri < rj
		}
		return matches[i].Score > matches[j].Score
	})
}

// GroupByBucket splits a ranked list into buckets, preserving order.
func GroupByBucket(matches []Match) map[string][]Match {
	out := make(map[string][]Match, len(bucketRank))
	for _, bucket := range Buckets() {
		out[bucket] = []Match{}
	}
	for _, match := range matches {
		out[match.Bucket] = append(out[match.Bucket], match)
	}
	return out
}

func toSet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if normalized := skills.Normalize(key); normalized != "" {
			out[normalized] = struct{}{}
		}
	}
	return out
}
