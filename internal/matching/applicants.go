package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Applicant ranking weights. Test scores dominate; regularity rewards students
// who keep to their plan without repeated replans.
const (
	TestScoreWeight  = 0.72
	RegularityWeight = 0.28

	regularityBase       = 95.0
	regularityReplanCost = 9.0
	regularityMin        = 40.0
	regularityMax        = 99.0
)

// DefaultJobTitle is used when a job description has no usable text.
const DefaultJobTitle = "Company Role Opening"

const (
	jobTitleMax   = 64
	jobTitleKeep  = 61
	jobTitleTrail = "..."
)

// Applicant is the evidence gathered for one student holding every required skill.
type Applicant struct {
	StudentID uint
	Name      string
	// SkillScores holds the latest graded test score per required skill key.
	SkillScores map[string]float64
	ReplanCount int
}

// RankedApplicant is an applicant with its computed scores.
type RankedApplicant struct {
	StudentID   uint
	Name        string
	TestScore   float64
	Regularity  float64
	FinalScore  float64
	TestedCount int
}

// RankApplicants scores applicants against the required skill keys and orders
// them by final score, then test score, then student id. A required skill
// without a graded test counts as zero.
func RankApplicants(required []string, applicants []Applicant) []RankedApplicant {
	ranked := make([]RankedApplicant, 0, len(applicants))
	for _, applicant := range applicants {
		total := 0.0
		tested := 0
		for _, key := range required {
			if score, ok := applicant.SkillScores[key]; ok {
				total += score
				tested++
			}
		}
		testScore := 0.0
		if len(required) > 0 {
			testScore = total / float64(len(required))
		}
		regularity := Regularity(applicant.ReplanCount)

		ranked = append(ranked, RankedApplicant{
			StudentID:   applicant.StudentID,
			Name:        applicant.Name,
			TestScore:   round2(testScore),
			Regularity:  regularity,
			FinalScore:  round2(TestScoreWeight*testScore + RegularityWeight*regularity),
			TestedCount: tested,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		if ranked[i].TestScore != ranked[j].TestScore {
			return ranked[i].TestScore > ranked[j].TestScore
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})
	return ranked
}

// Regularity converts a replan count into a 40..99 consistency score.
func Regularity(replans int) float64 {
	if replans < 0 {
		replans = 0
	}
	value := regularityBase - regularityReplanCost*float64(replans)
	return math.Max(regularityMin, math.Min(regularityMax, value))
}

// JobTitle derives a short title from a free-text job description.
func JobTitle(description string) string {
	compact := strings.Join(strings.Fields(description), " ")
	if compact == "" {
		return DefaultJobTitle
	}
	runes := []rune(compact)
	if len(runes) > jobTitleMax {
		return strings.TrimRight(string(runes[:jobTitleKeep]), " ") + jobTitleTrail
	}
	return compact
}

// InviteText renders the notification sent to an invited student.
func InviteText(company, title string) (string, string) {
	return fmt.Sprintf("New Company Invite: %s", company),
		fmt.Sprintf("You are eligible for '%s'. Open your dashboard to apply or decline this invitation.", title)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
