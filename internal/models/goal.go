package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

// Goal statuses.
const (
	GoalStatusActive   = "active"
	GoalStatusArchived = "archived"
)

// Goal skill statuses.
const (
	GoalSkillPending    = "pending"
	GoalSkillInProgress = "in_progress"
	GoalSkillCompleted  = "completed"
)

// TimelineOptions lists the goal durations, in months, offered to students.
var TimelineOptions = []int{6, 12, 18, 24, 30, 36}

// CareerGoal is a student's career objective and the window to reach it.
type CareerGoal struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	StudentID            uint           `gorm:"not null;index" json:"student_id"`
	GoalText             string         `gorm:"type:text;not null" json:"goal_text"`
	TargetCompany        string         `gorm:"size:255" json:"target_company"`
	TargetRoleFamily     string         `gorm:"size:128" json:"target_role_family"`
	TargetDurationMonths int            `gorm:"not null" json:"target_duration_months"`
	StartDate            time.Time      `gorm:"type:date;not null" json:"start_date"`
	TargetEndDate        time.Time      `gorm:"type:date;not null" json:"target_end_date"`
	Requirements         datatypes.JSON `json:"requirements"`
	Status               string         `gorm:"size:16;not null;index" json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	Skills               []GoalSkill    `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

// GoalSkill is one skill a goal requires, learned strictly in priority order.
type GoalSkill struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	GoalID               uint       `gorm:"not null;index" json:"goal_id"`
	SkillName            string     `gorm:"size:128;not null" json:"skill_name"`
	NormalizedSkill      string     `gorm:"size:128;not null" json:"normalized_skill"`
	Priority             int        `gorm:"not null" json:"priority"`
	EstimatedEffortHours float64    `gorm:"not null" json:"estimated_effort_hours"`
	SkillSource          string     `gorm:"size:32" json:"skill_source"`
	Status               string     `gorm:"size:16;not null;default:pending" json:"status"`
	CompletedAt          *time.Time `json:"completed_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the skill has been mastered.
func (s GoalSkill) IsCompleted() bool {
	return s.Status == GoalSkillCompleted
}

// SortGoalSkills orders skills by priority, then id.
func SortGoalSkills(skills []GoalSkill) {
	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Priority != skills[j].Priority {
			return skills[i].Priority < skills[j].Priority
		}
		return skills[i].ID < skills[j].ID
	})
}

// ActiveGoalSkill returns the lowest-priority skill that is not completed.
// Only this skill is unlocked; the second value is false once all are done.
func ActiveGoalSkill(skills []GoalSkill) (GoalSkill, bool) {
	ordered := make([]GoalSkill, len(skills))
	copy(ordered, skills)
	SortGoalSkills(ordered)

	for _, skill := range ordered {
		if !skill.IsCompleted() {
			return skill, true
		}
	}
	return GoalSkill{}, false
}

// PendingGoalSkills returns up to n non-completed skills in priority order.
func PendingGoalSkills(skills []GoalSkill, n int) []GoalSkill {
	ordered := make([]GoalSkill, len(skills))
	copy(ordered, skills)
	SortGoalSkills(ordered)

	out := make([]GoalSkill, 0, n)
	for _, skill := range ordered {
		if len(out) == n {
			break
		}
		if !skill.IsCompleted() {
			out = append(out, skill)
		}
	}
	return out
}
