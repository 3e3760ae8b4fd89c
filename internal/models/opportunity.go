package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/advait122/ROADmap/internal/skills"
)

// Opportunity is an externally sourced job, internship or hackathon posting.
type Opportunity struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Company   string     `gorm:"size:255;index" json:"company"`
	Type      string     `gorm:"size:64" json:"type"`
	Deadline  *time.Time `gorm:"type:date" json:"deadline"`
	Skills    string     `gorm:"type:text" json:"skills"`
	URL       string     `gorm:"size:1024" json:"url"`
	Source    string     `gorm:"size:128" json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RequiredSkills parses the raw skills field.
func (o Opportunity) RequiredSkills() []string {
	return skills.ParseList(o.Skills)
}

// OpportunityMatch caches the classification of an opportunity for a goal.
type OpportunityMatch struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	GoalID              uint                        `gorm:"not null;uniqueIndex:idx_goal_opportunity" json:"goal_id"`
	OpportunityID       uint                        `gorm:"not null;uniqueIndex:idx_goal_opportunity" json:"opportunity_id"`
	Bucket              string                      `gorm:"size:32;not null;index" json:"bucket"`
	MatchScore          float64                     `gorm:"not null" json:"match_score"`
	RequiredSkillsCount int                         `gorm:"not null" json:"required_skills_count"`
	MatchedSkillsCount  int                         `gorm:"not null" json:"matched_skills_count"`
	MissingSkills       datatypes.JSONSlice[string] `json:"missing_skills"`
	NextSkills          datatypes.JSONSlice[string] `json:"next_skills"`
	EligibleNow         bool                        `gorm:"not null;default:false" json:"eligible_now"`
	LastEvaluatedAt     time.Time                   `gorm:"not null" json:"last_evaluated_at"`
	Opportunity         Opportunity                 `gorm:"constraint:OnDelete:CASCADE" json:"opportunity"`
}
