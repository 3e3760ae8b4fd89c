package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assessment thresholds, in percent.
const (
	PassThresholdPercent = 70.0
	WeakTopicPercent     = 50.0
	StrongTopicPercent   = 80.0
)

// AssessmentQuestion is one multiple-choice question of a skill test.
type AssessmentQuestion struct {
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"question"`
	Options    []string `json:"options"`
}

// SkillAssessment is one attempt at a goal skill's test. The answer key never
// leaves the server; SubmittedAt stays nil until the attempt is graded.
type SkillAssessment struct {
	ID             uint                                    `gorm:"primaryKey" json:"id"`
	GoalID         uint                                    `gorm:"not null;index" json:"goal_id"`
	GoalSkillID    uint                                    `gorm:"not null;index" json:"goal_skill_id"`
	AttemptNo      int                                     `gorm:"not null" json:"attempt_no"`
	Questions      datatypes.JSONSlice[AssessmentQuestion] `json:"questions"`
	AnswerKey      datatypes.JSONSlice[int]                `json:"-"`
	StudentAnswers datatypes.JSONSlice[int]                `json:"student_answers"`
	ScorePercent   float64                                 `gorm:"not null;default:0" json:"score_percent"`
	Passed         bool                                    `gorm:"not null;default:false" json:"passed"`
	WeakTopics     datatypes.JSONSlice[string]             `json:"weak_topics"`
	StrongTopics   datatypes.JSONSlice[string]             `json:"strong_topics"`
	FeedbackText   string                                  `gorm:"type:text" json:"feedback_text"`
	SubmittedAt    *time.Time                              `json:"submitted_at"`
	CreatedAt      time.Time                               `json:"created_at"`
}

// IsSubmitted reports whether the attempt has been graded.
func (a SkillAssessment) IsSubmitted() bool {
	return a.SubmittedAt != nil
}
