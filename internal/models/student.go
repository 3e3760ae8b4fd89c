package models

import "time"

// Skill sources recorded on student and goal skills.
const (
	SkillSourcePredefined      = "predefined"
	SkillSourceCustom          = "custom"
	SkillSourceRoadmapMastered = "roadmap_mastered"
	SkillSourceGoalRequirement = "goal_requirement"
)

// Onboarding limits for weekly study hours.
const (
	DefaultWeeklyStudyHours = 8
	MinWeeklyStudyHours     = 2
	MaxWeeklyStudyHours     = 60
)

// BranchOptions lists the academic branches accepted during onboarding.
var BranchOptions = []string{"CSE", "CSE-AI/ML", "CSE-DS", "CSE-IOT", "IT", "ECE", "Other"}

// Student represents a learner following a career roadmap.
type Student struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Branch           string         `gorm:"size:32" json:"branch"`
	CurrentYear      int            `json:"current_year"`
	WeeklyStudyHours int            `gorm:"not null;default:8" json:"weekly_study_hours"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Skills           []StudentSkill `gorm:"constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

// StudentSkill is a skill the student already holds.
type StudentSkill struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_student_skill" json:"student_id"`
	SkillName       string    `gorm:"size:128;not null" json:"skill_name"`
	NormalizedSkill string    `gorm:"size:128;not null;uniqueIndex:idx_student_skill" json:"normalized_skill"`
	SkillSource     string    `gorm:"size:32;not null" json:"skill_source"`
	CreatedAt       time.Time `json:"created_at"`
}
