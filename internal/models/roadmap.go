package models

import "time"

// Plan statuses.
const (
	PlanStatusActive   = "active"
	PlanStatusArchived = "archived"
)

// RoadmapPlan is the scheduling window of a goal. A goal has one active plan.
type RoadmapPlan struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	GoalID          uint       `gorm:"not null;index" json:"goal_id"`
	StartDate       time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time  `gorm:"type:date;not null" json:"end_date"`
	Status          string     `gorm:"size:16;not null;index" json:"status"`
	LastReplannedAt *time.Time `json:"last_replanned_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RoadmapTask is one scheduled unit of study work.
type RoadmapTask struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PlanID        uint       `gorm:"not null;index" json:"plan_id"`
	GoalSkillID   *uint      `gorm:"index" json:"goal_skill_id"`
	TaskDate      time.Time  `gorm:"type:date;not null;index" json:"task_date"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	TargetMinutes int        `gorm:"not null" json:"target_minutes"`
	IsCompleted   bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BelongsToSkill reports whether the task is linked to the given goal skill.
func (t RoadmapTask) BelongsToSkill(goalSkillID uint) bool {
	return t.GoalSkillID != nil && *t.GoalSkillID == goalSkillID
}
