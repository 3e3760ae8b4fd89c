package models

import "time"

// Notification types emitted by the roadmap and matching engines.
const (
	NotificationRoadmapReplanned = "roadmap_replanned"
	NotificationNewlyEligible    = "newly_eligible"
	NotificationDeadlineAlert    = "deadline_alert"
	NotificationSkillTestPassed  = "skill_test_passed"
	NotificationSkillTestFailed  = "skill_test_failed"
	NotificationCompanyJobInvite = "company_job_invite"
)

// Notification is an append-only message for a student. Only IsRead changes.
type Notification struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StudentID            uint      `gorm:"not null;index" json:"student_id"`
	GoalID               *uint     `gorm:"index" json:"goal_id"`
	Type                 string    `gorm:"column:notification_type;size:64;not null" json:"notification_type"`
	Title                string    `gorm:"size:255;not null" json:"title"`
	Body                 string    `gorm:"type:text;not null" json:"body"`
	RelatedOpportunityID *uint     `json:"related_opportunity_id"`
	IsRead               bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
