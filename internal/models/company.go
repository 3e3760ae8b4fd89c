package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application states of a company job invitation.
const (
	ApplicationPending  = "pending"
	ApplicationApplied  = "applied"
	ApplicationDeclined = "declined"
)

// Shortlist bounds accepted when a company posts a job.
const (
	MinShortlistLimit = 1
	MaxShortlistLimit = 500
)

// CompanyJob is a role posted directly by a company account. Students whose
// known skills cover RequiredSkills are invited when the job is created.
type CompanyJob struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	CompanyID           uint                        `gorm:"not null;index" json:"company_id"`
	CompanyName         string                      `gorm:"size:255;not null" json:"company_name"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	Description         string                      `gorm:"type:text;not null" json:"description"`
	RequiredSkills      datatypes.JSONSlice[string] `json:"required_skills"`
	ShortlistLimit      int                         `gorm:"not null" json:"shortlist_limit"`
	ApplicationDeadline time.Time                   `gorm:"type:date;not null" json:"application_deadline"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// DeadlinePassed reports whether the application window closed before today.
func (j CompanyJob) DeadlinePassed(today time.Time) bool {
	return j.ApplicationDeadline.Before(today)
}

// JobApplication tracks one invited student for a company job.
type JobApplication struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	JobID           uint       `gorm:"not null;uniqueIndex:idx_job_student" json:"job_id"`
	StudentID       uint       `gorm:"not null;uniqueIndex:idx_job_student;index" json:"student_id"`
	Status          string     `gorm:"size:32;not null;index" json:"status"`
	TestScore       float64    `gorm:"not null;default:0" json:"test_score"`
	RegularityScore float64    `gorm:"not null;default:0" json:"regularity_score"`
	MatchScore      float64    `gorm:"not null;default:0" json:"match_score"`
	Shortlisted     bool       `gorm:"not null;default:false" json:"shortlisted"`
	ShortlistedAt   *time.Time `json:"shortlisted_at"`
	RespondedAt     *time.Time `json:"responded_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Job             CompanyJob `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
