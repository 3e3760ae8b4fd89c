package dto

import (
	"time"

	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/skills"
)

// CompanyJobCreateRequest posts a job and invites every matching student.
type CompanyJobCreateRequest struct {
	CompanyName         string   `json:"company_name" validate:"required,max=255"`
	Description         string   `json:"description" validate:"required,max=5000"`
	RequiredSkills      []string `json:"required_skills" validate:"required,min=1,max=30,dive,max=128"`
	ShortlistLimit      int      `json:"shortlist_limit" validate:"required,min=1,max=500"`
	ApplicationDeadline string   `json:"application_deadline" validate:"required,datetime=2006-01-02"`
}

// CompanyJobResponse describes a posted job.
type CompanyJobResponse struct {
	ID                  uint      `json:"id"`
	CompanyName         string    `json:"company_name"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	RequiredSkills      []string  `json:"required_skills"`
	ShortlistLimit      int       `json:"shortlist_limit"`
	ApplicationDeadline string    `json:"application_deadline"`
	InvitedCount        int       `json:"invited_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewCompanyJobResponse converts a stored job. Skill keys are rendered for display.
func NewCompanyJobResponse(job models.CompanyJob, invited int) CompanyJobResponse {
	labels := make([]string, 0, len(job.RequiredSkills))
	for _, key := range job.RequiredSkills {
		labels = append(labels, skills.Display(key))
	}
	return CompanyJobResponse{
		ID:                  job.ID,
		CompanyName:         job.CompanyName,
		Title:               job.Title,
		Description:         job.Description,
		RequiredSkills:      labels,
		ShortlistLimit:      job.ShortlistLimit,
		ApplicationDeadline: FormatDate(job.ApplicationDeadline),
		InvitedCount:        invited,
		CreatedAt:           job.CreatedAt,
	}
}

// CandidateResponse is one invited student as seen by the company.
type CandidateResponse struct {
	StudentID       uint    `json:"student_id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	TestScore       float64 `json:"test_score"`
	RegularityScore float64 `json:"regularity_score"`
	MatchScore      float64 `json:"match_score"`
	Shortlisted     bool    `json:"shortlisted"`
}

// ApplicationCounts tallies invitations by state.
type ApplicationCounts struct {
	Pending     int `json:"pending"`
	Applied     int `json:"applied"`
	Declined    int `json:"declined"`
	Shortlisted int `json:"shortlisted"`
}

// CompanyCandidatesResponse lists the ranked candidates of a job.
type CompanyCandidatesResponse struct {
	Job                CompanyJobResponse  `json:"job"`
	Counts             ApplicationCounts   `json:"counts"`
	RemainingShortlist int                 `json:"remaining_shortlist"`
	Candidates         []CandidateResponse `json:"candidates"`
}

// ShortlistRequest names the applied students to shortlist, in preference order.
type ShortlistRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1,max=500,dive,required"`
}

// ShortlistResponse reports the outcome of a shortlist call.
type ShortlistResponse struct {
	Added        int  `json:"added"`
	Skipped      int  `json:"skipped"`
	Remaining    int  `json:"remaining"`
	LimitReached bool `json:"limit_reached"`
}

// InviteDecisionRequest answers a pending invitation.
type InviteDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=apply decline"`
}

// CompanyInviteResponse is a company invitation as seen by the student.
type CompanyInviteResponse struct {
	JobID               uint     `json:"job_id"`
	CompanyName         string   `json:"company_name"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	RequiredSkills      []string `json:"required_skills"`
	ApplicationDeadline string   `json:"application_deadline"`
	DeadlinePassed      bool     `json:"deadline_passed"`
	Status              string   `json:"status"`
}

// NewCompanyInviteResponse converts an application with its preloaded job.
func NewCompanyInviteResponse(application models.JobApplication, today time.Time) CompanyInviteResponse {
	job := NewCompanyJobResponse(application.Job, 0)
	return CompanyInviteResponse{
		JobID:               application.JobID,
		CompanyName:         job.CompanyName,
		Title:               job.Title,
		Description:         job.Description,
		RequiredSkills:      job.RequiredSkills,
		ApplicationDeadline: job.ApplicationDeadline,
		DeadlinePassed:      application.Job.DeadlinePassed(today),
		Status:              application.Status,
	}
}
