package dto

import (
	"time"

	"github.com/advait122/ROADmap/internal/models"
)

// DateLayout is the calendar date format used by every roadmap payload.
const DateLayout = "2006-01-02"

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// GoalCreateRequest is the onboarding payload that creates a goal and its plan.
type GoalCreateRequest struct {
	Name                 string   `json:"name" validate:"required,min=1,max=255"`
	Branch               string   `json:"branch" validate:"required,oneof=CSE CSE-AI/ML CSE-DS CSE-IOT IT ECE Other"`
	CurrentYear          int      `json:"current_year" validate:"required,min=1,max=4"`
	WeeklyStudyHours     int      `json:"weekly_study_hours" validate:"omitempty,min=2,max=60"`
	KnownSkills          []string `json:"known_skills" validate:"omitempty,max=50,dive,max=128"`
	CustomSkills         string   `json:"custom_skills" validate:"omitempty,max=2000"`
	GoalText             string   `json:"goal_text" validate:"required,min=3,max=2000"`
	TargetCompany        string   `json:"target_company" validate:"omitempty,max=255"`
	TargetRoleFamily     string   `json:"target_role_family" validate:"omitempty,max=128"`
	TargetDurationMonths int      `json:"target_duration_months" validate:"required,oneof=6 12 18 24 30 36"`
	RequiredSkills       []string `json:"required_skills" validate:"omitempty,max=40,dive,max=128"`
}

// GoalSummary describes the active career goal.
type GoalSummary struct {
	ID                   uint     `json:"id"`
	GoalText             string   `json:"goal_text"`
	TargetCompany        string   `json:"target_company,omitempty"`
	TargetRoleFamily     string   `json:"target_role_family"`
	TargetDurationMonths int      `json:"target_duration_months"`
	StartDate            string   `json:"start_date"`
	TargetEndDate        string   `json:"target_end_date"`
	Status               string   `json:"status"`
	RequiredSkills       []string `json:"required_skills"`
}

// GoalSkillResponse describes one goal skill and its lock state.
type GoalSkillResponse struct {
	ID                   uint       `json:"id"`
	SkillName            string     `json:"skill_name"`
	NormalizedSkill      string     `json:"normalized_skill"`
	Priority             int        `json:"priority"`
	EstimatedEffortHours float64    `json:"estimated_effort_hours"`
	Status               string     `json:"status"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	IsActive             bool       `json:"is_active"`
	IsLocked             bool       `json:"is_locked"`
	ReadyForTest         bool       `json:"ready_for_test"`
}

// PlanResponse describes the active roadmap plan window.
type PlanResponse struct {
	ID              uint       `json:"id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Status          string     `json:"status"`
	LastReplannedAt *time.Time `json:"last_replanned_at,omitempty"`
}

// TaskResponse describes a scheduled roadmap task.
type TaskResponse struct {
	ID            uint       `json:"id"`
	PlanID        uint       `json:"plan_id"`
	GoalSkillID   *uint      `json:"goal_skill_id"`
	TaskDate      string     `json:"task_date"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TargetMinutes int        `json:"target_minutes"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// GoalCreateResponse is returned after onboarding.
type GoalCreateResponse struct {
	Goal          GoalSummary         `json:"goal"`
	Plan          PlanResponse        `json:"plan"`
	KnownSkills   []string            `json:"known_skills"`
	MissingSkills []GoalSkillResponse `json:"missing_skills"`
	TaskCount     int                 `json:"task_count"`
}

// ReplanResponse reports whether the replanner moved any task.
type ReplanResponse struct {
	Applied          bool   `json:"applied"`
	Reason           string `json:"reason"`
	UpdatedTaskCount int    `json:"updated_task_count"`
	OverdueTaskCount int    `json:"overdue_task_count"`
}

// TaskListQuery is the optional date window for task listing.
type TaskListQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// TaskCompletionRequest toggles a task's completion flag.
type TaskCompletionRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// TaskCompletionResponse returns the updated task and its skill state.
type TaskCompletionResponse struct {
	Task         TaskResponse `json:"task"`
	SkillStatus  string       `json:"skill_status"`
	ReadyForTest bool         `json:"ready_for_test"`
}

// NewGoalSummary converts a goal model.
func NewGoalSummary(goal models.CareerGoal, requiredSkills []string) GoalSummary {
	if requiredSkills == nil {
		requiredSkills = []string{}
	}
	return GoalSummary{
		ID:                   goal.ID,
		GoalText:             goal.GoalText,
		TargetCompany:        goal.TargetCompany,
		TargetRoleFamily:     goal.TargetRoleFamily,
		TargetDurationMonths: goal.TargetDurationMonths,
		StartDate:            FormatDate(goal.StartDate),
		TargetEndDate:        FormatDate(goal.TargetEndDate),
		Status:               goal.Status,
		RequiredSkills:       requiredSkills,
	}
}

// NewGoalSkillResponse converts a goal skill; lock flags are filled by callers.
func NewGoalSkillResponse(skill models.GoalSkill) GoalSkillResponse {
	return GoalSkillResponse{
		ID:                   skill.ID,
		SkillName:            skill.SkillName,
		NormalizedSkill:      skill.NormalizedSkill,
		Priority:             skill.Priority,
		EstimatedEffortHours: skill.EstimatedEffortHours,
		Status:               skill.Status,
		CompletedAt:          skill.CompletedAt,
	}
}

// NewPlanResponse converts a plan model.
func NewPlanResponse(plan models.RoadmapPlan) PlanResponse {
	return PlanResponse{
		ID:              plan.ID,
		StartDate:       FormatDate(plan.StartDate),
		EndDate:         FormatDate(plan.EndDate),
		Status:          plan.Status,
		LastReplannedAt: plan.LastReplannedAt,
	}
}

// NewTaskResponse converts a task model.
func NewTaskResponse(task models.RoadmapTask) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		PlanID:        task.PlanID,
		GoalSkillID:   task.GoalSkillID,
		TaskDate:      FormatDate(task.TaskDate),
		Title:         task.Title,
		Description:   task.Description,
		TargetMinutes: task.TargetMinutes,
		IsCompleted:   task.IsCompleted,
		CompletedAt:   task.CompletedAt,
	}
}

// NewTaskResponseSlice converts tasks to DTOs.
func NewTaskResponseSlice(tasks []models.RoadmapTask) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}
