package dto

import "github.com/advait122/ROADmap/internal/models"

// StudentSummary describes the learner profile.
type StudentSummary struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Branch           string   `json:"branch"`
	CurrentYear      int      `json:"current_year"`
	WeeklyStudyHours int      `json:"weekly_study_hours"`
	KnownSkills      []string `json:"known_skills"`
}

// ProgressSummary captures task completion across the active plan.
type ProgressSummary struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	CompletionPercent float64 `json:"completion_percent"`
}

// StudentDashboardResponse aggregates the roadmap state for a student.
type StudentDashboardResponse struct {
	Today               string                  `json:"today"`
	Student             StudentSummary          `json:"student"`
	Goal                GoalSummary             `json:"goal"`
	Plan                PlanResponse            `json:"plan"`
	Replan              ReplanResponse          `json:"replan"`
	Progress            ProgressSummary         `json:"progress"`
	ActiveSkill         *GoalSkillResponse      `json:"active_skill"`
	Skills              []GoalSkillResponse     `json:"goal_skills"`
	TodayTasks          []TaskResponse          `json:"today_tasks"`
	UpcomingTasks       []TaskResponse          `json:"upcoming_tasks"`
	Opportunities       BucketedMatchesResponse `json:"opportunities"`
	Forecast            []ForecastItemResponse  `json:"forecast"`
	Notifications       []NotificationResponse  `json:"notifications"`
	UnreadNotifications int64                   `json:"unread_notifications"`
}

// NewStudentSummary converts a student with their known skills.
func NewStudentSummary(student models.Student, known []models.StudentSkill) StudentSummary {
	names := make([]string, 0, len(known))
	for _, skill := range known {
		names = append(names, skill.SkillName)
	}
	return StudentSummary{
		ID:               student.ID,
		Name:             student.Name,
		Branch:           student.Branch,
		CurrentYear:      student.CurrentYear,
		WeeklyStudyHours: student.WeeklyStudyHours,
		KnownSkills:      names,
	}
}

// NewProgressSummary counts completed tasks.
func NewProgressSummary(tasks []models.RoadmapTask) ProgressSummary {
	summary := ProgressSummary{TotalTasks: len(tasks)}
	for _, task := range tasks {
		if task.IsCompleted {
			summary.CompletedTasks++
		}
	}
	if summary.TotalTasks > 0 {
		summary.CompletionPercent = float64(summary.CompletedTasks) / float64(summary.TotalTasks) * 100
	}
	return summary
}
