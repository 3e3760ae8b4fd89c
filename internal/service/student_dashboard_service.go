package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/repository"
	"github.com/advait122/ROADmap/internal/roadmap"
)

const dashboardNotificationLimit = 20

// StudentDashboardService assembles the roadmap dashboard.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	repos         Repositories
	roadmap       RoadmapService
	matches       MatchingService
	notifications repository.NotificationRepository
	forecastDays  int
	logger        zerolog.Logger
	now           func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(repos Repositories, roadmapService RoadmapService, matchingService MatchingService, notifications repository.NotificationRepository, forecastDays int, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		repos:         repos,
		roadmap:       roadmapService,
		matches:       matchingService,
		notifications: notifications,
		forecastDays:  forecastDays,
		logger:        logger.With().Str("component", "student_dashboard_service").Logger(),
		now:           time.Now,
	}
}

// GetDashboard replans, refreshes matches, forecasts, then reads the state
// those steps produced.
func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	student, err := loadStudent(ctx, s.repos.Students, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	if _, err := loadActivePlan(ctx, s.repos.Plans, goal.ID); err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	replan, err := s.roadmap.Replan(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	refreshed, err := s.matches.Refresh(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	forecast, err := s.matches.Forecast(ctx, studentID, s.forecastDays)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	plan, err := loadActivePlan(ctx, s.repos.Plans, goal.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	known, err := s.repos.Students.ListSkills(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list student skills: %w", err)
	}
	goalSkills, err := s.repos.Goals.ListSkills(ctx, goal.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list goal skills: %w", err)
	}
	tasks, err := s.repos.Tasks.ListByPlan(ctx, plan.ID, nil, nil)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list plan tasks: %w", err)
	}
	notifications, err := s.notifications.ListByStudent(ctx, studentID, dashboardNotificationLimit, 0)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.notifications.CountUnread(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("count unread notifications: %w", err)
	}

	today := roadmap.Day(s.now())
	active, hasActive := models.ActiveGoalSkill(goalSkills)

	readyForTest := false
	if hasActive {
		skillTasks := make([]models.RoadmapTask, 0)
		for _, task := range tasks {
			if task.BelongsToSkill(active.ID) {
				skillTasks = append(skillTasks, task)
			}
		}
		readyForTest = allCompleted(skillTasks)
	}

	skillResponses := make([]dto.GoalSkillResponse, 0, len(goalSkills))
	var activeResponse *dto.GoalSkillResponse
	for _, skill := range goalSkills {
		response := dto.NewGoalSkillResponse(skill)
		if hasActive {
			response.IsActive = skill.ID == active.ID
			response.IsLocked = skill.ID != active.ID && !skill.IsCompleted()
			response.ReadyForTest = response.IsActive && readyForTest
		}
		skillResponses = append(skillResponses, response)
		if response.IsActive {
			current := response
			activeResponse = &current
		}
	}

	todayTasks := make([]dto.TaskResponse, 0)
	upcomingTasks := make([]dto.TaskResponse, 0)
	for _, task := range tasks {
		if roadmap.Day(task.TaskDate).Before(today) {
			continue
		}
		if hasActive && !task.BelongsToSkill(active.ID) {
			continue
		}
		response := dto.NewTaskResponse(task)
		if roadmap.Day(task.TaskDate).Equal(today) {
			todayTasks = append(todayTasks, response)
		}
		upcomingTasks = append(upcomingTasks, response)
	}

	requirements := s.requiredSkillNames(goal)

	s.logger.Debug().
		Uint("student_id", studentID).
		Str("replan_reason", replan.Reason).
		Int("matches", refreshed.Matches.Total).
		Msg("dashboard assembled")

	return dto.StudentDashboardResponse{
		Today:               dto.FormatDate(today),
		Student:             dto.NewStudentSummary(student, known),
		Goal:                dto.NewGoalSummary(goal, requirements),
		Plan:                dto.NewPlanResponse(plan),
		Replan:              replan,
		Progress:            dto.NewProgressSummary(tasks),
		ActiveSkill:         activeResponse,
		Skills:              skillResponses,
		TodayTasks:          todayTasks,
		UpcomingTasks:       upcomingTasks,
		Opportunities:       refreshed.Matches,
		Forecast:            forecast.Items,
		Notifications:       dto.NewNotificationResponseSlice(notifications),
		UnreadNotifications: unread,
	}, nil
}

func (s *studentDashboardService) requiredSkillNames(goal models.CareerGoal) []string {
	if len(goal.Requirements) == 0 {
		return []string{}
	}
	var requirements GoalRequirements
	if err := json.Unmarshal(goal.Requirements, &requirements); err != nil {
		s.logger.Warn().Err(err).Uint("goal_id", goal.ID).Msg("goal requirements are not valid json")
		return []string{}
	}
	if requirements.RequiredSkills == nil {
		return []string{}
	}
	return requirements.RequiredSkills
}
