package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/repository"
)

// Repositories groups the stores shared by the roadmap services.
type Repositories struct {
	Students      repository.StudentRepository
	Goals         repository.GoalRepository
	Plans         repository.PlanRepository
	Tasks         repository.TaskRepository
	Opportunities repository.OpportunityRepository
	Matches       repository.MatchRepository
	Assessments   repository.AssessmentRepository
	Companies     repository.CompanyRepository
}

// NewRepositories wires every GORM repository against one connection.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Students:      repository.NewStudentRepository(db),
		Goals:         repository.NewGoalRepository(db),
		Plans:         repository.NewPlanRepository(db),
		Tasks:         repository.NewTaskRepository(db),
		Opportunities: repository.NewOpportunityRepository(db),
		Matches:       repository.NewMatchRepository(db),
		Assessments:   repository.NewAssessmentRepository(db),
		Companies:     repository.NewCompanyRepository(db),
	}
}

func loadStudent(ctx context.Context, students repository.StudentRepository, studentID uint) (models.Student, error) {
	student, err := students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

func loadActiveGoal(ctx context.Context, goals repository.GoalRepository, studentID uint) (models.CareerGoal, error) {
	goal, err := goals.GetActive(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CareerGoal{}, ErrNoActiveGoal
		}
		return models.CareerGoal{}, fmt.Errorf("load active goal: %w", err)
	}
	return goal, nil
}

func loadActivePlan(ctx context.Context, plans repository.PlanRepository, goalID uint) (models.RoadmapPlan, error) {
	plan, err := plans.GetActive(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoadmapPlan{}, ErrNoActivePlan
		}
		return models.RoadmapPlan{}, fmt.Errorf("load active plan: %w", err)
	}
	return plan, nil
}

// currentSkillKeys is the student's known skills plus completed goal skills.
func currentSkillKeys(known []models.StudentSkill, goalSkills []models.GoalSkill) []string {
	seen := make(map[string]struct{}, len(known)+len(goalSkills))
	keys := make([]string, 0, len(known)+len(goalSkills))
	add := func(key string) {
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, skill := range known {
		add(skill.NormalizedSkill)
	}
	for _, skill := range goalSkills {
		if skill.IsCompleted() {
			add(skill.NormalizedSkill)
		}
	}
	return keys
}

func uintPtr(value uint) *uint {
	return &value
}
