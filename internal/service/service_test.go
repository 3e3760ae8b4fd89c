package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/database"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/repository"
)

type testEnv struct {
	db            *gorm.DB
	repos         Repositories
	notifications NotificationService
	matching      *matchingService
	roadmap       *roadmapService
	assessments   *assessmentService
	dashboard     *studentDashboardService
	companies     *companyService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T, today time.Time, cache *redis.Client) *testEnv {
	t.Helper()
	db := newTestDB(t)
	repos := NewRepositories(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	clock := func() time.Time { return today }

	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validate, zerolog.Nop())

	matchingSvc := NewMatchingService(repos, notifications, cache, validate, zerolog.Nop(), MatchingConfig{}).(*matchingService)
	matchingSvc.now = clock

	roadmapSvc := NewRoadmapService(repos, notifications, matchingSvc, validate, zerolog.Nop()).(*roadmapService)
	roadmapSvc.now = clock

	assessmentSvc := NewAssessmentService(repos, notifications, matchingSvc, validate, zerolog.Nop()).(*assessmentService)
	assessmentSvc.now = clock

	dashboardSvc := NewStudentDashboardService(repos, roadmapSvc, matchingSvc, repository.NewNotificationRepository(db), 7, zerolog.Nop()).(*studentDashboardService)
	dashboardSvc.now = clock

	companySvc := NewCompanyService(repos, notifications, repository.NewNotificationRepository(db), validate, zerolog.Nop()).(*companyService)
	companySvc.now = clock

	return &testEnv{
		db:            db,
		repos:         repos,
		notifications: notifications,
		matching:      matchingSvc,
		roadmap:       roadmapSvc,
		assessments:   assessmentSvc,
		dashboard:     dashboardSvc,
		companies:     companySvc,
	}
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

type fixture struct {
	student models.Student
	goal    models.CareerGoal
	plan    models.RoadmapPlan
	skills  []models.GoalSkill
}

// seedRoadmap stores a student with known skills and an active goal whose
// skills follow the given order.
func seedRoadmap(t *testing.T, env *testEnv, known []string, goalSkills []string, start, end time.Time) fixture {
	t.Helper()
	student := models.Student{Name: "Asha", Branch: "CSE", CurrentYear: 3, WeeklyStudyHours: 14}
	require.NoError(t, env.db.Create(&student).Error)

	for _, name := range known {
		require.NoError(t, env.db.Create(&models.StudentSkill{
			StudentID:       student.ID,
			SkillName:       name,
			NormalizedSkill: strings.ToLower(name),
			SkillSource:     models.SkillSourcePredefined,
		}).Error)
	}

	goal := models.CareerGoal{
		StudentID:            student.ID,
		GoalText:             "Software engineer at Acme",
		TargetCompany:        "Acme",
		TargetRoleFamily:     "Software Engineering",
		TargetDurationMonths: 6,
		StartDate:            start,
		TargetEndDate:        end,
		Status:               models.GoalStatusActive,
	}
	require.NoError(t, env.db.Create(&goal).Error)

	skills := make([]models.GoalSkill, 0, len(goalSkills))
	for idx, name := range goalSkills {
		skill := models.GoalSkill{
			GoalID:               goal.ID,
			SkillName:            name,
			NormalizedSkill:      strings.ToLower(name),
			Priority:             idx + 1,
			EstimatedEffortHours: 10,
			Status:               models.GoalSkillPending,
		}
		require.NoError(t, env.db.Create(&skill).Error)
		skills = append(skills, skill)
	}

	plan := models.RoadmapPlan{GoalID: goal.ID, StartDate: start, EndDate: end, Status: models.PlanStatusActive}
	require.NoError(t, env.db.Create(&plan).Error)

	return fixture{student: student, goal: goal, plan: plan, skills: skills}
}

func seedTask(t *testing.T, env *testEnv, plan models.RoadmapPlan, skill *models.GoalSkill, date time.Time, completed bool) models.RoadmapTask {
	t.Helper()
	task := models.RoadmapTask{
		PlanID:        plan.ID,
		TaskDate:      date,
		Title:         "Learn task",
		TargetMinutes: 60,
		IsCompleted:   completed,
	}
	if skill != nil {
		id := skill.ID
		task.GoalSkillID = &id
		task.Title = "Learn " + skill.SkillName
	}
	require.NoError(t, env.db.Create(&task).Error)
	return task
}

func seedOpportunity(t *testing.T, env *testEnv, title, company, skills string, deadline *time.Time) models.Opportunity {
	t.Helper()
	opportunity := models.Opportunity{
		Title:    title,
		Company:  company,
		Type:     "job",
		Skills:   skills,
		Deadline: deadline,
		URL:      "https://example.com/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Source:   "test",
	}
	require.NoError(t, env.db.Create(&opportunity).Error)
	return opportunity
}

func countNotifications(t *testing.T, env *testEnv, studentID uint, kind string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).
		Where("student_id = ? AND notification_type = ?", studentID, kind).
		Count(&count).Error)
	return count
}
