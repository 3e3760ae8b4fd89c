package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/handler"
)

func dashboardFixture() dto.StudentDashboardResponse {
	goalSkillID := uint(11)
	active := dto.GoalSkillResponse{
		ID:                   goalSkillID,
		SkillName:            "Git",
		NormalizedSkill:      "git",
		Priority:             1,
		EstimatedEffortHours: 10,
		Status:               "in_progress",
		IsActive:             true,
	}
	locked := dto.GoalSkillResponse{
		ID:                   12,
		SkillName:            "Linux",
		NormalizedSkill:      "linux",
		Priority:             2,
		EstimatedEffortHours: 12,
		Status:               "pending",
		IsLocked:             true,
	}
	task := dto.TaskResponse{
		ID:            101,
		PlanID:        5,
		GoalSkillID:   &goalSkillID,
		TaskDate:      "2024-03-10",
		Title:         "Learn Git",
		Description:   "Study Git for 120 minutes.",
		TargetMinutes: 120,
	}
	match := dto.MatchResponse{
		OpportunityID:       7,
		Title:               "SDE Intern",
		Company:             "Initech",
		Type:                "internship",
		Bucket:              "almost_eligible",
		MatchScore:          0.5,
		RequiredSkillsCount: 2,
		MatchedSkillsCount:  1,
		MissingSkills:       []string{"git"},
		NextSkills:          []string{"Git"},
	}

	return dto.StudentDashboardResponse{
		Today: "2024-03-10",
		Student: dto.StudentSummary{
			ID:               3,
			Name:             "Asha",
			Branch:           "CSE",
			CurrentYear:      3,
			WeeklyStudyHours: 14,
			KnownSkills:      []string{"Python"},
		},
		Goal: dto.GoalSummary{
			ID:                   4,
			GoalText:             "Backend engineer at Acme",
			TargetCompany:        "Acme",
			TargetRoleFamily:     "backend",
			TargetDurationMonths: 6,
			StartDate:            "2024-03-01",
			TargetEndDate:        "2024-09-06",
			Status:               "active",
			RequiredSkills:       []string{"Python", "Git", "Linux"},
		},
		Plan:          dto.PlanResponse{ID: 5, StartDate: "2024-03-01", EndDate: "2024-09-06", Status: "active"},
		Replan:        dto.ReplanResponse{Reason: "on_track"},
		Progress:      dto.ProgressSummary{TotalTasks: 4, CompletedTasks: 1, CompletionPercent: 25},
		ActiveSkill:   &active,
		Skills:        []dto.GoalSkillResponse{active, locked},
		TodayTasks:    []dto.TaskResponse{task},
		UpcomingTasks: []dto.TaskResponse{},
		Opportunities: dto.BucketedMatchesResponse{
			EligibleNow:    []dto.MatchResponse{},
			AlmostEligible: []dto.MatchResponse{match},
			ComingSoon:     []dto.MatchResponse{},
			Total:          1,
		},
		Forecast: []dto.ForecastItemResponse{{
			MatchResponse:         match,
			PredictedEligibleDate: "2024-03-14",
			SkillsToUnlock:        []string{"Git"},
		}},
		Notifications: []dto.NotificationResponse{{
			ID:        9,
			StudentID: 3,
			Type:      "newly_eligible",
			Title:     "Newly Eligible Opportunity",
			Body:      "You are now eligible for Data Intern at Globex.",
			CreatedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		}},
		UnreadNotifications: 1,
	}
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(path))
	require.NoError(t, err)
	return schema
}

func TestStudentDashboardContract(t *testing.T) {
	schema := compileSchema(t, "student_dashboard.schema.json")
	svc := &stubStudentDashboardService{response: dashboardFixture()}

	app := fiber.New()
	handler.NewStudentDashboardHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/roadmap", withStudent(3)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roadmap/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NoError(t, schema.Validate(payload))
}

func TestStudentDashboardContractRejectsUnknownBucket(t *testing.T) {
	schema := compileSchema(t, "student_dashboard.schema.json")

	fixture := dashboardFixture()
	fixture.Opportunities.AlmostEligible[0].Bucket = "maybe"
	raw, err := json.Marshal(map[string]any{"success": true, "message": "dashboard retrieved", "data": fixture})
	require.NoError(t, err)

	var payload any
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Error(t, schema.Validate(payload))
}
