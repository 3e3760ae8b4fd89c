package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/handler"
	"github.com/advait122/ROADmap/internal/service"
)

func newRoadmapApp(roadmap *stubRoadmapService, assessments *stubAssessmentService, studentID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/roadmap", withStudent(studentID))
	handler.NewRoadmapHandler(roadmap, assessments, zerolog.Nop()).Register(group)
	return app
}

func TestRoadmapHandlerCreateGoal(t *testing.T) {
	roadmap := &stubRoadmapService{createResp: dto.GoalCreateResponse{TaskCount: 15, KnownSkills: []string{"Python"}}}
	app := newRoadmapApp(roadmap, &stubAssessmentService{}, 12)

	body := `{"name":"Asha","branch":"CSE","current_year":3,"known_skills":["Python"],"goal_text":"Backend engineer","target_duration_months":6}`
	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/goal", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, uint(12), roadmap.lastStudent)
	require.Equal(t, "Backend engineer", roadmap.lastGoal.GoalText)
	require.Equal(t, []string{"Python"}, roadmap.lastGoal.KnownSkills)

	var data dto.GoalCreateResponse
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.Equal(t, 15, data.TaskCount)
}

func TestRoadmapHandlerCreateGoalValidationFailure(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validationErr := validate.Struct(dto.GoalCreateRequest{})
	require.Error(t, validationErr)

	roadmap := &stubRoadmapService{err: validationErr}
	app := newRoadmapApp(roadmap, &stubAssessmentService{}, 12)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/goal", `{}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.False(t, payload.Success)
	require.Equal(t, "validation failed", payload.Message)
	require.Equal(t, "required", payload.Details["GoalText"])
}

func TestRoadmapHandlerRejectsMalformedJSON(t *testing.T) {
	app := newRoadmapApp(&stubRoadmapService{}, &stubAssessmentService{}, 12)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/goal", `{"name":`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, payload.Success)
}

func TestRoadmapHandlerListTasksParsesRange(t *testing.T) {
	roadmap := &stubRoadmapService{tasks: []dto.TaskResponse{{ID: 1, TaskDate: "2024-03-11"}}}
	app := newRoadmapApp(roadmap, &stubAssessmentService{}, 4)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/roadmap/tasks?from=2024-03-10&to=2024-03-20", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, roadmap.lastFrom)
	require.NotNil(t, roadmap.lastTo)
	require.Equal(t, "2024-03-10", dto.FormatDate(*roadmap.lastFrom))
	require.Equal(t, "2024-03-20", dto.FormatDate(*roadmap.lastTo))
	require.EqualValues(t, 1, payload.Meta["count"])

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/roadmap/tasks?from=10-03-2024", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/roadmap/tasks?from=2024-03-20&to=2024-03-10", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRoadmapHandlerSetTaskCompletion(t *testing.T) {
	roadmap := &stubRoadmapService{completion: dto.TaskCompletionResponse{ReadyForTest: true}}
	app := newRoadmapApp(roadmap, &stubAssessmentService{}, 4)

	resp, payload := doRequest(t, app, http.MethodPatch, "/api/v1/roadmap/tasks/31", `{"completed":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, uint(31), roadmap.lastTask)
	require.True(t, roadmap.lastComplete)

	resp, _ = doRequest(t, app, http.MethodPatch, "/api/v1/roadmap/tasks/31", `{}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPatch, "/api/v1/roadmap/tasks/abc", `{"completed":true}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRoadmapHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "locked", err: fmt.Errorf("%w: only Git tasks are unlocked right now", service.ErrSkillLocked), status: fiber.StatusConflict},
		{name: "missing task", err: service.ErrTaskNotFound, status: fiber.StatusNotFound},
		{name: "no goal", err: service.ErrNoActiveGoal, status: fiber.StatusNotFound},
		{name: "all done", err: service.ErrAllSkillsCompleted, status: fiber.StatusConflict},
		{name: "storage", err: fmt.Errorf("update task: %w", fmt.Errorf("disk full")), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRoadmapApp(&stubRoadmapService{err: tc.err}, &stubAssessmentService{}, 4)
			resp, payload := doRequest(t, app, http.MethodPatch, "/api/v1/roadmap/tasks/3", `{"completed":true}`)
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, payload.Success)
			if tc.status == fiber.StatusInternalServerError {
				require.Equal(t, "failed to update task", payload.Message)
				return
			}
			require.Equal(t, tc.err.Error(), payload.Message)
		})
	}
}

func TestRoadmapHandlerReplan(t *testing.T) {
	roadmap := &stubRoadmapService{replanResp: dto.ReplanResponse{Applied: true, Reason: "rescheduled", UpdatedTaskCount: 5, OverdueTaskCount: 5}}
	app := newRoadmapApp(roadmap, &stubAssessmentService{}, 4)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/replan", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data dto.ReplanResponse
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.True(t, data.Applied)
	require.Equal(t, 5, data.UpdatedTaskCount)
}

func TestRoadmapHandlerGenerateAssessment(t *testing.T) {
	assessments := &stubAssessmentService{generated: dto.AssessmentResponse{
		AssessmentID: 31,
		GoalSkillID:  9,
		SkillName:    "SQL",
		AttemptNo:    1,
		Questions: []dto.AssessmentQuestionResponse{
			{Index: 0, Topic: "Purpose", Question: "Which statement best describes the purpose of SQL?", Options: []string{"a", "b", "c", "d"}},
		},
	}}
	app := newRoadmapApp(&stubRoadmapService{}, assessments, 4)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/skills/9/assessment", "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "skill test ready", payload.Message)
	require.Equal(t, uint(9), assessments.lastSkill)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.Equal(t, float64(31), data["assessment_id"])
	questions, ok := data["questions"].([]interface{})
	require.True(t, ok)
	require.Len(t, questions, 1)
	require.NotContains(t, questions[0], "answer_key")

	notReady := &stubAssessmentService{err: fmt.Errorf("%w: finish every SQL task first", service.ErrSkillNotReady)}
	app = newRoadmapApp(&stubRoadmapService{}, notReady, 4)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/roadmap/skills/9/assessment", "")
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRoadmapHandlerSubmitAssessmentIgnoresClientScore(t *testing.T) {
	assessments := &stubAssessmentService{resp: dto.AssessmentResultResponse{Passed: false, AttemptNo: 1, ScorePercent: 20}}
	app := newRoadmapApp(&stubRoadmapService{}, assessments, 4)

	body := `{"answers":[0,1,2,3],"score_percent":100,"passed":true}`
	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/assessments/31/submit", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "skill test failed", payload.Message)
	require.Equal(t, uint(31), assessments.lastAssessment)
	require.Equal(t, []int{0, 1, 2, 3}, assessments.payload.Answers)

	var data dto.AssessmentResultResponse
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.False(t, data.Passed)
	require.InDelta(t, 20.0, data.ScorePercent, 0.001)
}

func TestRoadmapHandlerSubmitAssessmentErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown attempt", service.ErrAssessmentNotFound, fiber.StatusNotFound},
		{"expired", service.ErrAssessmentExpired, fiber.StatusConflict},
		{"partial answers", fmt.Errorf("%w: got 3, want 10", service.ErrIncompleteAnswers), fiber.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRoadmapApp(&stubRoadmapService{}, &stubAssessmentService{err: tc.err}, 4)
			resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/assessments/31/submit", `{"answers":[0,1,2]}`)
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, payload.Success)
		})
	}

	app := newRoadmapApp(&stubRoadmapService{}, &stubAssessmentService{}, 4)
	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/assessments/abc/submit", `{"answers":[0]}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRoadmapHandlerRequiresUser(t *testing.T) {
	app := fiber.New()
	handler.NewRoadmapHandler(&stubRoadmapService{}, &stubAssessmentService{}, zerolog.Nop()).Register(app.Group("/api/v1/roadmap"))

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/roadmap/replan", "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, payload.Success)
}
