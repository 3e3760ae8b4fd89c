package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/middleware"
	"github.com/advait122/ROADmap/internal/service"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    map[string]any    `json:"meta"`
	Details map[string]string `json:"details"`
}

func withStudent(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalStudentID, id)
		c.Locals(middleware.LocalRole, middleware.RoleStudent)
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

type stubRoadmapService struct {
	createResp   dto.GoalCreateResponse
	replanResp   dto.ReplanResponse
	tasks        []dto.TaskResponse
	completion   dto.TaskCompletionResponse
	err          error
	lastStudent  uint
	lastTask     uint
	lastComplete bool
	lastFrom     *time.Time
	lastTo       *time.Time
	lastGoal     dto.GoalCreateRequest
}

func (s *stubRoadmapService) CreateGoal(_ context.Context, studentID uint, payload dto.GoalCreateRequest) (dto.GoalCreateResponse, error) {
	s.lastStudent = studentID
	s.lastGoal = payload
	return s.createResp, s.err
}

func (s *stubRoadmapService) Replan(_ context.Context, studentID uint) (dto.ReplanResponse, error) {
	s.lastStudent = studentID
	return s.replanResp, s.err
}

func (s *stubRoadmapService) ListTasks(_ context.Context, studentID uint, from, to *time.Time) ([]dto.TaskResponse, error) {
	s.lastStudent = studentID
	s.lastFrom = from
	s.lastTo = to
	return s.tasks, s.err
}

func (s *stubRoadmapService) SetTaskCompletion(_ context.Context, studentID, taskID uint, completed bool) (dto.TaskCompletionResponse, error) {
	s.lastStudent = studentID
	s.lastTask = taskID
	s.lastComplete = completed
	return s.completion, s.err
}

type stubAssessmentService struct {
	generated      dto.AssessmentResponse
	resp           dto.AssessmentResultResponse
	err            error
	lastSkill      uint
	lastAssessment uint
	payload        dto.AssessmentSubmitRequest
}

func (s *stubAssessmentService) Generate(_ context.Context, _ uint, goalSkillID uint) (dto.AssessmentResponse, error) {
	s.lastSkill = goalSkillID
	return s.generated, s.err
}

func (s *stubAssessmentService) Submit(_ context.Context, _ uint, assessmentID uint, payload dto.AssessmentSubmitRequest) (dto.AssessmentResultResponse, error) {
	s.lastAssessment = assessmentID
	s.payload = payload
	return s.resp, s.err
}

type stubMatchingService struct {
	buckets     dto.BucketedMatchesResponse
	refresh     dto.MatchRefreshResponse
	forecast    dto.ForecastResponse
	created     dto.OpportunityResponse
	err         error
	lastDays    int
	refreshHits int
}

func (s *stubMatchingService) Refresh(context.Context, uint) (dto.MatchRefreshResponse, error) {
	s.refreshHits++
	return s.refresh, s.err
}

func (s *stubMatchingService) Buckets(context.Context, uint) (dto.BucketedMatchesResponse, error) {
	return s.buckets, s.err
}

func (s *stubMatchingService) Forecast(_ context.Context, _ uint, days int) (dto.ForecastResponse, error) {
	s.lastDays = days
	response := s.forecast
	response.HorizonDays = days
	return response, s.err
}

func (s *stubMatchingService) CreateOpportunity(context.Context, dto.OpportunityCreateRequest) (dto.OpportunityResponse, error) {
	return s.created, s.err
}

type stubStudentDashboardService struct {
	response dto.StudentDashboardResponse
	err      error
	calls    int
	lastID   uint
}

func (s *stubStudentDashboardService) GetDashboard(_ context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	s.calls++
	s.lastID = studentID
	if s.err != nil {
		return dto.StudentDashboardResponse{}, s.err
	}
	return s.response, nil
}

var (
	_ service.RoadmapService          = (*stubRoadmapService)(nil)
	_ service.AssessmentService       = (*stubAssessmentService)(nil)
	_ service.MatchingService         = (*stubMatchingService)(nil)
	_ service.StudentDashboardService = (*stubStudentDashboardService)(nil)
)

type stubCompanyService struct {
	job        dto.CompanyJobResponse
	candidates dto.CompanyCandidatesResponse
	shortlist  dto.ShortlistResponse
	invites    []dto.CompanyInviteResponse
	invite     dto.CompanyInviteResponse
	err        error
	lastCaller uint
	lastJob    uint
	lastLimit  int
	lastCreate dto.CompanyJobCreateRequest
	lastIDs    []uint
	lastAnswer string
}

func (s *stubCompanyService) CreateJob(_ context.Context, companyID uint, payload dto.CompanyJobCreateRequest) (dto.CompanyJobResponse, error) {
	s.lastCaller = companyID
	s.lastCreate = payload
	return s.job, s.err
}

func (s *stubCompanyService) ListJobs(_ context.Context, companyID uint) ([]dto.CompanyJobResponse, error) {
	s.lastCaller = companyID
	return []dto.CompanyJobResponse{s.job}, s.err
}

func (s *stubCompanyService) Candidates(_ context.Context, companyID, jobID uint, limit int) (dto.CompanyCandidatesResponse, error) {
	s.lastCaller = companyID
	s.lastJob = jobID
	s.lastLimit = limit
	return s.candidates, s.err
}

func (s *stubCompanyService) Shortlist(_ context.Context, companyID, jobID uint, payload dto.ShortlistRequest) (dto.ShortlistResponse, error) {
	s.lastCaller = companyID
	s.lastJob = jobID
	s.lastIDs = payload.StudentIDs
	return s.shortlist, s.err
}

func (s *stubCompanyService) Invites(_ context.Context, studentID uint) ([]dto.CompanyInviteResponse, error) {
	s.lastCaller = studentID
	return s.invites, s.err
}

func (s *stubCompanyService) RespondToInvite(_ context.Context, studentID, jobID uint, payload dto.InviteDecisionRequest) (dto.CompanyInviteResponse, error) {
	s.lastCaller = studentID
	s.lastJob = jobID
	s.lastAnswer = payload.Decision
	return s.invite, s.err
}

var _ service.CompanyService = (*stubCompanyService)(nil)
