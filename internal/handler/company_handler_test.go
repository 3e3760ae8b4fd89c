package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/handler"
	"github.com/advait122/ROADmap/internal/middleware"
	"github.com/advait122/ROADmap/internal/service"
)

func newCompanyApp(svc *stubCompanyService, role string) *fiber.App {
	app := fiber.New()
	h := handler.NewCompanyHandler(svc, zerolog.Nop())
	company := app.Group("/api/v1/company", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalStudentID, uint(50))
		c.Locals(middleware.LocalRole, role)
		return c.Next()
	}, middleware.RequireRole(middleware.RoleCompany))
	h.RegisterCompany(company)
	h.RegisterStudent(app.Group("/api/v1/invites", withStudent(8)))
	return app
}

func TestCompanyHandlerCreateJob(t *testing.T) {
	svc := &stubCompanyService{job: dto.CompanyJobResponse{ID: 3, Title: "Backend intern", InvitedCount: 4}}
	app := newCompanyApp(svc, middleware.RoleCompany)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/v1/company/jobs",
		`{"company_name":"Acme","description":"Backend intern","required_skills":["Go"],"shortlist_limit":2,"application_deadline":"2024-03-20"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "job posted", payload.Message)
	require.Equal(t, uint(50), svc.lastCaller)
	require.Equal(t, []string{"Go"}, svc.lastCreate.RequiredSkills)

	var data dto.CompanyJobResponse
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.Equal(t, 4, data.InvitedCount)

	svc.err = service.ErrNoRequiredSkills
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/company/jobs", `{"company_name":"Acme"}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, newCompanyApp(svc, middleware.RoleStudent), http.MethodPost, "/api/v1/company/jobs", `{}`)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCompanyHandlerCandidatesAndShortlist(t *testing.T) {
	svc := &stubCompanyService{
		candidates: dto.CompanyCandidatesResponse{Candidates: []dto.CandidateResponse{{StudentID: 8, MatchScore: 55.4}}},
		shortlist:  dto.ShortlistResponse{Remaining: 0, LimitReached: true},
	}
	app := newCompanyApp(svc, middleware.RoleCompany)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/company/jobs/3/candidates?top=50", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastJob)
	require.Equal(t, 50, svc.lastLimit)
	var data dto.CompanyCandidatesResponse
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.Len(t, data.Candidates, 1)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/company/jobs/3/candidates?top=-1", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, payload = doRequest(t, app, http.MethodPost, "/api/v1/company/jobs/3/shortlist", `{"student_ids":[8,9]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "shortlist limit reached", payload.Message)
	require.Equal(t, []uint{8, 9}, svc.lastIDs)

	svc.err = service.ErrCompanyJobNotFound
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/company/jobs/4/shortlist", `{"student_ids":[8]}`)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCompanyHandlerInvites(t *testing.T) {
	svc := &stubCompanyService{
		invites: []dto.CompanyInviteResponse{{JobID: 3, CompanyName: "Acme", Status: "pending"}},
		invite:  dto.CompanyInviteResponse{JobID: 3, Status: "applied"},
	}
	app := newCompanyApp(svc, middleware.RoleCompany)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/invites", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(8), svc.lastCaller)
	var items []dto.CompanyInviteResponse
	require.NoError(t, json.Unmarshal(payload.Data, &items))
	require.Len(t, items, 1)

	resp, payload = doRequest(t, app, http.MethodPost, "/api/v1/invites/3/respond", `{"decision":"apply"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "invitation applied", payload.Message)
	require.Equal(t, "apply", svc.lastAnswer)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/invites/abc/respond", `{"decision":"apply"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for _, tc := range []struct {
		err    error
		status int
	}{
		{service.ErrInviteNotFound, fiber.StatusNotFound},
		{service.ErrInviteAnswered, fiber.StatusConflict},
		{service.ErrInviteExpired, fiber.StatusConflict},
	} {
		svc.err = tc.err
		resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/invites/3/respond", `{"decision":"decline"}`)
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}
