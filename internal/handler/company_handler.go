package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/service"
	"github.com/advait122/ROADmap/internal/utils"
)

// CompanyHandler serves company job posting and the student invitation inbox.
type CompanyHandler struct {
	service service.CompanyService
	logger  zerolog.Logger
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(service service.CompanyService, logger zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.With().Str("component", "company_handler").Logger(),
	}
}

// RegisterCompany wires the routes used by company accounts.
func (h *CompanyHandler) RegisterCompany(router fiber.Router) {
	router.Post("/jobs", h.createJob)
	router.Get("/jobs", h.listJobs)
	router.Get("/jobs/:id/candidates", h.candidates)
	router.Post("/jobs/:id/shortlist", h.shortlist)
}

// RegisterStudent wires the invitation routes used by students.
func (h *CompanyHandler) RegisterStudent(router fiber.Router) {
	router.Get("/", h.invites)
	router.Post("/:id/respond", h.respond)
}

func (h *CompanyHandler) createJob(c *fiber.Ctx) error {
	companyID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.CompanyJobCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	job, err := h.service.CreateJob(requestContext(c), companyID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to post job")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "job posted", job)
}

func (h *CompanyHandler) listJobs(c *fiber.Ctx) error {
	companyID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	jobs, err := h.service.ListJobs(requestContext(c), companyID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list jobs")
	}

	return utils.SendSuccess(c, "jobs retrieved", jobs)
}

func (h *CompanyHandler) candidates(c *fiber.Ctx) error {
	companyID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "top")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid top")
	}

	result, err := h.service.Candidates(requestContext(c), companyID, jobID, limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load candidates")
	}

	return utils.SendSuccess(c, "candidates retrieved", result)
}

func (h *CompanyHandler) shortlist(c *fiber.Ctx) error {
	companyID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ShortlistRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.service.Shortlist(requestContext(c), companyID, jobID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to shortlist students")
	}

	message := "students shortlisted"
	if result.Added == 0 && result.LimitReached {
		message = "shortlist limit reached"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *CompanyHandler) invites(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	items, err := h.service.Invites(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load invitations")
	}

	return utils.SendSuccess(c, "invitations retrieved", items)
}

func (h *CompanyHandler) respond(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InviteDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	invite, err := h.service.RespondToInvite(requestContext(c), studentID, jobID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to respond to invitation")
	}

	return utils.SendSuccess(c, "invitation "+invite.Status, invite)
}
