package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/service"
	"github.com/advait122/ROADmap/internal/utils"
)

// RoadmapHandler exposes goal onboarding, task tracking and skill tests.
type RoadmapHandler struct {
	roadmap     service.RoadmapService
	assessments service.AssessmentService
	logger      zerolog.Logger
}

// NewRoadmapHandler constructs a roadmap handler.
func NewRoadmapHandler(roadmap service.RoadmapService, assessments service.AssessmentService, logger zerolog.Logger) *RoadmapHandler {
	return &RoadmapHandler{
		roadmap:     roadmap,
		assessments: assessments,
		logger:      logger.With().Str("component", "roadmap_handler").Logger(),
	}
}

// Register wires roadmap routes.
func (h *RoadmapHandler) Register(router fiber.Router) {
	router.Post("/goal", h.createGoal)
	router.Post("/replan", h.replan)
	router.Get("/tasks", h.listTasks)
	router.Patch("/tasks/:id", h.setTaskCompletion)
	router.Post("/skills/:id/assessment", h.generateAssessment)
	router.Post("/assessments/:id/submit", h.submitAssessment)
}

func (h *RoadmapHandler) createGoal(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.GoalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.roadmap.CreateGoal(requestContext(c), studentID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create goal")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "roadmap created", result)
}

func (h *RoadmapHandler) replan(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	result, err := h.roadmap.Replan(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to replan roadmap")
	}

	return utils.SendSuccess(c, "roadmap replan evaluated", result)
}

func (h *RoadmapHandler) listTasks(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	from, err := parseQueryDate(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from date")
	}
	to, err := parseQueryDate(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to date")
	}
	if from != nil && to != nil && to.Before(*from) {
		return utils.SendError(c, fiber.StatusBadRequest, "to must not be before from")
	}

	tasks, err := h.roadmap.ListTasks(requestContext(c), studentID, from, to)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list tasks")
	}

	return utils.OK(c, tasks, "tasks retrieved", fiber.Map{"count": len(tasks)})
}

func (h *RoadmapHandler) setTaskCompletion(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var payload dto.TaskCompletionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}
	if payload.Completed == nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", map[string]string{"Completed": "required"})
	}

	result, err := h.roadmap.SetTaskCompletion(requestContext(c), studentID, taskID, *payload.Completed)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update task")
	}

	return utils.SendSuccess(c, "task updated", result)
}

func (h *RoadmapHandler) generateAssessment(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	skillID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid skill id")
	}

	result, err := h.assessments.Generate(requestContext(c), studentID, skillID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to generate skill test")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "skill test ready", result)
}

func (h *RoadmapHandler) submitAssessment(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	assessmentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	var payload dto.AssessmentSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.assessments.Submit(requestContext(c), studentID, assessmentID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit skill test")
	}

	message := "skill test failed"
	if result.Passed {
		message = "skill test passed"
	}
	return utils.SendSuccess(c, message, result)
}
