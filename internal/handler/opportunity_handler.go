package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/matching"
	"github.com/advait122/ROADmap/internal/service"
	"github.com/advait122/ROADmap/internal/utils"
)

// OpportunityHandler serves bucketed matches, forecasts and catalog ingestion.
type OpportunityHandler struct {
	service      service.MatchingService
	forecastDays int
	logger       zerolog.Logger
}

// NewOpportunityHandler constructs an opportunity handler. A negative
// forecastDays falls back to the matching default.
func NewOpportunityHandler(service service.MatchingService, forecastDays int, logger zerolog.Logger) *OpportunityHandler {
	if forecastDays < 0 {
		forecastDays = matching.DefaultHorizonDays
	}
	return &OpportunityHandler{
		service:      service,
		forecastDays: forecastDays,
		logger:       logger.With().Str("component", "opportunity_handler").Logger(),
	}
}

// Register wires the student-facing routes. refreshGuards run before the
// refresh endpoint, typically a rate limiter.
func (h *OpportunityHandler) Register(router fiber.Router, refreshGuards ...fiber.Handler) {
	router.Get("/matches", h.matches)
	refresh := append(append([]fiber.Handler{}, refreshGuards...), h.refresh)
	router.Post("/matches/refresh", refresh...)
	router.Get("/forecast", h.forecast)
}

// RegisterAdmin wires catalog ingestion.
func (h *OpportunityHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/opportunities", h.create)
}

func (h *OpportunityHandler) matches(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	buckets, err := h.service.Buckets(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load matches")
	}

	return utils.SendSuccess(c, "matches retrieved", buckets)
}

func (h *OpportunityHandler) refresh(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	result, err := h.service.Refresh(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to refresh matches")
	}

	return utils.SendSuccess(c, "matches refreshed", result)
}

func (h *OpportunityHandler) forecast(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	days := h.forecastDays
	if c.Query("days") != "" {
		parsed, err := parseQueryInt(c, "days")
		if err != nil || parsed < 0 || parsed > 365 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
		}
		days = parsed
	}

	result, err := h.service.Forecast(requestContext(c), studentID, days)
	if err != nil {
		return respondError(c, h.logger, err, "failed to forecast opportunities")
	}

	return utils.SendSuccess(c, "forecast retrieved", result)
}

func (h *OpportunityHandler) create(c *fiber.Ctx) error {
	var payload dto.OpportunityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.service.CreateOpportunity(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create opportunity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "opportunity created", result)
}
