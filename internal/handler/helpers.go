package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/middleware"
	"github.com/advait122/ROADmap/internal/service"
	"github.com/advait122/ROADmap/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func extractUserID(c *fiber.Ctx) (uint, error) {
	value := c.Locals(middleware.LocalStudentID)
	if value == nil {
		return 0, fmt.Errorf("missing user context")
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return v, nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid user context")
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("invalid user context")
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// statusForError maps service errors onto HTTP statuses. Unknown errors are 500.
func statusForError(err error) int {
	switch {
	case isValidationError(err):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrNoActiveGoal),
		errors.Is(err, service.ErrNoActivePlan),
		errors.Is(err, service.ErrSkillNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrCompanyJobNotFound),
		errors.Is(err, service.ErrInviteNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrSkillLocked),
		errors.Is(err, service.ErrAllSkillsCompleted),
		errors.Is(err, service.ErrSkillNotReady),
		errors.Is(err, service.ErrAssessmentExpired),
		errors.Is(err, service.ErrInviteAnswered),
		errors.Is(err, service.ErrInviteExpired):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNoKnownSkills),
		errors.Is(err, service.ErrIncompleteAnswers),
		errors.Is(err, service.ErrNoRequiredSkills),
		errors.Is(err, service.ErrDeadlineInPast):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the envelope for a service error and logs server faults.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	status := statusForError(err)
	switch status {
	case fiber.StatusUnprocessableEntity:
		if details := validationDetails(err); details != nil {
			return utils.Fail(c, status, "validation failed", details)
		}
		return utils.SendError(c, status, err.Error())
	case fiber.StatusInternalServerError:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, status, fallback)
	default:
		return utils.SendError(c, status, err.Error())
	}
}
