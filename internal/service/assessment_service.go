package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/assessment"
	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/observability"
	"github.com/advait122/ROADmap/internal/roadmap"
	"github.com/advait122/ROADmap/internal/skills"
)

// AssessmentService issues skill tests and grades submitted attempts.
type AssessmentService interface {
	Generate(ctx context.Context, studentID, goalSkillID uint) (dto.AssessmentResponse, error)
	Submit(ctx context.Context, studentID, assessmentID uint, payload dto.AssessmentSubmitRequest) (dto.AssessmentResultResponse, error)
}

type assessmentService struct {
	repos         Repositories
	notifications NotificationPublisher
	matches       MatchRefresher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(repos Repositories, notifications NotificationPublisher, matches MatchRefresher, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		repos:         repos,
		notifications: notifications,
		matches:       matches,
		validator:     validate,
		logger:        logger.With().Str("component", "assessment_service").Logger(),
		tracer:        otel.Tracer("github.com/advait122/ROADmap/internal/service/assessment"),
		now:           time.Now,
	}
}

// Generate returns the open attempt for the active skill, creating a new one
// when none is open or the previous one ran out of time.
func (s *assessmentService) Generate(ctx context.Context, studentID, goalSkillID uint) (dto.AssessmentResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "assessments.generate", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("goal_skill.id", int64(goalSkillID)),
	))
	defer span.End()

	if _, err := loadStudent(spanCtx, s.repos.Students, studentID); err != nil {
		return dto.AssessmentResponse{}, err
	}
	goal, err := loadActiveGoal(spanCtx, s.repos.Goals, studentID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	plan, err := loadActivePlan(spanCtx, s.repos.Plans, goal.ID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	skill, err := s.loadSkill(spanCtx, goal.ID, goalSkillID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	goalSkills, err := s.repos.Goals.ListSkills(spanCtx, goal.ID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("list goal skills: %w", err)
	}
	active, ok := models.ActiveGoalSkill(goalSkills)
	if !ok {
		return dto.AssessmentResponse{}, ErrAllSkillsCompleted
	}
	if active.ID != skill.ID {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: complete and pass %s before unlocking this skill test", ErrSkillLocked, active.SkillName)
	}

	skillTasks, err := s.repos.Tasks.ListBySkill(spanCtx, plan.ID, skill.ID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("list skill tasks: %w", err)
	}
	if !allCompleted(skillTasks) {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: finish every %s task first", ErrSkillNotReady, skill.SkillName)
	}

	now := s.now().UTC()
	latest, err := s.repos.Assessments.Latest(spanCtx, skill.ID)
	switch {
	case err == nil:
		if !latest.IsSubmitted() && !assessment.Expired(latest.CreatedAt, now) {
			return dto.NewAssessmentResponse(latest, skill, assessment.Deadline(latest.CreatedAt)), nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.AssessmentResponse{}, fmt.Errorf("load latest attempt: %w", err)
	}

	attempts, err := s.repos.Assessments.CountAttempts(spanCtx, skill.ID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("count attempts: %w", err)
	}
	questions, key := assessment.Build(skill.SkillName, int(attempts)+1)
	attempt := models.SkillAssessment{
		GoalID:      goal.ID,
		GoalSkillID: skill.ID,
		AttemptNo:   int(attempts) + 1,
		Questions:   questions,
		AnswerKey:   key,
		CreatedAt:   now,
	}
	if err := s.repos.Assessments.Create(spanCtx, &attempt); err != nil {
		span.RecordError(err)
		return dto.AssessmentResponse{}, fmt.Errorf("store assessment: %w", err)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("goal_skill_id", skill.ID).
		Int("attempt", attempt.AttemptNo).
		Msg("skill test generated")

	return dto.NewAssessmentResponse(attempt, skill, assessment.Deadline(attempt.CreatedAt)), nil
}

// Submit grades an open attempt against its stored answer key. Submitting an
// already graded attempt returns the stored result without side effects.
func (s *assessmentService) Submit(ctx context.Context, studentID, assessmentID uint, payload dto.AssessmentSubmitRequest) (dto.AssessmentResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assessments.submit", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("assessment.id", int64(assessmentID)),
	))
	defer span.End()

	if _, err := loadStudent(spanCtx, s.repos.Students, studentID); err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	goal, err := loadActiveGoal(spanCtx, s.repos.Goals, studentID)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	plan, err := loadActivePlan(spanCtx, s.repos.Plans, goal.ID)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	attempt, err := s.repos.Assessments.Get(spanCtx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResultResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResultResponse{}, fmt.Errorf("load assessment: %w", err)
	}
	if attempt.GoalID != goal.ID {
		return dto.AssessmentResultResponse{}, ErrAssessmentNotFound
	}

	skill, err := s.loadSkill(spanCtx, goal.ID, attempt.GoalSkillID)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	if attempt.IsSubmitted() {
		return dto.NewAssessmentResultResponse(attempt, skill), nil
	}
	if skill.Status == models.GoalSkillCompleted {
		return dto.AssessmentResultResponse{}, fmt.Errorf("%w: %s is already completed", ErrSkillLocked, skill.SkillName)
	}

	now := s.now().UTC()
	if assessment.Expired(attempt.CreatedAt, now) {
		return dto.AssessmentResultResponse{}, ErrAssessmentExpired
	}

	result, err := assessment.Grade(attempt.Questions, attempt.AnswerKey, payload.Answers)
	if err != nil {
		if errors.Is(err, assessment.ErrAnswerCount) {
			return dto.AssessmentResultResponse{}, fmt.Errorf("%w: %v", ErrIncompleteAnswers, err)
		}
		return dto.AssessmentResultResponse{}, err
	}

	attempt.StudentAnswers = payload.Answers
	attempt.ScorePercent = result.ScorePercent
	attempt.Passed = result.Passed
	attempt.WeakTopics = result.Weak
	attempt.StrongTopics = result.Strong
	attempt.FeedbackText = assessment.Feedback(result.ScorePercent, result.Passed, result.Weak, result.Strong)
	attempt.SubmittedAt = &now

	stored, err := s.repos.Assessments.MarkSubmitted(spanCtx, &attempt)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResultResponse{}, fmt.Errorf("store assessment result: %w", err)
	}
	if !stored {
		graded, err := s.repos.Assessments.Get(spanCtx, attempt.ID)
		if err != nil {
			return dto.AssessmentResultResponse{}, fmt.Errorf("reload assessment: %w", err)
		}
		return dto.NewAssessmentResultResponse(graded, skill), nil
	}

	added := 0
	if result.Passed {
		err = s.applyPass(spanCtx, studentID, goal.ID, &skill, result.ScorePercent, now)
	} else {
		added, err = s.applyFail(spanCtx, studentID, goal.ID, plan.ID, &skill, result.ScorePercent, result.Weak, now)
	}
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResultResponse{}, err
	}

	outcome := "failed"
	if result.Passed {
		outcome = "passed"
	}
	observability.AssessmentResults().WithLabelValues(outcome).Inc()

	if s.matches != nil {
		if _, err := s.matches.Refresh(spanCtx, studentID); err != nil {
			return dto.AssessmentResultResponse{}, err
		}
	}

	response := dto.NewAssessmentResultResponse(attempt, skill)
	response.RevisionTasksCreated = added
	if result.Passed {
		goalSkills, err := s.repos.Goals.ListSkills(spanCtx, goal.ID)
		if err != nil {
			return dto.AssessmentResultResponse{}, fmt.Errorf("list goal skills: %w", err)
		}
		if next, ok := models.ActiveGoalSkill(goalSkills); ok {
			nextResponse := dto.NewGoalSkillResponse(next)
			nextResponse.IsActive = true
			response.NextSkill = &nextResponse
		}
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("goal_skill_id", skill.ID).
		Int("attempt", attempt.AttemptNo).
		Float64("score", result.ScorePercent).
		Bool("passed", result.Passed).
		Msg("skill test graded")

	return response, nil
}

func (s *assessmentService) loadSkill(ctx context.Context, goalID, goalSkillID uint) (models.GoalSkill, error) {
	skill, err := s.repos.Goals.GetSkill(ctx, goalID, goalSkillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GoalSkill{}, ErrSkillNotFound
		}
		return models.GoalSkill{}, fmt.Errorf("load goal skill: %w", err)
	}
	return skill, nil
}

func (s *assessmentService) applyPass(ctx context.Context, studentID, goalID uint, skill *models.GoalSkill, score float64, now time.Time) error {
	if err := s.repos.Goals.SetSkillStatus(ctx, skill.ID, models.GoalSkillCompleted, &now); err != nil {
		return fmt.Errorf("complete skill: %w", err)
	}
	skill.Status = models.GoalSkillCompleted
	skill.CompletedAt = &now

	mastered := models.StudentSkill{
		StudentID:       studentID,
		SkillName:       skill.SkillName,
		NormalizedSkill: skills.Normalize(skill.SkillName),
		SkillSource:     models.SkillSourceRoadmapMastered,
	}
	if err := s.repos.Students.AddSkill(ctx, &mastered); err != nil {
		return fmt.Errorf("add mastered skill: %w", err)
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		StudentID: studentID,
		GoalID:    uintPtr(goalID),
		Type:      models.NotificationSkillTestPassed,
		Title:     "Skill Test Passed",
		Body:      fmt.Sprintf("You passed %s (%.1f%%). Skill marked as completed.", skill.SkillName, score),
	})
	if err != nil {
		return fmt.Errorf("publish pass notification: %w", err)
	}
	return nil
}

func (s *assessmentService) applyFail(ctx context.Context, studentID, goalID, planID uint, skill *models.GoalSkill, score float64, weak []string, now time.Time) (int, error) {
	if err := s.repos.Goals.SetSkillStatus(ctx, skill.ID, models.GoalSkillInProgress, nil); err != nil {
		return 0, fmt.Errorf("reset skill: %w", err)
	}
	skill.Status = models.GoalSkillInProgress
	skill.CompletedAt = nil

	incomplete, err := s.repos.Tasks.ListIncomplete(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("list incomplete tasks: %w", err)
	}
	existing := make(map[string]struct{}, len(incomplete))
	for _, task := range incomplete {
		existing[task.Title] = struct{}{}
	}

	revisions := toTaskModels(roadmap.RevisionTasks(skill.ID, skill.SkillName, weak, existing, now))
	if err := s.repos.Tasks.Append(ctx, planID, revisions); err != nil {
		return 0, fmt.Errorf("append revision tasks: %w", err)
	}

	weakText := "General"
	if len(weak) > 0 {
		weakText = strings.Join(weak, ", ")
	}
	_, err = s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		StudentID: studentID,
		GoalID:    uintPtr(goalID),
		Type:      models.NotificationSkillTestFailed,
		Title:     "Skill Test Failed",
		Body:      fmt.Sprintf("You scored %.1f%%. Weak topics: %s. %d revision task(s) added.", score, weakText, len(revisions)),
	})
	if err != nil {
		return 0, fmt.Errorf("publish fail notification: %w", err)
	}
	return len(revisions), nil
}
