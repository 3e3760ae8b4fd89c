package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/matching"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/observability"
	"github.com/advait122/ROADmap/internal/roadmap"
	"github.com/advait122/ROADmap/internal/skills"
)

// MatchRefresher recomputes a student's opportunity matches.
type MatchRefresher interface {
	Refresh(ctx context.Context, studentID uint) (dto.MatchRefreshResponse, error)
}

// MatchingService classifies the opportunity catalog against a student's skills.
type MatchingService interface {
	MatchRefresher
	Buckets(ctx context.Context, studentID uint) (dto.BucketedMatchesResponse, error)
	Forecast(ctx context.Context, studentID uint, days int) (dto.ForecastResponse, error)
	CreateOpportunity(ctx context.Context, payload dto.OpportunityCreateRequest) (dto.OpportunityResponse, error)
}

// MatchingConfig tunes catalog size, output size and caching.
type MatchingConfig struct {
	CatalogLimit int
	MatchLimit   int
	CacheTTL     time.Duration
}

type matchingService struct {
	repos         Repositories
	notifications NotificationPublisher
	cache         *redis.Client
	validator     *validator.Validate
	config        MatchingConfig
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewMatchingService constructs the matching service. The redis client is optional.
func NewMatchingService(repos Repositories, notifications NotificationPublisher, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger, cfg MatchingConfig) MatchingService {
	if cfg.CatalogLimit <= 0 {
		cfg.CatalogLimit = 250
	}
	if cfg.MatchLimit <= 0 || cfg.MatchLimit > matching.DefaultLimit {
		cfg.MatchLimit = matching.DefaultLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &matchingService{
		repos:         repos,
		notifications: notifications,
		cache:         cache,
		validator:     validate,
		config:        cfg,
		logger:        logger.With().Str("component", "matching_service").Logger(),
		tracer:        otel.Tracer("github.com/advait122/ROADmap/internal/service/matching"),
		now:           time.Now,
	}
}

func (s *matchingService) Refresh(ctx context.Context, studentID uint) (dto.MatchRefreshResponse, error) {
	start := time.Now()
	defer func() {
		observability.MatchRefreshDuration().Observe(time.Since(start).Seconds())
	}()

	spanCtx, span := s.tracer.Start(ctx, "matches.refresh",
		trace.WithAttributes(attribute.Int64("student.id", int64(studentID))))
	defer span.End()

	if _, err := loadStudent(spanCtx, s.repos.Students, studentID); err != nil {
		return dto.MatchRefreshResponse{}, err
	}
	goal, err := loadActiveGoal(spanCtx, s.repos.Goals, studentID)
	if err != nil {
		if errors.Is(err, ErrNoActiveGoal) {
			return dto.MatchRefreshResponse{Matches: dto.NewBucketedMatchesResponse(nil)}, nil
		}
		return dto.MatchRefreshResponse{}, err
	}

	known, err := s.repos.Students.ListSkills(spanCtx, studentID)
	if err != nil {
		return dto.MatchRefreshResponse{}, fmt.Errorf("list student skills: %w", err)
	}
	goalSkills, err := s.repos.Goals.ListSkills(spanCtx, goal.ID)
	if err != nil {
		return dto.MatchRefreshResponse{}, fmt.Errorf("list goal skills: %w", err)
	}

	profile := matching.Profile{
		CurrentKeys:   currentSkillKeys(known, goalSkills),
		TargetCompany: goal.TargetCompany,
	}
	for _, skill := range models.PendingGoalSkills(goalSkills, matching.NextSkillCount) {
		profile.NextKeys = append(profile.NextKeys, skill.NormalizedSkill)
		profile.NextNames = append(profile.NextNames, skill.SkillName)
	}

	catalog, err := s.repos.Opportunities.ListRecent(spanCtx, s.config.CatalogLimit)
	if err != nil {
		span.RecordError(err)
		return dto.MatchRefreshResponse{}, fmt.Errorf("list opportunities: %w", err)
	}

	candidates := make([]matching.Candidate, 0, len(catalog))
	for _, opportunity := range catalog {
		candidates = append(candidates, matching.Candidate{
			OpportunityID:  opportunity.ID,
			Title:          opportunity.Title,
			Company:        opportunity.Company,
			Type:           opportunity.Type,
			URL:            opportunity.URL,
			Deadline:       opportunity.Deadline,
			RequiredSkills: opportunity.RequiredSkills(),
		})
	}
	matches := matching.Classify(profile, candidates, s.config.MatchLimit)

	previous, err := s.repos.Matches.LoadExisting(spanCtx, goal.ID)
	if err != nil {
		return dto.MatchRefreshResponse{}, fmt.Errorf("load existing matches: %w", err)
	}
	events := matching.DetectTransitions(matches, previous, s.now())

	created := 0
	for _, event := range events {
		payload := dto.NotificationCreateRequest{
			StudentID:            studentID,
			GoalID:               uintPtr(goal.ID),
			Type:                 event.Type,
			Title:                event.Title,
			Body:                 event.Body,
			RelatedOpportunityID: uintPtr(event.OpportunityID),
		}
		if _, err := s.notifications.Publish(spanCtx, payload); err != nil {
			span.RecordError(err)
			return dto.MatchRefreshResponse{}, fmt.Errorf("publish %s notification: %w", event.Type, err)
		}
		created++
	}

	evaluatedAt := s.now().UTC()
	records := make([]models.OpportunityMatch, 0, len(matches))
	for _, match := range matches {
		records = append(records, models.OpportunityMatch{
			OpportunityID:       match.OpportunityID,
			Bucket:              match.Bucket,
			MatchScore:          match.Score,
			RequiredSkillsCount: match.RequiredCount,
			MatchedSkillsCount:  match.MatchedCount,
			MissingSkills:       match.MissingSkills,
			NextSkills:          match.NextSkills,
			EligibleNow:         match.EligibleNow,
			LastEvaluatedAt:     evaluatedAt,
		})
		observability.MatchBuckets().WithLabelValues(match.Bucket).Inc()
	}
	if err := s.repos.Matches.ReplaceAll(spanCtx, goal.ID, records); err != nil {
		span.RecordError(err)
		return dto.MatchRefreshResponse{}, fmt.Errorf("replace matches: %w", err)
	}

	buckets := dto.NewBucketedMatchesResponse(matches)
	s.writeCache(spanCtx, goal.ID, buckets)

	s.logger.Debug().
		Uint("student_id", studentID).
		Uint("goal_id", goal.ID).
		Int("evaluated", len(candidates)).
		Int("matches", len(matches)).
		Int("notifications", created).
		Msg("opportunity matches refreshed")

	return dto.MatchRefreshResponse{
		Matches:              buckets,
		Evaluated:            len(candidates),
		NotificationsCreated: created,
	}, nil
}

func (s *matchingService) Buckets(ctx context.Context, studentID uint) (dto.BucketedMatchesResponse, error) {
	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return dto.BucketedMatchesResponse{}, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		if errors.Is(err, ErrNoActiveGoal) {
			return dto.NewBucketedMatchesResponse(nil), nil
		}
		return dto.BucketedMatchesResponse{}, err
	}

	if cached, ok := s.fetchCache(ctx, goal.ID); ok {
		observability.MatchCacheRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	matches, err := s.cachedMatches(ctx, goal.ID)
	if err != nil {
		observability.MatchCacheRequests().WithLabelValues("error").Inc()
		return dto.BucketedMatchesResponse{}, err
	}

	buckets := dto.NewBucketedMatchesResponse(matches)
	s.writeCache(ctx, goal.ID, buckets)
	observability.MatchCacheRequests().WithLabelValues("miss").Inc()

	return buckets, nil
}

func (s *matchingService) Forecast(ctx context.Context, studentID uint, days int) (dto.ForecastResponse, error) {
	if days < 0 {
		days = matching.DefaultHorizonDays
	}
	response := dto.ForecastResponse{HorizonDays: days, Items: []dto.ForecastItemResponse{}}

	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return dto.ForecastResponse{}, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		if errors.Is(err, ErrNoActiveGoal) {
			return response, nil
		}
		return dto.ForecastResponse{}, err
	}

	known, err := s.repos.Students.ListSkills(ctx, studentID)
	if err != nil {
		return dto.ForecastResponse{}, fmt.Errorf("list student skills: %w", err)
	}
	goalSkills, err := s.repos.Goals.ListSkills(ctx, goal.ID)
	if err != nil {
		return dto.ForecastResponse{}, fmt.Errorf("list goal skills: %w", err)
	}

	var tasks []models.RoadmapTask
	plan, err := loadActivePlan(ctx, s.repos.Plans, goal.ID)
	switch {
	case err == nil:
		tasks, err = s.repos.Tasks.ListByPlan(ctx, plan.ID, nil, nil)
		if err != nil {
			return dto.ForecastResponse{}, fmt.Errorf("list plan tasks: %w", err)
		}
	case !errors.Is(err, ErrNoActivePlan):
		return dto.ForecastResponse{}, err
	}

	cached, err := s.cachedMatches(ctx, goal.ID)
	if err != nil {
		return dto.ForecastResponse{}, err
	}

	today := roadmap.Day(s.now())
	unlocks := matching.ProjectUnlocks(skillProgress(goalSkills, tasks), today, days)
	labels := make(map[string]string, len(goalSkills))
	for _, skill := range goalSkills {
		labels[skill.NormalizedSkill] = skill.SkillName
	}

	items := matching.Forecast(cached, currentSkillKeys(known, goalSkills), unlocks, labels, today, matching.ForecastLimit)
	response.Items = dto.NewForecastItemResponseSlice(items)
	return response, nil
}

func (s *matchingService) CreateOpportunity(ctx context.Context, payload dto.OpportunityCreateRequest) (dto.OpportunityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OpportunityResponse{}, err
	}

	names := skills.Deduplicate(payload.Skills)
	encoded, err := json.Marshal(names)
	if err != nil {
		return dto.OpportunityResponse{}, err
	}

	opportunity := models.Opportunity{
		Title:   strings.TrimSpace(payload.Title),
		Company: strings.TrimSpace(payload.Company),
		Type:    strings.ToLower(strings.TrimSpace(payload.Type)),
		Skills:  string(encoded),
		URL:     strings.TrimSpace(payload.URL),
		Source:  strings.TrimSpace(payload.Source),
	}
	if opportunity.Type == "" {
		opportunity.Type = "job"
	}
	if opportunity.Source == "" {
		opportunity.Source = "manual"
	}
	if payload.Deadline != "" {
		deadline, err := time.Parse(dto.DateLayout, payload.Deadline)
		if err != nil {
			return dto.OpportunityResponse{}, err
		}
		opportunity.Deadline = &deadline
	}

	if err := s.repos.Opportunities.Create(ctx, &opportunity); err != nil {
		return dto.OpportunityResponse{}, fmt.Errorf("create opportunity: %w", err)
	}

	s.logger.Info().
		Uint("opportunity_id", opportunity.ID).
		Str("company", opportunity.Company).
		Msg("opportunity ingested")

	return dto.NewOpportunityResponse(opportunity), nil
}

func (s *matchingService) cachedMatches(ctx context.Context, goalID uint) ([]matching.Match, error) {
	rows, err := s.repos.Matches.ListWithOpportunities(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("list cached matches: %w", err)
	}

	matches := make([]matching.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, matching.Match{
			OpportunityID: row.OpportunityID,
			Title:         row.Opportunity.Title,
			Company:       row.Opportunity.Company,
			Type:          row.Opportunity.Type,
			URL:           row.Opportunity.URL,
			Deadline:      row.Opportunity.Deadline,
			Bucket:        row.Bucket,
			Score:         row.MatchScore,
			RequiredCount: row.RequiredSkillsCount,
			MatchedCount:  row.MatchedSkillsCount,
			MissingSkills: row.MissingSkills,
			NextSkills:    row.NextSkills,
			EligibleNow:   row.EligibleNow,
		})
	}
	return matches, nil
}

func (s *matchingService) cacheKey(goalID uint) string {
	return fmt.Sprintf("roadmap:v1:matches:goal:%d", goalID)
}

func (s *matchingService) fetchCache(ctx context.Context, goalID uint) (dto.BucketedMatchesResponse, bool) {
	if s.cache == nil {
		return dto.BucketedMatchesResponse{}, false
	}
	payload, err := s.cache.Get(ctx, s.cacheKey(goalID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read match cache")
		}
		return dto.BucketedMatchesResponse{}, false
	}

	var result dto.BucketedMatchesResponse
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode match cache")
		return dto.BucketedMatchesResponse{}, false
	}
	return result, true
}

func (s *matchingService) writeCache(ctx context.Context, goalID uint, result dto.BucketedMatchesResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode match cache")
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(goalID), payload, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store match cache")
	}
}

// skillProgress collects the scheduled work per goal skill for forecasting.
func skillProgress(goalSkills []models.GoalSkill, tasks []models.RoadmapTask) []matching.SkillProgress {
	byID := make(map[uint]*matching.SkillProgress, len(goalSkills))
	progress := make([]matching.SkillProgress, len(goalSkills))
	for i, skill := range goalSkills {
		progress[i] = matching.SkillProgress{Key: skill.NormalizedSkill, Completed: skill.IsCompleted()}
		byID[skill.ID] = &progress[i]
	}

	for _, task := range tasks {
		if task.GoalSkillID == nil {
			continue
		}
		entry, ok := byID[*task.GoalSkillID]
		if !ok {
			continue
		}
		entry.TaskCount++
		if !task.IsCompleted {
			entry.IncompleteDates = append(entry.IncompleteDates, task.TaskDate)
		}
	}
	return progress
}
