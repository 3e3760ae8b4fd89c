package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/observability"
	"github.com/advait122/ROADmap/internal/roadmap"
	"github.com/advait122/ROADmap/internal/skills"
)

// Sources recorded for a goal's required skills.
const (
	RequirementSourceExplicit = "explicit"
	RequirementSourceCompany  = "company_opportunities"
	RequirementSourceBaseline = "baseline"
)

const (
	companySkillSampleSize = 200
	companySkillTopN       = 10
	defaultRoleFamily      = "Software Engineering"
)

var baselineSkills = []string{"DSA", "OOPS", "SQL", "Python", "C++", "Java"}

// RoadmapService builds, adjusts and tracks a student's roadmap.
type RoadmapService interface {
	CreateGoal(ctx context.Context, studentID uint, payload dto.GoalCreateRequest) (dto.GoalCreateResponse, error)
	Replan(ctx context.Context, studentID uint) (dto.ReplanResponse, error)
	ListTasks(ctx context.Context, studentID uint, from, to *time.Time) ([]dto.TaskResponse, error)
	SetTaskCompletion(ctx context.Context, studentID, taskID uint, completed bool) (dto.TaskCompletionResponse, error)
}

type roadmapService struct {
	repos         Repositories
	notifications NotificationPublisher
	matches       MatchRefresher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// GoalRequirements is stored on the goal to explain where its skills came from.
type GoalRequirements struct {
	Source                 string   `json:"requirements_source"`
	RequiredSkills         []string `json:"required_skills"`
	SourceOpportunityCount int      `json:"source_opportunity_count"`
}

// NewRoadmapService constructs the roadmap service.
func NewRoadmapService(repos Repositories, notifications NotificationPublisher, matches MatchRefresher, validate *validator.Validate, logger zerolog.Logger) RoadmapService {
	return &roadmapService{
		repos:         repos,
		notifications: notifications,
		matches:       matches,
		validator:     validate,
		logger:        logger.With().Str("component", "roadmap_service").Logger(),
		tracer:        otel.Tracer("github.com/advait122/ROADmap/internal/service/roadmap"),
		now:           time.Now,
	}
}

func (s *roadmapService) CreateGoal(ctx context.Context, studentID uint, payload dto.GoalCreateRequest) (dto.GoalCreateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalCreateResponse{}, err
	}

	knownNames := skills.Deduplicate(append(append([]string{}, payload.KnownSkills...), skills.ParseList(payload.CustomSkills)...))
	if len(knownNames) == 0 {
		return dto.GoalCreateResponse{}, ErrNoKnownSkills
	}

	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalCreateResponse{}, fmt.Errorf("load student: %w", err)
		}
		student = models.Student{ID: studentID}
	}
	student.Name = strings.TrimSpace(payload.Name)
	student.Branch = payload.Branch
	student.CurrentYear = payload.CurrentYear
	student.WeeklyStudyHours = payload.WeeklyStudyHours
	if student.WeeklyStudyHours == 0 {
		student.WeeklyStudyHours = models.DefaultWeeklyStudyHours
	}
	if err := s.repos.Students.Save(ctx, &student); err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("save student: %w", err)
	}

	predefined := make(map[string]struct{}, len(skills.Predefined))
	for _, key := range skills.Keys(skills.Predefined) {
		predefined[key] = struct{}{}
	}
	rows := make([]models.StudentSkill, 0, len(knownNames))
	for _, name := range knownNames {
		key := skills.Normalize(name)
		source := models.SkillSourceCustom
		if _, ok := predefined[key]; ok {
			source = models.SkillSourcePredefined
		}
		rows = append(rows, models.StudentSkill{SkillName: name, NormalizedSkill: key, SkillSource: source})
	}
	if err := s.repos.Students.ReplaceSkills(ctx, student.ID, rows); err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("replace student skills: %w", err)
	}
	known, err := s.repos.Students.ListSkills(ctx, student.ID)
	if err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("list student skills: %w", err)
	}

	company := strings.TrimSpace(payload.TargetCompany)
	requirements, err := s.requiredSkills(ctx, payload.GoalText, company, payload.RequiredSkills)
	if err != nil {
		return dto.GoalCreateResponse{}, err
	}

	knownKeys := make(map[string]struct{}, len(known))
	for _, skill := range known {
		knownKeys[skill.NormalizedSkill] = struct{}{}
	}
	goalSkills := make([]models.GoalSkill, 0, len(requirements.RequiredSkills))
	for idx, name := range requirements.RequiredSkills {
		key := skills.Normalize(name)
		if _, ok := knownKeys[key]; ok {
			continue
		}
		goalSkills = append(goalSkills, models.GoalSkill{
			SkillName:            name,
			NormalizedSkill:      key,
			Priority:             idx + 1,
			EstimatedEffortHours: skills.EstimateHours(key),
			SkillSource:          models.SkillSourceGoalRequirement,
			Status:               models.GoalSkillPending,
		})
	}

	encoded, err := json.Marshal(requirements)
	if err != nil {
		return dto.GoalCreateResponse{}, err
	}

	start := roadmap.Day(s.now())
	end := roadmap.PlanEnd(start, payload.TargetDurationMonths)
	roleFamily := strings.TrimSpace(payload.TargetRoleFamily)
	if roleFamily == "" {
		roleFamily = defaultRoleFamily
	}
	goal := models.CareerGoal{
		StudentID:            student.ID,
		GoalText:             strings.TrimSpace(payload.GoalText),
		TargetCompany:        company,
		TargetRoleFamily:     roleFamily,
		TargetDurationMonths: payload.TargetDurationMonths,
		StartDate:            start,
		TargetEndDate:        end,
		Requirements:         datatypes.JSON(encoded),
	}
	if err := s.repos.Goals.CreateReplacingActive(ctx, &goal, goalSkills); err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("create goal: %w", err)
	}

	stored, err := s.repos.Goals.ListSkills(ctx, goal.ID)
	if err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("list goal skills: %w", err)
	}

	plan, err := s.repos.Plans.CreateReplacingActive(ctx, goal.ID, start, end)
	if err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("create plan: %w", err)
	}

	efforts := make([]roadmap.SkillEffort, 0, len(stored))
	for _, skill := range stored {
		efforts = append(efforts, roadmap.SkillEffort{
			GoalSkillID: skill.ID,
			Name:        skill.SkillName,
			EffortHours: skill.EstimatedEffortHours,
		})
	}
	tasks := toTaskModels(roadmap.BuildSchedule(efforts, start, end, student.WeeklyStudyHours))
	if err := s.repos.Tasks.BulkInsert(ctx, plan.ID, tasks); err != nil {
		return dto.GoalCreateResponse{}, fmt.Errorf("insert tasks: %w", err)
	}

	s.logger.Info().
		Uint("student_id", student.ID).
		Uint("goal_id", goal.ID).
		Str("requirements_source", requirements.Source).
		Int("missing_skills", len(stored)).
		Int("tasks", len(tasks)).
		Msg("roadmap goal created")

	missing := make([]dto.GoalSkillResponse, 0, len(stored))
	for _, skill := range stored {
		missing = append(missing, dto.NewGoalSkillResponse(skill))
	}
	knownNamesOut := make([]string, 0, len(known))
	for _, skill := range known {
		knownNamesOut = append(knownNamesOut, skill.SkillName)
	}

	return dto.GoalCreateResponse{
		Goal:          dto.NewGoalSummary(goal, requirements.RequiredSkills),
		Plan:          dto.NewPlanResponse(plan),
		KnownSkills:   knownNamesOut,
		MissingSkills: missing,
		TaskCount:     len(tasks),
	}, nil
}

// requiredSkills picks the goal's skills: the explicit list, else the most
// frequent skills across the target company's postings, else a baseline.
func (s *roadmapService) requiredSkills(ctx context.Context, goalText, company string, explicit []string) (GoalRequirements, error) {
	if names := skills.Deduplicate(explicit); len(names) > 0 {
		return GoalRequirements{Source: RequirementSourceExplicit, RequiredSkills: names}, nil
	}

	if company != "" {
		postings, err := s.repos.Opportunities.ListByCompany(ctx, company, companySkillSampleSize)
		if err != nil {
			return GoalRequirements{}, fmt.Errorf("list company opportunities: %w", err)
		}
		if top := topCompanySkills(postings, companySkillTopN); len(top) > 0 {
			return GoalRequirements{
				Source:                 RequirementSourceCompany,
				RequiredSkills:         top,
				SourceOpportunityCount: len(postings),
			}, nil
		}
	}

	names := append([]string{}, baselineSkills...)
	words := goalWords(goalText)
	if _, ok := words["frontend"]; ok {
		names = append(names, "JavaScript", "HTML", "CSS")
	}
	_, ai := words["ai"]
	_, ml := words["ml"]
	if ai || ml {
		names = append(names, "Machine Learning", "Deep Learning")
	}
	return GoalRequirements{Source: RequirementSourceBaseline, RequiredSkills: names}, nil
}

// topCompanySkills ranks skills by how many postings require them; ties keep
// first-seen order and each skill keeps its first spelling.
func topCompanySkills(postings []models.Opportunity, n int) []string {
	type tally struct {
		name  string
		count int
		first int
	}
	counts := map[string]*tally{}
	for _, posting := range postings {
		for _, name := range posting.RequiredSkills() {
			key := skills.Normalize(name)
			if key == "" {
				continue
			}
			entry, ok := counts[key]
			if !ok {
				entry = &tally{name: strings.TrimSpace(name), first: len(counts)}
				counts[key] = entry
			}
			entry.count++
		}
	}

	ranked := make([]*tally, 0, len(counts))
	for _, entry := range counts {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	out := make([]string, 0, n)
	for _, entry := range ranked {
		if len(out) == n {
			break
		}
		out = append(out, entry.name)
	}
	return out
}

func goalWords(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		out[field] = struct{}{}
	}
	return out
}

func (s *roadmapService) Replan(ctx context.Context, studentID uint) (dto.ReplanResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "roadmap.replan",
		trace.WithAttributes(attribute.Int64("student.id", int64(studentID))))
	defer span.End()

	result, err := s.replan(spanCtx, studentID)
	if err != nil {
		span.RecordError(err)
		return dto.ReplanResponse{}, err
	}

	span.SetAttributes(attribute.String("replan.reason", result.Reason))
	observability.Replans().WithLabelValues(result.Reason).Inc()
	return result, nil
}

func (s *roadmapService) replan(ctx context.Context, studentID uint) (dto.ReplanResponse, error) {
	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return dto.ReplanResponse{}, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		if errors.Is(err, ErrNoActiveGoal) {
			return dto.ReplanResponse{Reason: roadmap.ReasonNoActiveGoal}, nil
		}
		return dto.ReplanResponse{}, err
	}
	plan, err := loadActivePlan(ctx, s.repos.Plans, goal.ID)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			return dto.ReplanResponse{Reason: roadmap.ReasonNoActivePlan}, nil
		}
		return dto.ReplanResponse{}, err
	}

	now := s.now()
	today := roadmap.Day(now)
	overdue, err := s.repos.Tasks.CountOverdueIncomplete(ctx, plan.ID, today)
	if err != nil {
		return dto.ReplanResponse{}, fmt.Errorf("count overdue tasks: %w", err)
	}
	if overdue == 0 {
		return dto.ReplanResponse{Reason: roadmap.ReasonOnTrack}, nil
	}

	incomplete, err := s.repos.Tasks.ListIncomplete(ctx, plan.ID)
	if err != nil {
		return dto.ReplanResponse{}, fmt.Errorf("list incomplete tasks: %w", err)
	}
	if len(incomplete) == 0 {
		return dto.ReplanResponse{Reason: roadmap.ReasonNoIncompleteTasks, OverdueTaskCount: int(overdue)}, nil
	}

	dates := make([]roadmap.TaskDate, 0, len(incomplete))
	for _, task := range incomplete {
		dates = append(dates, roadmap.TaskDate{ID: task.ID, Date: task.TaskDate})
	}
	changes := roadmap.Reschedule(dates, today, goal.TargetEndDate)
	if len(changes) == 0 {
		return dto.ReplanResponse{Reason: roadmap.ReasonNoChangeNeeded, OverdueTaskCount: int(overdue)}, nil
	}

	if err := s.repos.Tasks.BulkUpdateDates(ctx, changes); err != nil {
		return dto.ReplanResponse{}, fmt.Errorf("update task dates: %w", err)
	}
	if err := s.repos.Plans.MarkReplanned(ctx, plan.ID, now.UTC()); err != nil {
		return dto.ReplanResponse{}, fmt.Errorf("mark plan replanned: %w", err)
	}

	notification := dto.NotificationCreateRequest{
		StudentID: studentID,
		GoalID:    uintPtr(goal.ID),
		Type:      models.NotificationRoadmapReplanned,
		Title:     "Roadmap Updated",
		Body:      fmt.Sprintf("We rescheduled %d task(s) because %d task(s) were missed.", len(changes), overdue),
	}
	if _, err := s.notifications.Publish(ctx, notification); err != nil {
		return dto.ReplanResponse{}, fmt.Errorf("publish replan notification: %w", err)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("plan_id", plan.ID).
		Int("updated", len(changes)).
		Int64("overdue", overdue).
		Msg("roadmap replanned")

	return dto.ReplanResponse{
		Applied:          true,
		Reason:           roadmap.ReasonRescheduled,
		UpdatedTaskCount: len(changes),
		OverdueTaskCount: int(overdue),
	}, nil
}

func (s *roadmapService) ListTasks(ctx context.Context, studentID uint, from, to *time.Time) ([]dto.TaskResponse, error) {
	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return nil, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		return nil, err
	}
	plan, err := loadActivePlan(ctx, s.repos.Plans, goal.ID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repos.Tasks.ListByPlan(ctx, plan.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return dto.NewTaskResponseSlice(tasks), nil
}

// SetTaskCompletion toggles a task of the active skill. Once every task of
// that skill is done the skill moves to in_progress and becomes testable.
func (s *roadmapService) SetTaskCompletion(ctx context.Context, studentID, taskID uint, completed bool) (dto.TaskCompletionResponse, error) {
	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return dto.TaskCompletionResponse{}, err
	}
	goal, err := loadActiveGoal(ctx, s.repos.Goals, studentID)
	if err != nil {
		return dto.TaskCompletionResponse{}, err
	}
	plan, err := loadActivePlan(ctx, s.repos.Plans, goal.ID)
	if err != nil {
		return dto.TaskCompletionResponse{}, err
	}

	goalSkills, err := s.repos.Goals.ListSkills(ctx, goal.ID)
	if err != nil {
		return dto.TaskCompletionResponse{}, fmt.Errorf("list goal skills: %w", err)
	}
	active, ok := models.ActiveGoalSkill(goalSkills)
	if !ok {
		return dto.TaskCompletionResponse{}, ErrAllSkillsCompleted
	}

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskCompletionResponse{}, ErrTaskNotFound
		}
		return dto.TaskCompletionResponse{}, fmt.Errorf("load task: %w", err)
	}
	if task.PlanID != plan.ID {
		return dto.TaskCompletionResponse{}, ErrTaskNotFound
	}
	if !task.BelongsToSkill(active.ID) {
		return dto.TaskCompletionResponse{}, fmt.Errorf("%w: only %s tasks are unlocked right now", ErrSkillLocked, active.SkillName)
	}

	now := s.now().UTC()
	if err := s.repos.Tasks.SetCompleted(ctx, task.ID, completed, now); err != nil {
		return dto.TaskCompletionResponse{}, fmt.Errorf("update task: %w", err)
	}
	task.IsCompleted = completed
	task.CompletedAt = nil
	if completed {
		task.CompletedAt = &now
	}

	skillTasks, err := s.repos.Tasks.ListBySkill(ctx, plan.ID, active.ID)
	if err != nil {
		return dto.TaskCompletionResponse{}, fmt.Errorf("list skill tasks: %w", err)
	}
	ready := allCompleted(skillTasks)
	status := active.Status
	if ready && status != models.GoalSkillInProgress {
		if err := s.repos.Goals.SetSkillStatus(ctx, active.ID, models.GoalSkillInProgress, nil); err != nil {
			return dto.TaskCompletionResponse{}, fmt.Errorf("update skill status: %w", err)
		}
		status = models.GoalSkillInProgress
	}

	if s.matches != nil {
		if _, err := s.matches.Refresh(ctx, studentID); err != nil {
			return dto.TaskCompletionResponse{}, err
		}
	}

	return dto.TaskCompletionResponse{
		Task:         dto.NewTaskResponse(task),
		SkillStatus:  status,
		ReadyForTest: ready,
	}, nil
}

func allCompleted(tasks []models.RoadmapTask) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if !task.IsCompleted {
			return false
		}
	}
	return true
}

func toTaskModels(specs []roadmap.TaskSpec) []models.RoadmapTask {
	tasks := make([]models.RoadmapTask, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, models.RoadmapTask{
			GoalSkillID:   spec.GoalSkillID,
			TaskDate:      spec.TaskDate,
			Title:         spec.Title,
			Description:   spec.Description,
			TargetMinutes: spec.TargetMinutes,
		})
	}
	return tasks
}
