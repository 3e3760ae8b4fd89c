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

	"github.com/advait122/ROADmap/internal/dto"
	"github.com/advait122/ROADmap/internal/matching"
	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/observability"
	"github.com/advait122/ROADmap/internal/repository"
	"github.com/advait122/ROADmap/internal/roadmap"
	"github.com/advait122/ROADmap/internal/skills"
)

// Candidate listing bounds.
const (
	DefaultCandidateLimit = 20
	MaxCandidateLimit     = 100
)

// CompanyService posts company jobs, invites students whose skills cover the
// job and manages the resulting applications and shortlist.
type CompanyService interface {
	CreateJob(ctx context.Context, companyID uint, payload dto.CompanyJobCreateRequest) (dto.CompanyJobResponse, error)
	ListJobs(ctx context.Context, companyID uint) ([]dto.CompanyJobResponse, error)
	Candidates(ctx context.Context, companyID, jobID uint, limit int) (dto.CompanyCandidatesResponse, error)
	Shortlist(ctx context.Context, companyID, jobID uint, payload dto.ShortlistRequest) (dto.ShortlistResponse, error)
	Invites(ctx context.Context, studentID uint) ([]dto.CompanyInviteResponse, error)
	RespondToInvite(ctx context.Context, studentID, jobID uint, payload dto.InviteDecisionRequest) (dto.CompanyInviteResponse, error)
}

type companyService struct {
	repos         Repositories
	notifications NotificationPublisher
	history       repository.NotificationRepository
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewCompanyService constructs the company service. history supplies the
// replan counts used to score applicant regularity.
func NewCompanyService(repos Repositories, notifications NotificationPublisher, history repository.NotificationRepository, validate *validator.Validate, logger zerolog.Logger) CompanyService {
	return &companyService{
		repos:         repos,
		notifications: notifications,
		history:       history,
		validator:     validate,
		logger:        logger.With().Str("component", "company_service").Logger(),
		tracer:        otel.Tracer("github.com/advait122/ROADmap/internal/service/company"),
		now:           time.Now,
	}
}

// CreateJob stores the job, ranks every student holding all required skills
// and sends each of them a pending invitation.
func (s *companyService) CreateJob(ctx context.Context, companyID uint, payload dto.CompanyJobCreateRequest) (dto.CompanyJobResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompanyJobResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "company.jobs.create",
		trace.WithAttributes(attribute.Int64("company.id", int64(companyID))))
	defer span.End()

	required := skills.Keys(payload.RequiredSkills)
	if len(required) == 0 {
		return dto.CompanyJobResponse{}, ErrNoRequiredSkills
	}
	deadline, err := time.Parse(dto.DateLayout, payload.ApplicationDeadline)
	if err != nil {
		return dto.CompanyJobResponse{}, err
	}
	if deadline.Before(roadmap.Day(s.now())) {
		return dto.CompanyJobResponse{}, ErrDeadlineInPast
	}

	job := models.CompanyJob{
		CompanyID:           companyID,
		CompanyName:         strings.TrimSpace(payload.CompanyName),
		Title:               matching.JobTitle(payload.Description),
		Description:         strings.TrimSpace(payload.Description),
		RequiredSkills:      required,
		ShortlistLimit:      payload.ShortlistLimit,
		ApplicationDeadline: deadline,
	}
	if err := s.repos.Companies.CreateJob(spanCtx, &job); err != nil {
		span.RecordError(err)
		return dto.CompanyJobResponse{}, fmt.Errorf("create company job: %w", err)
	}

	ranked, err := s.rankStudents(spanCtx, required)
	if err != nil {
		span.RecordError(err)
		return dto.CompanyJobResponse{}, err
	}

	applications := make([]models.JobApplication, 0, len(ranked))
	for _, applicant := range ranked {
		applications = append(applications, models.JobApplication{
			JobID:           job.ID,
			StudentID:       applicant.StudentID,
			Status:          models.ApplicationPending,
			TestScore:       applicant.TestScore,
			RegularityScore: applicant.Regularity,
			MatchScore:      applicant.FinalScore,
		})
	}
	if err := s.repos.Companies.CreateApplications(spanCtx, applications); err != nil {
		span.RecordError(err)
		return dto.CompanyJobResponse{}, fmt.Errorf("create job applications: %w", err)
	}

	title, body := matching.InviteText(job.CompanyName, job.Title)
	for _, applicant := range ranked {
		if _, err := s.notifications.Publish(spanCtx, dto.NotificationCreateRequest{
			StudentID: applicant.StudentID,
			Type:      models.NotificationCompanyJobInvite,
			Title:     title,
			Body:      body,
		}); err != nil {
			s.logger.Warn().Err(err).
				Uint("job_id", job.ID).
				Uint("student_id", applicant.StudentID).
				Msg("failed to publish company invite")
		}
	}
	observability.CompanyInvites().WithLabelValues("invited").Add(float64(len(ranked)))

	s.logger.Info().
		Uint("company_id", companyID).
		Uint("job_id", job.ID).
		Strs("required_skills", required).
		Int("invited", len(ranked)).
		Msg("company job posted")

	return dto.NewCompanyJobResponse(job, len(ranked)), nil
}

func (s *companyService) rankStudents(ctx context.Context, required []string) ([]matching.RankedApplicant, error) {
	ids, err := s.repos.Students.IDsWithSkills(ctx, required)
	if err != nil {
		return nil, fmt.Errorf("find skilled students: %w", err)
	}
	students, err := s.repos.Students.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	applicants := make([]matching.Applicant, 0, len(students))
	for _, student := range students {
		scores, err := s.repos.Assessments.LatestScores(ctx, student.ID, required)
		if err != nil {
			return nil, fmt.Errorf("load test scores: %w", err)
		}
		replans, err := s.history.CountByType(ctx, student.ID, models.NotificationRoadmapReplanned)
		if err != nil {
			return nil, fmt.Errorf("count replans: %w", err)
		}
		applicants = append(applicants, matching.Applicant{
			StudentID:   student.ID,
			Name:        student.Name,
			SkillScores: scores,
			ReplanCount: int(replans),
		})
	}
	return matching.RankApplicants(required, applicants), nil
}

func (s *companyService) ListJobs(ctx context.Context, companyID uint) ([]dto.CompanyJobResponse, error) {
	jobs, err := s.repos.Companies.ListJobs(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company jobs: %w", err)
	}
	items := make([]dto.CompanyJobResponse, 0, len(jobs))
	for _, job := range jobs {
		applications, err := s.repos.Companies.ListApplications(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("list job applications: %w", err)
		}
		items = append(items, dto.NewCompanyJobResponse(job, len(applications)))
	}
	return items, nil
}

// Candidates lists the invited students of a job best match first.
func (s *companyService) Candidates(ctx context.Context, companyID, jobID uint, limit int) (dto.CompanyCandidatesResponse, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	limit = min(limit, MaxCandidateLimit)

	job, err := s.ownedJob(ctx, companyID, jobID)
	if err != nil {
		return dto.CompanyCandidatesResponse{}, err
	}
	applications, err := s.repos.Companies.ListApplications(ctx, job.ID)
	if err != nil {
		return dto.CompanyCandidatesResponse{}, fmt.Errorf("list job applications: %w", err)
	}

	counts := tallyApplications(applications)
	visible := applications[:min(limit, len(applications))]

	ids := make([]uint, 0, len(visible))
	for _, application := range visible {
		ids = append(ids, application.StudentID)
	}
	students, err := s.repos.Students.ListByIDs(ctx, ids)
	if err != nil {
		return dto.CompanyCandidatesResponse{}, fmt.Errorf("load students: %w", err)
	}
	names := make(map[uint]string, len(students))
	for _, student := range students {
		names[student.ID] = student.Name
	}

	candidates := make([]dto.CandidateResponse, 0, len(visible))
	for _, application := range visible {
		candidates = append(candidates, dto.CandidateResponse{
			StudentID:       application.StudentID,
			Name:            names[application.StudentID],
			Status:          application.Status,
			TestScore:       application.TestScore,
			RegularityScore: application.RegularityScore,
			MatchScore:      application.MatchScore,
			Shortlisted:     application.Shortlisted,
		})
	}

	return dto.CompanyCandidatesResponse{
		Job:                dto.NewCompanyJobResponse(job, len(applications)),
		Counts:             counts,
		RemainingShortlist: max(job.ShortlistLimit-counts.Shortlisted, 0),
		Candidates:         candidates,
	}, nil
}

// Shortlist flags applied students in request order until the job's shortlist
// limit is met. Once the limit is reached further calls change nothing.
func (s *companyService) Shortlist(ctx context.Context, companyID, jobID uint, payload dto.ShortlistRequest) (dto.ShortlistResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ShortlistResponse{}, err
	}

	job, err := s.ownedJob(ctx, companyID, jobID)
	if err != nil {
		return dto.ShortlistResponse{}, err
	}
	applications, err := s.repos.Companies.ListApplications(ctx, job.ID)
	if err != nil {
		return dto.ShortlistResponse{}, fmt.Errorf("list job applications: %w", err)
	}

	eligible := make(map[uint]bool, len(applications))
	for _, application := range applications {
		eligible[application.StudentID] = application.Status == models.ApplicationApplied && !application.Shortlisted
	}
	remaining := max(job.ShortlistLimit-tallyApplications(applications).Shortlisted, 0)

	seen := make(map[uint]struct{}, len(payload.StudentIDs))
	selected := make([]uint, 0, remaining)
	skipped := 0
	for _, id := range payload.StudentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if !eligible[id] || len(selected) >= remaining {
			skipped++
			continue
		}
		selected = append(selected, id)
	}

	if len(selected) == 0 {
		return dto.ShortlistResponse{Skipped: skipped, Remaining: remaining, LimitReached: remaining == 0}, nil
	}

	added, err := s.repos.Companies.Shortlist(ctx, job.ID, selected, s.now().UTC())
	if err != nil {
		return dto.ShortlistResponse{}, fmt.Errorf("shortlist students: %w", err)
	}
	observability.CompanyInvites().WithLabelValues("shortlisted").Add(float64(added))
	remaining -= int(added)

	s.logger.Info().
		Uint("job_id", job.ID).
		Int64("added", added).
		Int("remaining", remaining).
		Msg("students shortlisted")

	return dto.ShortlistResponse{
		Added:        int(added),
		Skipped:      skipped + len(selected) - int(added),
		Remaining:    remaining,
		LimitReached: remaining == 0,
	}, nil
}

// Invites lists the student's unanswered invitations.
func (s *companyService) Invites(ctx context.Context, studentID uint) ([]dto.CompanyInviteResponse, error) {
	if _, err := loadStudent(ctx, s.repos.Students, studentID); err != nil {
		return nil, err
	}
	applications, err := s.repos.Companies.ListPendingInvites(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	today := roadmap.Day(s.now())
	items := make([]dto.CompanyInviteResponse, 0, len(applications))
	for _, application := range applications {
		items = append(items, dto.NewCompanyInviteResponse(application, today))
	}
	return items, nil
}

// RespondToInvite applies to or declines a pending invitation before its deadline.
func (s *companyService) RespondToInvite(ctx context.Context, studentID, jobID uint, payload dto.InviteDecisionRequest) (dto.CompanyInviteResponse, error) {
	payload.Decision = strings.ToLower(strings.TrimSpace(payload.Decision))
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompanyInviteResponse{}, err
	}

	application, err := s.repos.Companies.GetApplication(ctx, jobID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompanyInviteResponse{}, ErrInviteNotFound
		}
		return dto.CompanyInviteResponse{}, fmt.Errorf("load application: %w", err)
	}
	if application.Status != models.ApplicationPending {
		return dto.CompanyInviteResponse{}, ErrInviteAnswered
	}
	today := roadmap.Day(s.now())
	if application.Job.DeadlinePassed(today) {
		return dto.CompanyInviteResponse{}, ErrInviteExpired
	}

	next := models.ApplicationDeclined
	if payload.Decision == "apply" {
		next = models.ApplicationApplied
	}
	changed, err := s.repos.Companies.Respond(ctx, jobID, studentID, next, s.now().UTC())
	if err != nil {
		return dto.CompanyInviteResponse{}, fmt.Errorf("respond to invite: %w", err)
	}
	if !changed {
		return dto.CompanyInviteResponse{}, ErrInviteAnswered
	}
	observability.CompanyInvites().WithLabelValues(next).Inc()

	application.Status = next
	return dto.NewCompanyInviteResponse(application, today), nil
}

func (s *companyService) ownedJob(ctx context.Context, companyID, jobID uint) (models.CompanyJob, error) {
	job, err := s.repos.Companies.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CompanyJob{}, ErrCompanyJobNotFound
		}
		return models.CompanyJob{}, fmt.Errorf("load company job: %w", err)
	}
	if job.CompanyID != companyID {
		return models.CompanyJob{}, ErrCompanyJobNotFound
	}
	return job, nil
}

func tallyApplications(applications []models.JobApplication) dto.ApplicationCounts {
	var counts dto.ApplicationCounts
	for _, application := range applications {
		switch application.Status {
		case models.ApplicationPending:
			counts.Pending++
		case models.ApplicationApplied:
			counts.Applied++
		case models.ApplicationDeclined:
			counts.Declined++
		}
		if application.Shortlisted {
			counts.Shortlisted++
		}
	}
	return counts
}
