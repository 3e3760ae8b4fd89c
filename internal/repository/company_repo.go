package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/advait122/ROADmap/internal/models"
)

// CompanyRepository stores company job posts and their invited applications.
type CompanyRepository interface {
	CreateJob(ctx context.Context, job *models.CompanyJob) error
	GetJob(ctx context.Context, id uint) (models.CompanyJob, error)
	ListJobs(ctx context.Context, companyID uint) ([]models.CompanyJob, error)
	CreateApplications(ctx context.Context, applications []models.JobApplication) error
	ListApplications(ctx context.Context, jobID uint) ([]models.JobApplication, error)
	GetApplication(ctx context.Context, jobID, studentID uint) (models.JobApplication, error)
	ListPendingInvites(ctx context.Context, studentID uint) ([]models.JobApplication, error)
	Respond(ctx context.Context, jobID, studentID uint, status string, at time.Time) (bool, error)
	Shortlist(ctx context.Context, jobID uint, studentIDs []uint, at time.Time) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository constructs a GORM-backed company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) CreateJob(ctx context.Context, job *models.CompanyJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *companyRepository) GetJob(ctx context.Context, id uint) (models.CompanyJob, error) {
	var job models.CompanyJob
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return models.CompanyJob{}, err
	}
	return job, nil
}

func (r *companyRepository) ListJobs(ctx context.Context, companyID uint) ([]models.CompanyJob, error) {
	var jobs []models.CompanyJob
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateApplications inserts invitations and ignores students already invited.
func (r *companyRepository) CreateApplications(ctx context.Context, applications []models.JobApplication) error {
	if len(applications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&applications, 100).Error
}

// ListApplications returns applications ranked by match score.
func (r *companyRepository) ListApplications(ctx context.Context, jobID uint) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("match_score DESC").
		Order("student_id ASC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *companyRepository) GetApplication(ctx context.Context, jobID, studentID uint) (models.JobApplication, error) {
	var application models.JobApplication
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Where("job_id = ? AND student_id = ?", jobID, studentID).
		First(&application).Error; err != nil {
		return models.JobApplication{}, err
	}
	return application, nil
}

func (r *companyRepository) ListPendingInvites(ctx context.Context, studentID uint) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Where("student_id = ? AND status = ?", studentID, models.ApplicationPending).
		Order("id DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// Respond moves a pending application to status. It returns false when the
// application was no longer pending.
func (r *companyRepository) Respond(ctx context.Context, jobID, studentID uint, status string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("job_id = ? AND student_id = ? AND status = ?", jobID, studentID, models.ApplicationPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Shortlist flags applied, not yet shortlisted students and returns how many changed.
func (r *companyRepository) Shortlist(ctx context.Context, jobID uint, studentIDs []uint, at time.Time) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("job_id = ? AND student_id IN ? AND status = ? AND shortlisted = ?",
			jobID, studentIDs, models.ApplicationApplied, false).
		Updates(map[string]interface{}{
			"shortlisted":    true,
			"shortlisted_at": at,
		})
	return result.RowsAffected, result.Error
}
