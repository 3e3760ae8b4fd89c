package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/models"
)

// AssessmentRepository stores skill test attempts.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.SkillAssessment) error
	Get(ctx context.Context, id uint) (models.SkillAssessment, error)
	Latest(ctx context.Context, goalSkillID uint) (models.SkillAssessment, error)
	MarkSubmitted(ctx context.Context, assessment *models.SkillAssessment) (bool, error)
	CountAttempts(ctx context.Context, goalSkillID uint) (int64, error)
	ListBySkill(ctx context.Context, goalSkillID uint) ([]models.SkillAssessment, error)
	LatestScores(ctx context.Context, studentID uint, keys []string) (map[string]float64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs a GORM-backed assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.SkillAssessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) Get(ctx context.Context, id uint) (models.SkillAssessment, error) {
	var assessment models.SkillAssessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return models.SkillAssessment{}, err
	}
	return assessment, nil
}

func (r *assessmentRepository) Latest(ctx context.Context, goalSkillID uint) (models.SkillAssessment, error) {
	var assessment models.SkillAssessment
	if err := r.db.WithContext(ctx).
		Where("goal_skill_id = ?", goalSkillID).
		Order("attempt_no DESC").
		Order("id DESC").
		First(&assessment).Error; err != nil {
		return models.SkillAssessment{}, err
	}
	return assessment, nil
}

// MarkSubmitted stores the graded fields only while the attempt is still open.
// It returns false when another submission already graded the attempt.
func (r *assessmentRepository) MarkSubmitted(ctx context.Context, assessment *models.SkillAssessment) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SkillAssessment{}).
		Where("id = ? AND submitted_at IS NULL", assessment.ID).
		Updates(map[string]interface{}{
			"student_answers": assessment.StudentAnswers,
			"score_percent":   assessment.ScorePercent,
			"passed":          assessment.Passed,
			"weak_topics":     assessment.WeakTopics,
			"strong_topics":   assessment.StrongTopics,
			"feedback_text":   assessment.FeedbackText,
			"submitted_at":    assessment.SubmittedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *assessmentRepository) CountAttempts(ctx context.Context, goalSkillID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SkillAssessment{}).
		Where("goal_skill_id = ?", goalSkillID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assessmentRepository) ListBySkill(ctx context.Context, goalSkillID uint) ([]models.SkillAssessment, error) {
	var attempts []models.SkillAssessment
	if err := r.db.WithContext(ctx).
		Where("goal_skill_id = ?", goalSkillID).
		Order("attempt_no ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// LatestScores returns the most recent graded score per normalized skill across
// every goal of the student. Skills without a graded attempt are absent.
func (r *assessmentRepository) LatestScores(ctx context.Context, studentID uint, keys []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(keys))
	if len(keys) == 0 {
		return scores, nil
	}

	var rows []struct {
		NormalizedSkill string
		ScorePercent    float64
	}
	if err := r.db.WithContext(ctx).
		Table("skill_assessments AS sa").
		Select("gs.normalized_skill, sa.score_percent").
		Joins("JOIN goal_skills AS gs ON gs.id = sa.goal_skill_id").
		Joins("JOIN career_goals AS g ON g.id = gs.goal_id").
		Where("g.student_id = ? AND gs.normalized_skill IN ? AND sa.submitted_at IS NOT NULL", studentID, keys).
		Order("sa.submitted_at DESC").
		Order("sa.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		if _, ok := scores[row.NormalizedSkill]; !ok {
			scores[row.NormalizedSkill] = row.ScorePercent
		}
	}
	return scores, nil
}
