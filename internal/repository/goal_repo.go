package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/models"
)

// GoalRepository persists career goals and their required skills.
type GoalRepository interface {
	GetActive(ctx context.Context, studentID uint) (models.CareerGoal, error)
	CreateReplacingActive(ctx context.Context, goal *models.CareerGoal, skills []models.GoalSkill) error
	ListSkills(ctx context.Context, goalID uint) ([]models.GoalSkill, error)
	GetSkill(ctx context.Context, goalID, skillID uint) (models.GoalSkill, error)
	SetSkillStatus(ctx context.Context, skillID uint, status string, completedAt *time.Time) error
	ReplaceSkills(ctx context.Context, goalID uint, skills []models.GoalSkill) error
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository constructs a GORM-backed goal repository.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) GetActive(ctx context.Context, studentID uint) (models.CareerGoal, error) {
	var goal models.CareerGoal
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, models.GoalStatusActive).
		Order("id DESC").
		First(&goal).Error; err != nil {
		return models.CareerGoal{}, err
	}
	return goal, nil
}

// CreateReplacingActive archives the student's active goal and stores the new
// goal with its skills in one transaction.
func (r *goalRepository) CreateReplacingActive(ctx context.Context, goal *models.CareerGoal, skills []models.GoalSkill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CareerGoal{}).
			Where("student_id = ? AND status = ?", goal.StudentID, models.GoalStatusActive).
			Update("status", models.GoalStatusArchived).Error; err != nil {
			return err
		}

		goal.Status = models.GoalStatusActive
		goal.Skills = nil
		if err := tx.Create(goal).Error; err != nil {
			return err
		}

		return insertGoalSkills(tx, goal.ID, skills)
	})
}

func (r *goalRepository) ListSkills(ctx context.Context, goalID uint) ([]models.GoalSkill, error) {
	var skills []models.GoalSkill
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("priority ASC, id ASC").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *goalRepository) GetSkill(ctx context.Context, goalID, skillID uint) (models.GoalSkill, error) {
	var skill models.GoalSkill
	if err := r.db.WithContext(ctx).
		Where("id = ? AND goal_id = ?", skillID, goalID).
		First(&skill).Error; err != nil {
		return models.GoalSkill{}, err
	}
	return skill, nil
}

func (r *goalRepository) SetSkillStatus(ctx context.Context, skillID uint, status string, completedAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.GoalSkill{}).
		Where("id = ?", skillID).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *goalRepository) ReplaceSkills(ctx context.Context, goalID uint, skills []models.GoalSkill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalSkill{}).Error; err != nil {
			return err
		}
		return insertGoalSkills(tx, goalID, skills)
	})
}

func insertGoalSkills(tx *gorm.DB, goalID uint, skills []models.GoalSkill) error {
	if len(skills) == 0 {
		return nil
	}
	for i := range skills {
		skills[i].ID = 0
		skills[i].GoalID = goalID
		if skills[i].Status == "" {
			skills[i].Status = models.GoalSkillPending
		}
	}
	return tx.Create(&skills).Error
}
