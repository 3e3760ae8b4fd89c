package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/models"
	"github.com/advait122/ROADmap/internal/roadmap"
)

// PlanRepository persists roadmap plans.
type PlanRepository interface {
	GetActive(ctx context.Context, goalID uint) (models.RoadmapPlan, error)
	CreateReplacingActive(ctx context.Context, goalID uint, start, end time.Time) (models.RoadmapPlan, error)
	MarkReplanned(ctx context.Context, planID uint, at time.Time) error
}

// TaskRepository persists roadmap tasks.
type TaskRepository interface {
	BulkInsert(ctx context.Context, planID uint, tasks []models.RoadmapTask) error
	Append(ctx context.Context, planID uint, tasks []models.RoadmapTask) error
	GetByID(ctx context.Context, id uint) (models.RoadmapTask, error)
	ListByPlan(ctx context.Context, planID uint, from, to *time.Time) ([]models.RoadmapTask, error)
	ListIncomplete(ctx context.Context, planID uint) ([]models.RoadmapTask, error)
	ListBySkill(ctx context.Context, planID, goalSkillID uint) ([]models.RoadmapTask, error)
	CountOverdueIncomplete(ctx context.Context, planID uint, today time.Time) (int64, error)
	BulkUpdateDates(ctx context.Context, changes []roadmap.DateChange) error
	SetCompleted(ctx context.Context, taskID uint, completed bool, at time.Time) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository constructs a GORM-backed plan repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetActive(ctx context.Context, goalID uint) (models.RoadmapPlan, error) {
	var plan models.RoadmapPlan
	if err := r.db.WithContext(ctx).
		Where("goal_id = ? AND status = ?", goalID, models.PlanStatusActive).
		Order("id DESC").
		First(&plan).Error; err != nil {
		return models.RoadmapPlan{}, err
	}
	return plan, nil
}

func (r *planRepository) CreateReplacingActive(ctx context.Context, goalID uint, start, end time.Time) (models.RoadmapPlan, error) {
	plan := models.RoadmapPlan{
		GoalID:    goalID,
		StartDate: roadmap.Day(start),
		EndDate:   roadmap.Day(end),
		Status:    models.PlanStatusActive,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoadmapPlan{}).
			Where("goal_id = ? AND status = ?", goalID, models.PlanStatusActive).
			Update("status", models.PlanStatusArchived).Error; err != nil {
			return err
		}
		return tx.Create(&plan).Error
	})
	if err != nil {
		return models.RoadmapPlan{}, err
	}
	return plan, nil
}

func (r *planRepository) MarkReplanned(ctx context.Context, planID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.RoadmapPlan{}).
		Where("id = ?", planID).
		Update("last_replanned_at", at).Error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository constructs a GORM-backed task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// BulkInsert replaces every task of the plan.
func (r *taskRepository) BulkInsert(ctx context.Context, planID uint, tasks []models.RoadmapTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&models.RoadmapTask{}).Error; err != nil {
			return err
		}
		return insertTasks(tx, planID, tasks)
	})
}

func (r *taskRepository) Append(ctx context.Context, planID uint, tasks []models.RoadmapTask) error {
	return insertTasks(r.db.WithContext(ctx), planID, tasks)
}

func insertTasks(tx *gorm.DB, planID uint, tasks []models.RoadmapTask) error {
	if len(tasks) == 0 {
		return nil
	}
	for i := range tasks {
		tasks[i].ID = 0
		tasks[i].PlanID = planID
		tasks[i].TaskDate = roadmap.Day(tasks[i].TaskDate)
	}
	return tx.CreateInBatches(&tasks, 200).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.RoadmapTask, error) {
	var task models.RoadmapTask
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.RoadmapTask{}, err
	}
	return task, nil
}

func (r *taskRepository) ListByPlan(ctx context.Context, planID uint, from, to *time.Time) ([]models.RoadmapTask, error) {
	query := r.db.WithContext(ctx).Where("plan_id = ?", planID)
	if from != nil {
		query = query.Where("task_date >= ?", roadmap.Day(*from))
	}
	if to != nil {
		query = query.Where("task_date <= ?", roadmap.Day(*to))
	}

	var tasks []models.RoadmapTask
	if err := query.Order("task_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListIncomplete(ctx context.Context, planID uint) ([]models.RoadmapTask, error) {
	var tasks []models.RoadmapTask
	if err := r.db.WithContext(ctx).
		Where("plan_id = ? AND is_completed = ?", planID, false).
		Order("task_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListBySkill(ctx context.Context, planID, goalSkillID uint) ([]models.RoadmapTask, error) {
	var tasks []models.RoadmapTask
	if err := r.db.WithContext(ctx).
		Where("plan_id = ? AND goal_skill_id = ?", planID, goalSkillID).
		Order("task_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountOverdueIncomplete(ctx context.Context, planID uint, today time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RoadmapTask{}).
		Where("plan_id = ? AND is_completed = ? AND task_date < ?", planID, false, roadmap.Day(today)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) BulkUpdateDates(ctx context.Context, changes []roadmap.DateChange) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			if err := tx.Model(&models.RoadmapTask{}).
				Where("id = ?", change.TaskID).
				Update("task_date", roadmap.Day(change.Date)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepository) SetCompleted(ctx context.Context, taskID uint, completed bool, at time.Time) error {
	var completedAt *time.Time
	if completed {
		completedAt = &at
	}
	result := r.db.WithContext(ctx).Model(&models.RoadmapTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"is_completed": completed,
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
