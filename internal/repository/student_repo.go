package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/advait122/ROADmap/internal/models"
)

// StudentRepository provides access to student records and their known skills.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Save(ctx context.Context, student *models.Student) error
	ListSkills(ctx context.Context, studentID uint) ([]models.StudentSkill, error)
	ReplaceSkills(ctx context.Context, studentID uint, skills []models.StudentSkill) error
	AddSkill(ctx context.Context, skill *models.StudentSkill) error
	IDsWithSkills(ctx context.Context, keys []string) ([]uint, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Save(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) ListSkills(ctx context.Context, studentID uint) ([]models.StudentSkill, error) {
	var skills []models.StudentSkill
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// ReplaceSkills swaps the self-declared skills of a student. Skills mastered
// through the roadmap are kept.
func (r *studentRepository) ReplaceSkills(ctx context.Context, studentID uint, skills []models.StudentSkill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ? AND skill_source <> ?", studentID, models.SkillSourceRoadmapMastered).
			Delete(&models.StudentSkill{}).Error; err != nil {
			return err
		}
		if len(skills) == 0 {
			return nil
		}
		for i := range skills {
			skills[i].ID = 0
			skills[i].StudentID = studentID
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&skills).Error
	})
}

func (r *studentRepository) AddSkill(ctx context.Context, skill *models.StudentSkill) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(skill).Error
}

// IDsWithSkills returns the students whose known skills include every key.
func (r *studentRepository) IDsWithSkills(ctx context.Context, keys []string) ([]uint, error) {
	if len(keys) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.StudentSkill{}).
		Where("normalized_skill IN ?", keys).
		Group("student_id").
		Having("COUNT(DISTINCT normalized_skill) = ?", len(keys)).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *studentRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
