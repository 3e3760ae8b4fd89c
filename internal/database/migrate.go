package database

import (
	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/models"
)

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&models.Student{},
		&models.StudentSkill{},
		&models.CareerGoal{},
		&models.GoalSkill{},
		&models.RoadmapPlan{},
		&models.RoadmapTask{},
		&models.Opportunity{},
		&models.OpportunityMatch{},
		&models.SkillAssessment{},
		&models.Notification{},
		&models.CompanyJob{},
		&models.JobApplication{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
