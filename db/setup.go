package db

import (
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate runs AutoMigrate against the given handle. Split out from
// MigrateDatabase so tests can migrate an in-memory database.
func Migrate(conn *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.WorkExperience{},
		&models.PortfolioProject{},
		&models.Skill{},
		&models.Interest{},
		&models.UserSkill{},
		&models.UserInterest{},
		&models.Project{},
		&models.ProjectSkill{},
		&models.ProjectMembership{},
		&models.Milestone{},
		&models.Task{},
		&models.Application{},
		&models.Bookmark{},
		&models.Recommendation{},
	}

	migrator := conn.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
