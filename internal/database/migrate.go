package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted entity
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
