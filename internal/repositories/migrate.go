package repositories

import (
	"github.com/anonto42/socialnet/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the relational tables, including the unique
// indexes the follow and like repositories rely on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	)
}
