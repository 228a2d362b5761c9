package repositories

import (
	"github.com/anonto42/quill/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Bookmark{},
		&models.Notification{},
	)
}
