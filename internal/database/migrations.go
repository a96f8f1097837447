package database

import (
	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/models"
)

// RunMigrations creates or updates every table. Order matters: each
// table comes after the tables its foreign keys point at.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Booking{},
		&models.Notification{},
	)
}
