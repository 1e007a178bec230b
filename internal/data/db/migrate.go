package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&application.ApplicationRecord{},
		&application.PermissionRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
