// Package repos is the single import point for the gorm repositories.
package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/appregistry-backend/internal/data/repos/registry"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type ApplicationRepo = registry.ApplicationRepo
type PermissionRepo = registry.PermissionRepo

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return registry.NewApplicationRepo(db, baseLog)
}

func NewPermissionRepo(db *gorm.DB, baseLog *logger.Logger) PermissionRepo {
	return registry.NewPermissionRepo(db, baseLog)
}
