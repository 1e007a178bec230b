package registry

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type PermissionRepo interface {
	Upsert(dbc dbctx.Context, row *application.PermissionRecord) (*application.PermissionRecord, error)
	GetByName(dbc dbctx.Context, name string) (*application.PermissionRecord, error)
	List(dbc dbctx.Context) ([]*application.PermissionRecord, error)
	DeleteByName(dbc dbctx.Context, name string) (int64, error)
}

type permissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPermissionRepo(db *gorm.DB, baseLog *logger.Logger) PermissionRepo {
	repoLog := baseLog.With("repo", "PermissionRepo")
	return &permissionRepo{db: db, log: repoLog}
}

func (r *permissionRepo) Upsert(dbc dbctx.Context, row *application.PermissionRecord) (*application.PermissionRecord, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_modified",
			"last_modified_by",
			"required_group_membership",
		}),
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *permissionRepo) GetByName(dbc dbctx.Context, name string) (*application.PermissionRecord, error) {
	var row application.PermissionRecord
	if err := dbc.DB(r.db).
		Where("name = ?", strings.TrimSpace(name)).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *permissionRepo) List(dbc dbctx.Context) ([]*application.PermissionRecord, error) {
	var rows []*application.PermissionRecord
	if err := dbc.DB(r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *permissionRepo) DeleteByName(dbc dbctx.Context, name string) (int64, error) {
	res := dbc.DB(r.db).
		Where("name = ?", strings.TrimSpace(name)).
		Delete(&application.PermissionRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
