package registry

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type ApplicationRepo interface {
	Create(dbc dbctx.Context, row *application.ApplicationRecord) (*application.ApplicationRecord, error)
	Save(dbc dbctx.Context, row *application.ApplicationRecord) (*application.ApplicationRecord, error)
	GetByName(dbc dbctx.Context, name string) (*application.ApplicationRecord, error)
	List(dbc dbctx.Context) ([]*application.ApplicationRecord, error)
	DeleteByName(dbc dbctx.Context, name string) (int64, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	repoLog := baseLog.With("repo", "ApplicationRepo")
	return &applicationRepo{db: db, log: repoLog}
}

func (r *applicationRepo) Create(dbc dbctx.Context, row *application.ApplicationRecord) (*application.ApplicationRecord, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Save overwrites every column of an existing row, inserting when absent.
func (r *applicationRepo) Save(dbc dbctx.Context, row *application.ApplicationRecord) (*application.ApplicationRecord, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// GetByName returns gorm.ErrRecordNotFound on a miss.
func (r *applicationRepo) GetByName(dbc dbctx.Context, name string) (*application.ApplicationRecord, error) {
	var row application.ApplicationRecord
	if err := dbc.DB(r.db).
		Where("name = ?", strings.TrimSpace(name)).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *applicationRepo) List(dbc dbctx.Context) ([]*application.ApplicationRecord, error) {
	var rows []*application.ApplicationRecord
	if err := dbc.DB(r.db).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *applicationRepo) DeleteByName(dbc dbctx.Context, name string) (int64, error) {
	res := dbc.DB(r.db).
		Where("name = ?", strings.TrimSpace(name)).
		Delete(&application.ApplicationRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("delete matched no rows", "name", name)
	}
	return res.RowsAffected, nil
}
