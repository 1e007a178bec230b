package aggregates

import (
	"context"

	"github.com/yungbote/appregistry-backend/internal/data/repos/registry"
	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
)

const (
	opApplicationCreate = "application.create"
	opApplicationUpdate = "application.update"
	opApplicationDelete = "application.delete"
	opApplicationFind   = "application.find"
	opApplicationList   = "application.list"
	opApplicationSearch = "application.search"
)

// ApplicationDAO persists applications through the gorm repo. Names are
// upper-cased before any storage access; createTs/updateTs are stamped here.
type ApplicationDAO struct {
	deps BaseDeps
	repo registry.ApplicationRepo
}

var _ application.DAO = (*ApplicationDAO)(nil)

func NewApplicationDAO(deps BaseDeps, repo registry.ApplicationRepo) *ApplicationDAO {
	if repo == nil {
		repo = registry.NewApplicationRepo(deps.DB, deps.Log)
	}
	return &ApplicationDAO{deps: deps.withDefaults(), repo: repo}
}

// Create inserts app under name. A createTs already on app is kept so a
// recreated application retains its original creation time.
func (d *ApplicationDAO) Create(ctx context.Context, name string, app *application.Application) (*application.Application, error) {
	row, err := d.prepare(opApplicationCreate, name, app)
	if err != nil {
		return nil, err
	}
	now := d.deps.nowMillis()
	if row.CreateTs == 0 {
		row.CreateTs = now
	}
	row.UpdateTs = now

	err = executeWrite(ctx, d.deps, opApplicationCreate, func(dbc dbctx.Context) error {
		_, err := d.repo.Create(dbc, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row.ToApplication(), nil
}

// Update overwrites the stored application, keeping its createTs.
func (d *ApplicationDAO) Update(ctx context.Context, name string, app *application.Application) (*application.Application, error) {
	row, err := d.prepare(opApplicationUpdate, name, app)
	if err != nil {
		return nil, err
	}
	err = executeWrite(ctx, d.deps, opApplicationUpdate, func(dbc dbctx.Context) error {
		existing, err := d.repo.GetByName(dbc, row.Name)
		if err != nil {
			return err
		}
		row.CreateTs = existing.CreateTs
		row.UpdateTs = d.deps.nowMillis()
		_, err = d.repo.Save(dbc, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row.ToApplication(), nil
}

func (d *ApplicationDAO) Delete(ctx context.Context, name string) error {
	normalized := application.NormalizeName(name)
	if normalized == "" {
		return domainagg.NewError(domainagg.CodeValidation, opApplicationDelete, "application name is required", nil)
	}
	return executeWrite(ctx, d.deps, opApplicationDelete, func(dbc dbctx.Context) error {
		n, err := d.repo.DeleteByName(dbc, normalized)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NotFound(opApplicationDelete, "no application found for name %s", normalized)
		}
		return nil
	})
}

func (d *ApplicationDAO) FindByName(ctx context.Context, name string) (*application.Application, error) {
	normalized := application.NormalizeName(name)
	if normalized == "" {
		return nil, domainagg.NotFound(opApplicationFind, "no application found for blank name")
	}
	var row *application.ApplicationRecord
	err := executeRead(ctx, opApplicationFind, func(dbc dbctx.Context) error {
		var err error
		row, err = d.repo.GetByName(dbc, normalized)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row.ToApplication(), nil
}

// All returns not_found when the registry is empty.
func (d *ApplicationDAO) All(ctx context.Context) ([]*application.Application, error) {
	apps, err := d.list(ctx, opApplicationList)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, domainagg.NotFound(opApplicationList, "no applications available")
	}
	return apps, nil
}

// Search filters in process: details live in a JSON column whose query syntax
// differs between postgres and sqlite. Returns not_found when nothing matches.
func (d *ApplicationDAO) Search(ctx context.Context, params map[string]string) ([]*application.Application, error) {
	apps, err := d.list(ctx, opApplicationSearch)
	if err != nil {
		return nil, err
	}
	hits := application.Filter(apps, params)
	if len(hits) == 0 {
		return nil, domainagg.NotFound(opApplicationSearch, "no applications found for search criteria %v", params)
	}
	return hits, nil
}

func (d *ApplicationDAO) list(ctx context.Context, op string) ([]*application.Application, error) {
	var rows []*application.ApplicationRecord
	err := executeRead(ctx, op, func(dbc dbctx.Context) error {
		var err error
		rows, err = d.repo.List(dbc)
		return err
	})
	if err != nil {
		return nil, err
	}
	apps := make([]*application.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.ToApplication())
	}
	return apps, nil
}

func (d *ApplicationDAO) prepare(op, name string, app *application.Application) (*application.ApplicationRecord, error) {
	if app == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "application is required", nil)
	}
	normalized := application.NormalizeName(name)
	if normalized == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "application name is required", nil)
	}
	row := app.ToRecord()
	row.Name = normalized
	return row, nil
}
