package aggregates

import (
	"context"

	"github.com/yungbote/appregistry-backend/internal/data/repos/registry"
	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
)

const (
	opPermissionUpsert = "permission.upsert"
	opPermissionDelete = "permission.delete"
	opPermissionFind   = "permission.find"
	opPermissionList   = "permission.list"
)

type PermissionDAO struct {
	deps BaseDeps
	repo registry.PermissionRepo
}

var _ application.PermissionDAO = (*PermissionDAO)(nil)

func NewPermissionDAO(deps BaseDeps, repo registry.PermissionRepo) *PermissionDAO {
	if repo == nil {
		repo = registry.NewPermissionRepo(deps.DB, deps.Log)
	}
	return &PermissionDAO{deps: deps.withDefaults(), repo: repo}
}

func (d *PermissionDAO) Upsert(ctx context.Context, perm *application.Permission) (*application.Permission, error) {
	if perm == nil || application.NormalizeName(perm.Name) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, opPermissionUpsert, "permission name is required", nil)
	}
	row := perm.ToRecord()
	if row.LastModified == 0 {
		row.LastModified = d.deps.nowMillis()
	}
	err := executeWrite(ctx, d.deps, opPermissionUpsert, func(dbc dbctx.Context) error {
		_, err := d.repo.Upsert(dbc, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row.ToPermission(), nil
}

func (d *PermissionDAO) FindByName(ctx context.Context, name string) (*application.Permission, error) {
	normalized := application.NormalizeName(name)
	if normalized == "" {
		return nil, domainagg.NotFound(opPermissionFind, "no permission found for blank name")
	}
	var row *application.PermissionRecord
	err := executeRead(ctx, opPermissionFind, func(dbc dbctx.Context) error {
		var err error
		row, err = d.repo.GetByName(dbc, normalized)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row.ToPermission(), nil
}

func (d *PermissionDAO) All(ctx context.Context) ([]*application.Permission, error) {
	var rows []*application.PermissionRecord
	err := executeRead(ctx, opPermissionList, func(dbc dbctx.Context) error {
		var err error
		rows, err = d.repo.List(dbc)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]*application.Permission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToPermission())
	}
	return out, nil
}

// Delete is idempotent.
func (d *PermissionDAO) Delete(ctx context.Context, name string) error {
	normalized := application.NormalizeName(name)
	if normalized == "" {
		return domainagg.NewError(domainagg.CodeValidation, opPermissionDelete, "permission name is required", nil)
	}
	return executeWrite(ctx, d.deps, opPermissionDelete, func(dbc dbctx.Context) error {
		_, err := d.repo.DeleteByName(dbc, normalized)
		return err
	})
}
