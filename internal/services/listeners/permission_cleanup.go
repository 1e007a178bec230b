package listeners

import (
	"context"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/pipeline"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

// PermissionCleanup removes an application's permission once the application
// is deleted and puts it back if that same delete is rolled back. The removed
// permission is kept in the pipeline stash of the delete call, never on the
// listener.
type PermissionCleanup struct {
	log   *logger.Logger
	perms application.PermissionDAO
}

type removedPermissionKey struct {
	owner *PermissionCleanup
	name  string
}

func NewPermissionCleanup(log *logger.Logger, perms application.PermissionDAO) *PermissionCleanup {
	return &PermissionCleanup{
		log:   log.With("listener", "permission_cleanup"),
		perms: perms,
	}
}

func (l *PermissionCleanup) Name() string { return "permission_cleanup" }

func (l *PermissionCleanup) Supports(phase lifecycle.Phase) bool {
	return phase == lifecycle.PostDelete
}

func (l *PermissionCleanup) Apply(ctx context.Context, original, candidate *application.Application) (*application.Application, error) {
	if original == nil {
		return candidate, nil
	}
	key := application.NormalizeName(original.Name)
	perm, err := l.perms.FindByName(ctx, key)
	if err != nil {
		if domainagg.IsNotFound(err) {
			return candidate, nil
		}
		return nil, err
	}
	if err := l.perms.Delete(ctx, key); err != nil {
		return nil, err
	}
	if st := pipeline.Stash(ctx); st != nil {
		st.Store(removedPermissionKey{owner: l, name: key}, perm)
	}
	l.log.Info("Removed permission for deleted application", "application", key)
	return candidate, nil
}

func (l *PermissionCleanup) Rollback(ctx context.Context, original *application.Application) error {
	if original == nil {
		return nil
	}
	st := pipeline.Stash(ctx)
	if st == nil {
		return nil
	}
	key := application.NormalizeName(original.Name)
	v, ok := st.LoadAndDelete(removedPermissionKey{owner: l, name: key})
	if !ok {
		return nil
	}
	if _, err := l.perms.Upsert(ctx, v.(*application.Permission)); err != nil {
		return err
	}
	l.log.Info("Restored permission for rolled back delete", "application", key)
	return nil
}
