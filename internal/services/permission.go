package services

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/platform/ctxutil"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

const anonymousSubject = "anonymous"

type PermissionService interface {
	Get(ctx context.Context, name string) (*application.Permission, error)
	List(ctx context.Context) ([]*application.Permission, error)
	Put(ctx context.Context, name string, perm *application.Permission) (*application.Permission, error)
	Delete(ctx context.Context, name string) error
}

type permissionService struct {
	log   *logger.Logger
	dao   application.PermissionDAO
	clock func() time.Time
}

func NewPermissionService(log *logger.Logger, dao application.PermissionDAO, clock func() time.Time) PermissionService {
	if clock == nil {
		clock = time.Now
	}
	return &permissionService{log: log.With("service", "PermissionService"), dao: dao, clock: clock}
}

func (s *permissionService) Get(ctx context.Context, name string) (*application.Permission, error) {
	return s.dao.FindByName(ctx, name)
}

func (s *permissionService) List(ctx context.Context) ([]*application.Permission, error) {
	return s.dao.All(ctx)
}

// Put replaces the permission for name, stamping who changed it and when.
func (s *permissionService) Put(ctx context.Context, name string, perm *application.Permission) (*application.Permission, error) {
	const op = "permission.put"
	if perm == nil {
		perm = &application.Permission{}
	}
	next := perm.Clone()
	if body := strings.TrimSpace(next.Name); body != "" && !strings.EqualFold(body, strings.TrimSpace(name)) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "permission name does not match the path", nil)
	}
	next.Name = name
	next.LastModified = s.clock().UnixMilli()
	next.LastModifiedBy = ctxutil.SubjectOr(ctx, anonymousSubject)
	saved, err := s.dao.Upsert(ctx, next)
	if err != nil {
		return nil, err
	}
	s.log.Info("Permission updated", "name", saved.Name, "last_modified_by", saved.LastModifiedBy)
	return saved, nil
}

func (s *permissionService) Delete(ctx context.Context, name string) error {
	return s.dao.Delete(ctx, name)
}
