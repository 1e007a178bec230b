package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
)

type PermissionStore struct {
	mu    sync.RWMutex
	perms map[string]*application.Permission
	clock func() time.Time
}

var _ application.PermissionDAO = (*PermissionStore)(nil)

func NewPermissions(clock func() time.Time) *PermissionStore {
	if clock == nil {
		clock = time.Now
	}
	return &PermissionStore{perms: map[string]*application.Permission{}, clock: clock}
}

func (s *PermissionStore) Upsert(_ context.Context, perm *application.Permission) (*application.Permission, error) {
	if perm == nil || application.NormalizeName(perm.Name) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "memstore.permission.upsert", "permission name is required", nil)
	}
	stored := perm.Clone()
	stored.Name = application.NormalizeName(perm.Name)
	stored.RequiredGroupMembership = perm.NormalizedGroups()
	if stored.LastModified == 0 {
		stored.LastModified = s.clock().UnixMilli()
	}
	s.mu.Lock()
	s.perms[stored.Name] = stored
	s.mu.Unlock()
	return stored.Clone(), nil
}

func (s *PermissionStore) FindByName(_ context.Context, name string) (*application.Permission, error) {
	key := application.NormalizeName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.perms[key]
	if !ok {
		return nil, domainagg.NotFound("memstore.permission.find", "no permission found for name %s", key)
	}
	return p.Clone(), nil
}

func (s *PermissionStore) All(_ context.Context) ([]*application.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*application.Permission, 0, len(s.perms))
	for _, p := range s.perms {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *PermissionStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.perms, application.NormalizeName(name))
	s.mu.Unlock()
	return nil
}
