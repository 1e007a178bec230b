// Package memstore is an in-process implementation of the application and
// permission DAOs. State lives in maps guarded by one RWMutex; every value is
// cloned on the way in and out so callers never share memory with the store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
)

type Store struct {
	mu    sync.RWMutex
	apps  map[string]*application.Application
	clock func() time.Time
}

var _ application.DAO = (*Store)(nil)

func New(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		apps:  map[string]*application.Application{},
		clock: clock,
	}
}

func (s *Store) nowMillis() string {
	return application.FormatMillis(s.clock().UnixMilli())
}

func (s *Store) Create(_ context.Context, name string, app *application.Application) (*application.Application, error) {
	const op = "memstore.application.create"
	key := application.NormalizeName(name)
	if key == "" || app == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "application name is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[key]; ok {
		return nil, domainagg.AlreadyExists(op, "application %s already exists", key)
	}
	stored := app.Clone()
	stored.Name = key
	now := s.nowMillis()
	if application.ParseMillis(stored.CreateTs) == 0 {
		stored.CreateTs = now
	}
	stored.UpdateTs = now
	s.apps[key] = stored
	return stored.Clone(), nil
}

func (s *Store) Update(_ context.Context, name string, app *application.Application) (*application.Application, error) {
	const op = "memstore.application.update"
	key := application.NormalizeName(name)
	if key == "" || app == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "application name is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.apps[key]
	if !ok {
		return nil, domainagg.NotFound(op, "no application found for name %s", key)
	}
	stored := app.Clone()
	stored.Name = key
	stored.CreateTs = existing.CreateTs
	stored.UpdateTs = s.nowMillis()
	s.apps[key] = stored
	return stored.Clone(), nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	const op = "memstore.application.delete"
	key := application.NormalizeName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[key]; !ok {
		return domainagg.NotFound(op, "no application found for name %s", key)
	}
	delete(s.apps, key)
	return nil
}

func (s *Store) FindByName(_ context.Context, name string) (*application.Application, error) {
	const op = "memstore.application.find"
	key := application.NormalizeName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[key]
	if !ok || key == "" {
		return nil, domainagg.NotFound(op, "no application found for name %s", key)
	}
	return app.Clone(), nil
}

func (s *Store) All(_ context.Context) ([]*application.Application, error) {
	apps := s.snapshot()
	if len(apps) == 0 {
		return nil, domainagg.NotFound("memstore.application.list", "no applications available")
	}
	return apps, nil
}

func (s *Store) Search(_ context.Context, params map[string]string) ([]*application.Application, error) {
	hits := application.Filter(s.snapshot(), params)
	if len(hits) == 0 {
		return nil, domainagg.NotFound("memstore.application.search", "no applications found for search criteria %v", params)
	}
	return hits, nil
}

func (s *Store) snapshot() []*application.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*application.Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, app.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
