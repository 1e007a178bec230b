package application

import "context"

// DAO is the persistence boundary for applications. Implementations upper-case
// names before touching storage and report lookup misses with a not_found
// aggregates error.
type DAO interface {
	Create(ctx context.Context, name string, app *Application) (*Application, error)
	Update(ctx context.Context, name string, app *Application) (*Application, error)
	Delete(ctx context.Context, name string) error
	FindByName(ctx context.Context, name string) (*Application, error)
	All(ctx context.Context) ([]*Application, error)
	Search(ctx context.Context, params map[string]string) ([]*Application, error)
}

// PermissionDAO is the persistence boundary for permissions.
type PermissionDAO interface {
	Upsert(ctx context.Context, perm *Permission) (*Permission, error)
	FindByName(ctx context.Context, name string) (*Permission, error)
	All(ctx context.Context) ([]*Permission, error)
	Delete(ctx context.Context, name string) error
}
