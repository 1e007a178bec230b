package services

import (
	"context"
	"strings"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/pipeline"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
	"github.com/yungbote/appregistry-backend/internal/validation"
)

const (
	opSave   = "application.save"
	opUpdate = "application.update"
	opDelete = "application.delete"
)

type ApplicationService interface {
	Save(ctx context.Context, app *application.Application) (*application.Application, error)
	Update(ctx context.Context, app *application.Application) (*application.Application, error)
	Delete(ctx context.Context, name string) error
	FindByName(ctx context.Context, name string) (*application.Application, error)
	FindAll(ctx context.Context) ([]*application.Application, error)
	Search(ctx context.Context, params map[string]string) ([]*application.Application, error)
}

type applicationService struct {
	log        *logger.Logger
	dao        application.DAO
	validators validation.Set
	listeners  *lifecycle.Registry[*application.Application]
	observer   pipeline.Observer
}

// NewApplicationService wires the mutation pipeline around dao. listeners and
// observer may be nil.
func NewApplicationService(
	log *logger.Logger,
	dao application.DAO,
	validators validation.Set,
	listeners *lifecycle.Registry[*application.Application],
	observer pipeline.Observer,
) ApplicationService {
	serviceLog := log.With("service", "ApplicationService")
	if listeners == nil {
		listeners = lifecycle.NewRegistry[*application.Application]()
	}
	return &applicationService{
		log:        serviceLog,
		dao:        dao,
		validators: validators,
		listeners:  listeners,
		observer:   observer,
	}
}

func (s *applicationService) Save(ctx context.Context, app *application.Application) (*application.Application, error) {
	if app == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, opSave, "application is required", nil)
	}
	candidate := app.Clone()
	if err := s.validators.Validate(opSave, candidate); err != nil {
		return nil, err
	}

	existing, err := s.dao.FindByName(ctx, candidate.Name)
	switch {
	case err == nil && existing != nil:
		return nil, domainagg.AlreadyExists(opSave, "application %s already exists", application.NormalizeName(candidate.Name))
	case err != nil && !domainagg.IsNotFound(err):
		return nil, err
	}

	created := false
	return pipeline.Perform(ctx, pipeline.Params[*application.Application]{
		Op:   opSave,
		Pre:  s.listeners.For(lifecycle.PreCreate),
		Post: s.listeners.For(lifecycle.PostCreate),
		Action: func(ctx context.Context, _, c *application.Application) (*application.Application, error) {
			out, err := s.dao.Create(ctx, c.Name, c)
			if err != nil {
				return nil, err
			}
			created = true
			return out, nil
		},
		Rollback: func(ctx context.Context, _, c *application.Application) error {
			// Nothing to remove when the create never landed.
			if !created {
				return nil
			}
			return s.dao.Delete(ctx, c.Name)
		},
		Original:  nil,
		Candidate: candidate,
		Log:       s.log,
		Observer:  s.observer,
	})
}

func (s *applicationService) Update(ctx context.Context, app *application.Application) (*application.Application, error) {
	if app == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, opUpdate, "application is required", nil)
	}
	current, err := s.dao.FindByName(ctx, app.Name)
	if err != nil {
		return nil, err
	}

	candidate := app.Clone()
	candidate.Name = current.Name
	candidate.CreateTs = current.CreateTs
	candidate.FillBlanks(current)
	candidate.MergeDetails(current)
	if err := s.validators.Validate(opUpdate, candidate); err != nil {
		return nil, err
	}

	return pipeline.Perform(ctx, pipeline.Params[*application.Application]{
		Op:   opUpdate,
		Pre:  s.listeners.For(lifecycle.PreUpdate),
		Post: s.listeners.For(lifecycle.PostUpdate),
		Action: func(ctx context.Context, o, c *application.Application) (*application.Application, error) {
			return s.dao.Update(ctx, o.Name, c)
		},
		Rollback: func(ctx context.Context, o, _ *application.Application) error {
			_, err := s.dao.Update(ctx, o.Name, o)
			return err
		},
		Original:  current,
		Candidate: candidate,
		Log:       s.log,
		Observer:  s.observer,
	})
}

func (s *applicationService) Delete(ctx context.Context, name string) error {
	current, err := s.dao.FindByName(ctx, name)
	if err != nil {
		if domainagg.IsNotFound(err) {
			s.log.Warn("Application does not exist, nothing to delete", "name", name)
			return nil
		}
		return err
	}

	deleted := false
	_, err = pipeline.Perform(ctx, pipeline.Params[*application.Application]{
		Op:   opDelete,
		Pre:  s.listeners.For(lifecycle.PreDelete),
		Post: s.listeners.For(lifecycle.PostDelete),
		Action: func(ctx context.Context, o, _ *application.Application) (*application.Application, error) {
			if err := s.dao.Delete(ctx, o.Name); err != nil {
				return nil, err
			}
			deleted = true
			return o, nil
		},
		Rollback: func(ctx context.Context, o, _ *application.Application) error {
			if !deleted {
				return nil
			}
			_, err := s.dao.Create(ctx, o.Name, o)
			return err
		},
		Original:  current,
		Candidate: current.Clone(),
		Log:       s.log,
		Observer:  s.observer,
	})
	return err
}

func (s *applicationService) FindByName(ctx context.Context, name string) (*application.Application, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainagg.NotFound("application.find", "no application found for blank name")
	}
	return s.dao.FindByName(ctx, name)
}

func (s *applicationService) FindAll(ctx context.Context) ([]*application.Application, error) {
	apps, err := s.dao.All(ctx)
	if domainagg.IsNotFound(err) {
		return []*application.Application{}, nil
	}
	return apps, err
}

func (s *applicationService) Search(ctx context.Context, params map[string]string) ([]*application.Application, error) {
	apps, err := s.dao.Search(ctx, params)
	if domainagg.IsNotFound(err) {
		return []*application.Application{}, nil
	}
	return apps, err
}
