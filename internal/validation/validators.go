// Package validation holds the checks an application must pass before it is
// written. Validators never stop at the first problem; they all record into one
// Errors value.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
)

var appNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validator inspects app and records rejections into errs.
type Validator interface {
	Validate(app *application.Application, errs *Errors)
}

// Func adapts a plain function into a Validator.
type Func func(app *application.Application, errs *Errors)

func (f Func) Validate(app *application.Application, errs *Errors) { f(app, errs) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("app_name", func(fl validator.FieldLevel) bool {
		return appNameRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register app_name validation: %v", err))
	}
	return v
}

type NameValidator struct {
	MaxLength int
}

func (v NameValidator) Validate(app *application.Application, errs *Errors) {
	name := ""
	if app != nil {
		name = strings.TrimSpace(app.Name)
	}
	if name == "" {
		errs.RejectValue("name", CodeRequired, "application name is required")
		return
	}
	if err := validate.Var(name, "app_name"); err != nil {
		errs.RejectValue("name", CodeInvalid, "application name may only contain letters, digits, '.', '_' and '-'")
	}
	if v.MaxLength > 0 {
		if err := validate.Var(name, fmt.Sprintf("max=%d", v.MaxLength)); err != nil {
			errs.RejectValue("name", CodeInvalid, fmt.Sprintf("application name must be at most %d characters", v.MaxLength))
		}
	}
}

type EmailValidator struct {
	Required bool
}

func (v EmailValidator) Validate(app *application.Application, errs *Errors) {
	if app == nil || app.Email == nil || strings.TrimSpace(*app.Email) == "" {
		if v.Required {
			errs.RejectValue("email", CodeRequired, "email is required")
		}
		return
	}
	if err := validate.Var(strings.TrimSpace(*app.Email), "email"); err != nil {
		errs.RejectValue("email", CodeInvalid, "email is not a valid address")
	}
}

type DetailsValidator struct{}

func (DetailsValidator) Validate(app *application.Application, errs *Errors) {
	if app == nil {
		return
	}
	for k := range app.Details {
		switch {
		case strings.TrimSpace(k) == "":
			errs.RejectValue("details", CodeInvalid, "detail keys must not be blank")
		case application.IsReservedField(k):
			errs.RejectValue(k, CodeReserved, fmt.Sprintf("%q is a reserved attribute and cannot be used as a detail", k))
		}
	}
}

// Set runs validators in order.
type Set []Validator

type Options struct {
	RequireEmail  bool
	MaxNameLength int
}

// DefaultSet is the validator chain the service uses unless configured otherwise.
func DefaultSet(opts Options) Set {
	return Set{
		NameValidator{MaxLength: opts.MaxNameLength},
		EmailValidator{Required: opts.RequireEmail},
		DetailsValidator{},
	}
}

// Validate runs every validator and, when any rejected, returns a validation
// error that unwraps to *Errors.
func (s Set) Validate(op string, app *application.Application) error {
	errs := &Errors{}
	for _, v := range s {
		if v == nil {
			continue
		}
		v.Validate(app, errs)
	}
	if !errs.HasErrors() {
		return nil
	}
	return domainagg.NewError(domainagg.CodeValidation, op, "application failed validation", errs)
}
