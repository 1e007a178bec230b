package application

import (
	"strings"
)

// Application is the registry entry for a deployable application. Name is the
// identity; Details is an open attribute bag serialized inline with the fixed fields.
type Application struct {
	Name        string
	Description *string
	Email       *string
	Accounts    *string
	CreateTs    string
	UpdateTs    string
	Details     map[string]any
}

// New returns an empty application with the given (un-normalized) name.
func New(name string) *Application {
	return &Application{Name: name, Details: map[string]any{}}
}

// NormalizeName is the persistence form of an application name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ID is the lower-cased name.
func (a *Application) ID() string {
	if a == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(a.Name))
}

// Clone returns a deep copy. A nil receiver clones to nil.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	return &Application{
		Name:        a.Name,
		Description: clonePtr(a.Description),
		Email:       clonePtr(a.Email),
		Accounts:    clonePtr(a.Accounts),
		CreateTs:    a.CreateTs,
		UpdateTs:    a.UpdateTs,
		Details:     cloneDetails(a.Details),
	}
}

// Clear resets every persisted field, details included.
func (a *Application) Clear() {
	if a == nil {
		return
	}
	a.Name = ""
	a.Description = nil
	a.Email = nil
	a.Accounts = nil
	a.CreateTs = ""
	a.UpdateTs = ""
	a.Details = map[string]any{}
}

// Initialize resets the receiver and, when from is non-nil, copies it in.
func (a *Application) Initialize(from *Application) *Application {
	a.Clear()
	if from == nil {
		return a
	}
	c := from.Clone()
	*a = *c
	if a.Details == nil {
		a.Details = map[string]any{}
	}
	return a
}

// MergeDetails copies into a every details key present in source but absent in a.
// Keys already on a keep their value.
func (a *Application) MergeDetails(source *Application) {
	if a == nil || source == nil || len(source.Details) == 0 {
		return
	}
	if a.Details == nil {
		a.Details = make(map[string]any, len(source.Details))
	}
	for k, v := range source.Details {
		if _, ok := a.Details[k]; ok {
			continue
		}
		a.Details[k] = cloneValue(v)
	}
}

// FillBlanks takes description, email and accounts from source where a has none.
func (a *Application) FillBlanks(source *Application) {
	if a == nil || source == nil {
		return
	}
	if isBlank(a.Description) {
		a.Description = clonePtr(source.Description)
	}
	if isBlank(a.Email) {
		a.Email = clonePtr(source.Email)
	}
	if isBlank(a.Accounts) {
		a.Accounts = clonePtr(source.Accounts)
	}
}

func (a *Application) Detail(key string) (any, bool) {
	if a == nil || a.Details == nil {
		return nil, false
	}
	v, ok := a.Details[key]
	return v, ok
}

func (a *Application) SetDetail(key string, value any) {
	if a.Details == nil {
		a.Details = map[string]any{}
	}
	a.Details[key] = value
}

// StringPtr is a convenience for the nullable fields.
func StringPtr(s string) *string { return &s }

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneDetails(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDetails(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
