package validation

import (
	"fmt"
	"strings"
)

const (
	CodeRequired = "required"
	CodeInvalid  = "invalid"
	CodeReserved = "reserved"
)

// FieldError is a rejection tied to one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GlobalError is a rejection of the application as a whole.
type GlobalError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors collects rejections from every validator run against one application.
type Errors struct {
	Fields []FieldError  `json:"fields,omitempty"`
	Global []GlobalError `json:"global,omitempty"`
}

func (e *Errors) RejectValue(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *Errors) Reject(code, message string) {
	e.Global = append(e.Global, GlobalError{Code: code, Message: message})
}

func (e *Errors) HasErrors() bool {
	return e != nil && (len(e.Fields) > 0 || len(e.Global) > 0)
}

// FieldErrors returns the rejections recorded against field.
func (e *Errors) FieldErrors(field string) []FieldError {
	if e == nil {
		return nil
	}
	var out []FieldError
	for _, fe := range e.Fields {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

func (e *Errors) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Fields)+len(e.Global))
	for _, g := range e.Global {
		parts = append(parts, g.Message)
	}
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
