package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Code: CodeNotFound, Op: "Applications.FindByName", Message: "FOO"}, "Applications.FindByName: FOO (not_found)"},
		{&Error{Code: CodeConflict, Op: "op"}, "op (conflict)"},
		{&Error{Code: CodeInternal, Message: "boom"}, "boom (internal)"},
		{&Error{Code: CodeValidation}, "validation"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error(): want=%q got=%q", tc.want, got)
		}
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := NotFound("op", "application %s not found", "FOO")
	wrapped := fmt.Errorf("lookup: %w", base)
	if !IsNotFound(wrapped) {
		t.Fatalf("expected not_found through fmt wrapping, got=%v", wrapped)
	}
	if CodeOf(wrapped) != CodeNotFound {
		t.Fatalf("CodeOf: got=%q", CodeOf(wrapped))
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors carry no code")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
}

func TestAlreadyExistsUnwrapsCause(t *testing.T) {
	cause := errors.New("dup")
	err := NewError(CodeAlreadyExists, "op", "exists", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if !IsCode(AlreadyExists("op", "x"), CodeAlreadyExists) {
		t.Fatalf("AlreadyExists helper must carry its code")
	}
}
