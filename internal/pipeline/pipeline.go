// Package pipeline sequences a mutation: pre listeners, the action, post listeners,
// and best-effort compensation when any step fails.
package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/appregistry-backend/internal/pipeline"

// Cloner is satisfied by entities that can hand out independent copies.
// Clone on a nil pointer receiver must return nil.
type Cloner[T any] interface {
	Clone() T
}

// Action performs the mutation and returns the next candidate.
type Action[T any] func(ctx context.Context, original, candidate T) (T, error)

// RollbackFunc undoes Action after a failure.
type RollbackFunc[T any] func(ctx context.Context, original, candidate T) error

// Observer receives compensation outcomes. status is "success" or "failure".
type Observer interface {
	ObserveRollback(op, target, status string)
}

type stashKey struct{}

// Stash returns the scratch space of the Perform call that owns ctx, or nil
// outside Perform. A listener can keep state there between Apply and Rollback;
// it is dropped when the call returns.
func Stash(ctx context.Context) *sync.Map {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(stashKey{}).(*sync.Map)
	return m
}

type Params[T Cloner[T]] struct {
	Op        string
	Pre       []lifecycle.Listener[T]
	Post      []lifecycle.Listener[T]
	Action    Action[T]
	Rollback  RollbackFunc[T]
	Original  T
	Candidate T
	Log       *logger.Logger
	Observer  Observer
}

// Perform runs the mutation described by p. Every listener and the action get
// fresh copies of the original snapshot and the candidate; only return values
// move forward. On failure, listeners that completed are rolled back in the
// order they ran, then p.Rollback runs; their errors are logged and never
// returned. The returned error is a *Error wrapping the first failure.
func Perform[T Cloner[T]](ctx context.Context, p Params[T]) (T, error) {
	op := strings.TrimSpace(p.Op)
	if op == "" {
		op = "pipeline.perform"
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline."+op)
	defer span.End()
	ctx = context.WithValue(ctx, stashKey{}, &sync.Map{})
	span.SetAttributes(
		attribute.Int("pipeline.pre_listeners", len(p.Pre)),
		attribute.Int("pipeline.post_listeners", len(p.Post)),
	)

	snapshot := p.Original.Clone()
	candidate := p.Candidate
	invoked := make([]lifecycle.Listener[T], 0, len(p.Pre)+len(p.Post))

	fail := func(stage string, cause error) (T, error) {
		span.RecordError(cause)
		span.SetStatus(codes.Error, stage)
		compensate(ctx, op, p, invoked, snapshot, candidate)
		var zero T
		return zero, &Error{Op: op, Stage: stage, Cause: cause}
	}

	for _, l := range p.Pre {
		next, err := l.Apply(ctx, snapshot.Clone(), candidate.Clone())
		if err == nil && isNil(next) {
			err = ErrNilCandidate
		}
		if err != nil {
			return fail("pre:"+lifecycle.NameOf(l), err)
		}
		candidate = next
		invoked = append(invoked, l)
	}

	if p.Action == nil {
		return fail("action", ErrNoAction)
	}
	next, err := p.Action(ctx, snapshot.Clone(), candidate.Clone())
	if err == nil && isNil(next) {
		err = ErrNilCandidate
	}
	if err != nil {
		return fail("action", err)
	}
	candidate = next
	span.AddEvent("action.done")

	for _, l := range p.Post {
		next, err := l.Apply(ctx, snapshot.Clone(), candidate.Clone())
		if err == nil && isNil(next) {
			err = ErrNilCandidate
		}
		if err != nil {
			return fail("post:"+lifecycle.NameOf(l), err)
		}
		candidate = next
		invoked = append(invoked, l)
	}

	return candidate, nil
}

func compensate[T Cloner[T]](ctx context.Context, op string, p Params[T], invoked []lifecycle.Listener[T], snapshot, candidate T) {
	// Compensation must run even if the caller's context is already cancelled.
	ctx = context.WithoutCancel(ctx)

	for _, l := range invoked {
		name := lifecycle.NameOf(l)
		if err := l.Rollback(ctx, snapshot.Clone()); err != nil {
			p.Log.Warn("listener rollback failed", "op", op, "listener", name, "error", err)
			observe(p.Observer, op, name, err)
			continue
		}
		observe(p.Observer, op, name, nil)
	}

	if p.Rollback == nil {
		return
	}
	if err := p.Rollback(ctx, snapshot.Clone(), candidate.Clone()); err != nil {
		p.Log.Error("rollback action failed", "op", op, "error", err)
		observe(p.Observer, op, "action", err)
		return
	}
	observe(p.Observer, op, "action", nil)
}

func observe(o Observer, op, target string, err error) {
	if o == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	o.ObserveRollback(op, target, status)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// StageOf returns the failing stage when err came from Perform.
func StageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
