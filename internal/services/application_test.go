package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/appregistry-backend/internal/data/memstore"
	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
	"github.com/yungbote/appregistry-backend/internal/validation"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type testListener struct {
	name   string
	phases lifecycle.PhaseSet
	log    *eventLog
	fail   error
	apply  func(candidate *application.Application)
}

func (l *testListener) Name() string                    { return l.name }
func (l *testListener) Supports(p lifecycle.Phase) bool { return l.phases.Supports(p) }

func (l *testListener) Apply(_ context.Context, _, candidate *application.Application) (*application.Application, error) {
	l.log.add("apply:" + l.name)
	if l.fail != nil {
		return nil, l.fail
	}
	if l.apply != nil {
		l.apply(candidate)
	}
	return candidate, nil
}

func (l *testListener) Rollback(context.Context, *application.Application) error {
	l.log.add("rollback:" + l.name)
	return nil
}

// faultDAO wraps a DAO and fails selected calls.
type faultDAO struct {
	application.DAO
	log       *eventLog
	createErr error
	updateErr error
	// failUpdateCall fails the nth Update call (1-based) when set.
	failUpdateCall int
	updateCalls    int
	deleteErr error
	findErr   error
}

func (d *faultDAO) Create(ctx context.Context, name string, app *application.Application) (*application.Application, error) {
	d.log.add("dao.create:" + name)
	if d.createErr != nil {
		return nil, d.createErr
	}
	return d.DAO.Create(ctx, name, app)
}

func (d *faultDAO) Update(ctx context.Context, name string, app *application.Application) (*application.Application, error) {
	d.log.add("dao.update:" + name)
	d.updateCalls++
	if d.updateErr != nil && (d.failUpdateCall == 0 || d.failUpdateCall == d.updateCalls) {
		return nil, d.updateErr
	}
	return d.DAO.Update(ctx, name, app)
}

func (d *faultDAO) Delete(ctx context.Context, name string) error {
	d.log.add("dao.delete:" + name)
	if d.deleteErr != nil {
		return d.deleteErr
	}
	return d.DAO.Delete(ctx, name)
}

func (d *faultDAO) FindByName(ctx context.Context, name string) (*application.Application, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	return d.DAO.FindByName(ctx, name)
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveRollback(op, target, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, op+"/"+target+"/"+status)
}

type fixture struct {
	svc      ApplicationService
	store    *memstore.Store
	dao      *faultDAO
	log      *eventLog
	registry *lifecycle.Registry[*application.Application]
	observer *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New(func() time.Time { return time.UnixMilli(1700000000000) })
	events := &eventLog{}
	dao := &faultDAO{DAO: store, log: events}
	reg := lifecycle.NewRegistry[*application.Application]()
	obs := &recordingObserver{}
	svc := NewApplicationService(logger.NewNop(), dao, validation.DefaultSet(validation.Options{}), reg, obs)
	return &fixture{svc: svc, store: store, dao: dao, log: events, registry: reg, observer: obs}
}

func (f *fixture) listen(name string, fail error, phases ...lifecycle.Phase) *testListener {
	l := &testListener{name: name, phases: lifecycle.NewPhaseSet(phases...), log: f.log, fail: fail}
	f.registry.Register(l)
	return l
}

func (f *fixture) seed(t *testing.T, app *application.Application) {
	t.Helper()
	if _, err := f.store.Create(context.Background(), app.Name, app); err != nil {
		t.Fatalf("seed %s: %v", app.Name, err)
	}
}

func TestSaveThenFindIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, application.New("foo"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Name != "FOO" {
		t.Fatalf("saved name: want=FOO got=%s", saved.Name)
	}
	found, err := f.svc.FindByName(ctx, "FOO")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found.Name != "FOO" || found.ID() != "foo" {
		t.Fatalf("found: name=%s id=%s", found.Name, found.ID())
	}
}

func TestSaveRunsListenersAroundCreate(t *testing.T) {
	f := newFixture(t)
	pre := f.listen("stamp", nil, lifecycle.PreCreate)
	pre.apply = func(c *application.Application) { c.SetDetail("stamped", true) }
	f.listen("notify", nil, lifecycle.PostCreate)
	f.listen("update-only", nil, lifecycle.PreUpdate)

	saved, err := f.svc.Save(context.Background(), application.New("foo"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Details["stamped"] != true {
		t.Fatalf("pre listener output must reach the DAO: %+v", saved.Details)
	}
	want := []string{"apply:stamp", "dao.create:foo", "apply:notify"}
	if got := f.log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
}

func TestSaveExistingIsAlreadyExists(t *testing.T) {
	f := newFixture(t)
	f.seed(t, application.New("foo"))
	f.listen("pre", nil, lifecycle.PreCreate)

	_, err := f.svc.Save(context.Background(), application.New("Foo"))
	if !domainagg.IsCode(err, domainagg.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
	if len(f.log.snapshot()) != 0 {
		t.Fatalf("no listener or DAO write may run: %v", f.log.snapshot())
	}
}

func TestSaveValidationFailureTouchesNothing(t *testing.T) {
	f := newFixture(t)
	f.listen("pre", nil, lifecycle.PreCreate)

	app := application.New("bad name!")
	app.Email = application.StringPtr("nope")
	_, err := f.svc.Save(context.Background(), app)
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verrs *validation.Errors
	if !errors.As(err, &verrs) || len(verrs.Fields) != 2 {
		t.Fatalf("expected both field errors, got %v", err)
	}
	if len(f.log.snapshot()) != 0 {
		t.Fatalf("nothing may run after validation failure: %v", f.log.snapshot())
	}
}

func TestSaveProbeErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("store unavailable")
	f.dao.findErr = boom
	if _, err := f.svc.Save(context.Background(), application.New("foo")); !errors.Is(err, boom) {
		t.Fatalf("expected probe error, got %v", err)
	}
}

func TestSaveCreateFailureRollsBackInvokedListeners(t *testing.T) {
	f := newFixture(t)
	f.listen("pre1", nil, lifecycle.PreCreate)
	f.listen("pre2", nil, lifecycle.PreCreate)
	f.listen("post", nil, lifecycle.PostCreate)
	boom := errors.New("write rejected")
	f.dao.createErr = boom

	_, err := f.svc.Save(context.Background(), application.New("foo"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	want := []string{"apply:pre1", "apply:pre2", "dao.create:foo", "rollback:pre1", "rollback:pre2"}
	if got := f.log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
}

func TestSavePostListenerFailureDeletesCreatedApplication(t *testing.T) {
	f := newFixture(t)
	f.listen("pre", nil, lifecycle.PreCreate)
	boom := errors.New("publish failed")
	f.listen("post", boom, lifecycle.PostCreate)

	_, err := f.svc.Save(context.Background(), application.New("foo"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected post listener error, got %v", err)
	}
	want := []string{"apply:pre", "dao.create:foo", "apply:post", "rollback:pre", "dao.delete:FOO"}
	if got := f.log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
	if _, err := f.svc.FindByName(context.Background(), "foo"); !domainagg.IsNotFound(err) {
		t.Fatalf("rolled back application must be gone, got %v", err)
	}
	if len(f.observer.calls) != 2 || f.observer.calls[1] != "application.save/action/success" {
		t.Fatalf("observer: %v", f.observer.calls)
	}
}

func TestUpdatePreservesIdentityAndMerges(t *testing.T) {
	f := newFixture(t)
	current := application.New("foo")
	current.Description = application.StringPtr("original")
	current.Email = application.StringPtr("old@example.com")
	current.Details["owner"] = "team-a"
	current.Details["repo"] = "git"
	f.seed(t, current)
	stored, _ := f.store.FindByName(context.Background(), "foo")

	next := application.New("FOO")
	next.CreateTs = "1"
	next.Email = application.StringPtr("new@example.com")
	next.Details["owner"] = "team-b"

	updated, err := f.svc.Update(context.Background(), next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "FOO" || updated.CreateTs != stored.CreateTs {
		t.Fatalf("identity not preserved: %+v", updated)
	}
	if updated.Description == nil || *updated.Description != "original" {
		t.Fatalf("blank description must be filled from current")
	}
	if *updated.Email != "new@example.com" {
		t.Fatalf("provided email must win")
	}
	if updated.Details["owner"] != "team-b" || updated.Details["repo"] != "git" {
		t.Fatalf("details merge: %+v", updated.Details)
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Update(context.Background(), application.New("ghost")); !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestUpdateFailureRestoresOriginal(t *testing.T) {
	f := newFixture(t)
	current := application.New("foo")
	current.Description = application.StringPtr("v1")
	f.seed(t, current)
	boom := errors.New("post update failed")
	f.listen("post", boom, lifecycle.PostUpdate)

	next := application.New("foo")
	next.Description = application.StringPtr("v2")
	if _, err := f.svc.Update(context.Background(), next); !errors.Is(err, boom) {
		t.Fatalf("expected post error, got %v", err)
	}
	got, err := f.store.FindByName(context.Background(), "foo")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if *got.Description != "v1" {
		t.Fatalf("original must be restored, got %q", *got.Description)
	}
	want := []string{"dao.update:FOO", "apply:post", "dao.update:FOO"}
	if got := f.log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
}

func TestUpdateRollbackFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, application.New("foo"))
	boom := errors.New("post update failed")
	f.listen("post", boom, lifecycle.PostUpdate)

	f.dao.updateErr = errors.New("restore refused")
	f.dao.failUpdateCall = 2

	next := application.New("foo")
	next.Description = application.StringPtr("v2")
	_, err := f.svc.Update(context.Background(), next)
	if !errors.Is(err, boom) {
		t.Fatalf("the listener error must surface, got %v", err)
	}
	if errors.Is(err, f.dao.updateErr) {
		t.Fatalf("rollback errors must not be returned")
	}
	last := f.observer.calls[len(f.observer.calls)-1]
	if last != "application.update/action/failure" {
		t.Fatalf("observer: %v", f.observer.calls)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	f := newFixture(t)
	f.listen("pre", nil, lifecycle.PreDelete)
	if err := f.svc.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("delete of missing must succeed, got %v", err)
	}
	if len(f.log.snapshot()) != 0 {
		t.Fatalf("no listener may run for a missing application: %v", f.log.snapshot())
	}
}

func TestDeleteRemovesAndRunsListeners(t *testing.T) {
	f := newFixture(t)
	f.seed(t, application.New("foo"))
	f.listen("pre", nil, lifecycle.PreDelete)
	f.listen("post", nil, lifecycle.PostDelete)

	if err := f.svc.Delete(context.Background(), "Foo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := []string{"apply:pre", "dao.delete:FOO", "apply:post"}
	if got := f.log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
	if _, err := f.svc.FindByName(context.Background(), "foo"); !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found after delete, got %v", err)
	}
}

func TestDeletePostFailureRecreates(t *testing.T) {
	f := newFixture(t)
	seeded := application.New("foo")
	seeded.Details["owner"] = "team-a"
	f.seed(t, seeded)
	boom := errors.New("post delete failed")
	f.listen("post", boom, lifecycle.PostDelete)

	if err := f.svc.Delete(context.Background(), "foo"); !errors.Is(err, boom) {
		t.Fatalf("expected post error, got %v", err)
	}
	got, err := f.store.FindByName(context.Background(), "foo")
	if err != nil {
		t.Fatalf("application must be recreated: %v", err)
	}
	if got.Details["owner"] != "team-a" || got.CreateTs != "1700000000000" {
		t.Fatalf("recreated application lost state: %+v", got)
	}
}

func TestDeleteActionFailureSkipsRecreate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, application.New("foo"))
	boom := errors.New("delete refused")
	f.dao.deleteErr = boom

	if err := f.svc.Delete(context.Background(), "foo"); !errors.Is(err, boom) {
		t.Fatalf("expected delete error, got %v", err)
	}
	for _, e := range f.log.snapshot() {
		if e == "dao.create:FOO" {
			t.Fatalf("rollback must not recreate an application that was never deleted")
		}
	}
}

func TestFindAllAndSearchAbsorbNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.FindAll(ctx)
	if err != nil || all == nil || len(all) != 0 {
		t.Fatalf("FindAll on empty store: apps=%v err=%v", all, err)
	}
	hits, err := f.svc.Search(ctx, map[string]string{"name": "x"})
	if err != nil || hits == nil || len(hits) != 0 {
		t.Fatalf("Search with no match: apps=%v err=%v", hits, err)
	}

	f.seed(t, application.New("foo"))
	f.seed(t, application.New("foobar"))
	hits, err = f.svc.Search(ctx, map[string]string{"name": "FOO"})
	if err != nil || len(hits) != 2 || hits[0].Name != "FOO" {
		t.Fatalf("Search: apps=%v err=%v", hits, err)
	}
}

func TestFindByNameBlankIsNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.FindByName(context.Background(), "  "); !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
