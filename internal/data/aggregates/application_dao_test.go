package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/appregistry-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/appregistry-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/appregistry-backend/internal/data/repos/registry"
	"github.com/yungbote/appregistry-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newApplicationDAO(t *testing.T) (*aggregates.ApplicationDAO, *aggtestutil.HooksRecorder, *fakeClock) {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	hooks := &aggtestutil.HooksRecorder{}
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	dao := aggregates.NewApplicationDAO(aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks, Clock: clock.Now}, registry.NewApplicationRepo(db, log))
	return dao, hooks, clock
}

func TestApplicationDAOCreateNormalizesAndStamps(t *testing.T) {
	dao, hooks, _ := newApplicationDAO(t)
	ctx := context.Background()

	app := application.New("foo")
	app.Details["owner"] = "team-a"
	created, err := dao.Create(ctx, "foo", app)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "FOO" || created.ID() != "foo" {
		t.Fatalf("name not normalized: %+v", created)
	}
	if created.CreateTs != "1700000000000" || created.UpdateTs != "1700000000000" {
		t.Fatalf("timestamps: create=%s update=%s", created.CreateTs, created.UpdateTs)
	}

	found, err := dao.FindByName(ctx, "Foo")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found.Details["owner"] != "team-a" {
		t.Fatalf("details lost: %+v", found.Details)
	}
	if got := hooks.Statuses("application.create"); len(got) != 1 || got[0] != "success" {
		t.Fatalf("hook statuses: %v", got)
	}
}

func TestApplicationDAOCreateDuplicateIsAlreadyExists(t *testing.T) {
	dao, hooks, _ := newApplicationDAO(t)
	ctx := context.Background()
	if _, err := dao.Create(ctx, "foo", application.New("foo")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := dao.Create(ctx, "FOO", application.New("FOO"))
	if !domainagg.IsCode(err, domainagg.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
	if len(hooks.Conflicts) != 1 {
		t.Fatalf("expected one conflict signal, got %v", hooks.Conflicts)
	}
}

func TestApplicationDAOCreateKeepsExistingCreateTs(t *testing.T) {
	dao, _, _ := newApplicationDAO(t)
	app := application.New("foo")
	app.CreateTs = "1600000000000"
	created, err := dao.Create(context.Background(), "foo", app)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreateTs != "1600000000000" || created.UpdateTs != "1700000000000" {
		t.Fatalf("timestamps: create=%s update=%s", created.CreateTs, created.UpdateTs)
	}
}

func TestApplicationDAOUpdateKeepsCreateTs(t *testing.T) {
	dao, _, clock := newApplicationDAO(t)
	ctx := context.Background()
	if _, err := dao.Create(ctx, "foo", application.New("foo")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock.Advance(time.Minute)

	next := application.New("foo")
	next.CreateTs = "1"
	next.Description = application.StringPtr("updated")
	updated, err := dao.Update(ctx, "foo", next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CreateTs != "1700000000000" {
		t.Fatalf("createTs must be kept, got %s", updated.CreateTs)
	}
	if updated.UpdateTs != "1700000060000" {
		t.Fatalf("updateTs must be stamped, got %s", updated.UpdateTs)
	}
	found, _ := dao.FindByName(ctx, "foo")
	if found.Description == nil || *found.Description != "updated" {
		t.Fatalf("update not persisted: %+v", found)
	}
}

func TestApplicationDAOUpdateMissingIsNotFound(t *testing.T) {
	dao, _, _ := newApplicationDAO(t)
	_, err := dao.Update(context.Background(), "ghost", application.New("ghost"))
	if !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestApplicationDAODeleteAndLookupMisses(t *testing.T) {
	dao, _, _ := newApplicationDAO(t)
	ctx := context.Background()
	if _, err := dao.Create(ctx, "foo", application.New("foo")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := dao.Delete(ctx, "foo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := dao.Delete(ctx, "foo"); !domainagg.IsNotFound(err) {
		t.Fatalf("second delete should be not_found, got %v", err)
	}
	if _, err := dao.FindByName(ctx, "foo"); !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if _, err := dao.FindByName(ctx, "  "); !domainagg.IsNotFound(err) {
		t.Fatalf("blank name should be not_found, got %v", err)
	}
	if _, err := dao.All(ctx); !domainagg.IsNotFound(err) {
		t.Fatalf("empty registry should be not_found, got %v", err)
	}
}

func TestApplicationDAOSearch(t *testing.T) {
	dao, _, _ := newApplicationDAO(t)
	ctx := context.Background()
	for _, name := range []string{"barfoo", "foo", "foobar", "other"} {
		app := application.New(name)
		app.Details["owner"] = "team-" + name
		if _, err := dao.Create(ctx, name, app); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	hits, err := dao.Search(ctx, map[string]string{"name": "foo"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 || hits[0].Name != "FOO" || hits[1].Name != "FOOBAR" || hits[2].Name != "BARFOO" {
		t.Fatalf("unexpected ranking: %v", []string{hits[0].Name, hits[1].Name, hits[2].Name})
	}

	if _, err := dao.Search(ctx, map[string]string{"owner": "nobody"}); !domainagg.IsNotFound(err) {
		t.Fatalf("no match should be not_found, got %v", err)
	}

	all, err := dao.All(ctx)
	if err != nil || len(all) != 4 {
		t.Fatalf("All: err=%v len=%d", err, len(all))
	}
}

func TestApplicationDAORejectsBlankName(t *testing.T) {
	dao, _, _ := newApplicationDAO(t)
	_, err := dao.Create(context.Background(), " ", application.New(""))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplicationDAOFailedCommitPersistsNothing(t *testing.T) {
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	commitErr := errors.New("commit lost")
	runner := &aggtestutil.InjectedTxRunner{DB: db, FailCommit: commitErr}
	dao := aggregates.NewApplicationDAO(aggregates.BaseDeps{DB: db, Log: log, Runner: runner}, nil)

	_, err := dao.Create(context.Background(), "foo", application.New("foo"))
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("expected rollback, got %d", runner.RollbackCalls)
	}
	if _, err := dao.FindByName(context.Background(), "foo"); !domainagg.IsNotFound(err) {
		t.Fatalf("rolled back create must not be visible, got %v", err)
	}
}

func TestPermissionDAO(t *testing.T) {
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	clock := &fakeClock{now: time.UnixMilli(42)}
	dao := aggregates.NewPermissionDAO(aggregates.BaseDeps{DB: db, Log: log, Clock: clock.Now}, nil)
	ctx := context.Background()

	saved, err := dao.Upsert(ctx, &application.Permission{Name: "foo", RequiredGroupMembership: []string{"Admins", "admins"}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.Name != "FOO" || saved.LastModified != 42 || len(saved.RequiredGroupMembership) != 1 {
		t.Fatalf("unexpected permission: %+v", saved)
	}
	if _, err := dao.FindByName(ctx, "missing"); !domainagg.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := dao.Delete(ctx, "foo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := dao.Delete(ctx, "foo"); err != nil {
		t.Fatalf("Delete must be idempotent: %v", err)
	}
	all, err := dao.All(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("All: err=%v len=%d", err, len(all))
	}
}
