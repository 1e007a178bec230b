package testutil

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/appregistry-backend/internal/data/aggregates"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
)

var errInjectedRollback = errors.New("injected rollback")

// InjectedTxRunner injects begin/body/commit failures around DAO writes. When
// DB is set the body runs inside a real transaction that is rolled back on any
// injected failure; otherwise the body runs with a bare context.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	var bodyErr error
	run := func(tx *gorm.DB) error {
		if bodyErr = fn(dbctx.Context{Ctx: ctx, Tx: tx}); bodyErr != nil {
			return bodyErr
		}
		if failCommit != nil {
			return errInjectedRollback
		}
		return nil
	}
	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(run)
	} else {
		err = run(nil)
	}

	switch {
	case bodyErr != nil:
		r.count(&r.RollbackCalls)
		return bodyErr
	case failCommit != nil:
		r.count(&r.RollbackCalls)
		return failCommit
	case err != nil:
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
