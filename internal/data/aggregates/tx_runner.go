package aggregates

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
)

// TxRunner is the transaction boundary for DAO writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormTxRunner returns a runner backed by gorm transactions. opts may be nil.
func NewGormTxRunner(db *gorm.DB, opts ...*sql.TxOptions) TxRunner {
	r := &gormTxRunner{db: db}
	if len(opts) > 0 {
		r.opts = opts[0]
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	txFn := func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}
	if r.opts != nil {
		return r.db.WithContext(ctx).Transaction(txFn, r.opts)
	}
	return r.db.WithContext(ctx).Transaction(txFn)
}
