// Package tx carries an open pgx transaction through a context so every store
// touched inside one unit of work joins it.
package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ctxKey struct{}

// WithTx returns ctx unchanged for a nil tx.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tx)
}

func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(ctxKey{}).(pgx.Tx)
	return tx, ok
}

// Active reports whether ctx already runs inside a unit of work. Nested
// RunInTx calls use it to join instead of opening a second transaction.
func Active(ctx context.Context) bool {
	_, ok := From(ctx)
	return ok
}
