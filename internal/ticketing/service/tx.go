package service

import (
	"context"
	"sync"
	"time"

	"stacksevents/internal/platform/postgres"
	dErrors "stacksevents/pkg/domain-errors"
)

// TicketStoreTx is the boundary that makes an ownership swap and its
// transfer record commit together. Implementations wrap a database
// transaction or, in memory, a coarse lock.
type TicketStoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type lockTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

// NewLockTx serializes transactions with one mutex. It suits the in-memory
// stores, whose individual writes are already atomic.
func NewLockTx(timeout time.Duration) TicketStoreTx {
	return &lockTx{timeout: timeout}
}

func (t *lockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

type postgresTx struct {
	db postgres.TxBeginner
}

// NewPostgresTx runs fn in a database transaction that the Postgres stores
// join through the context.
func NewPostgresTx(db postgres.TxBeginner) TicketStoreTx {
	return &postgresTx{db: db}
}

func (t *postgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.RunInTx(ctx, t.db, fn)
}
