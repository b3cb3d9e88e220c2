package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultConfirmTimeout = 2 * time.Minute
	defaultPollInterval   = 2 * time.Second
)

// Confirmer waits for a submitted transaction to settle.
type Confirmer struct {
	reader   StatusReader
	watcher  Watcher
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger
	observe  func(status string, elapsed time.Duration)
}

type ConfirmerOption func(*Confirmer)

func WithTimeout(d time.Duration) ConfirmerOption {
	return func(c *Confirmer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithPollInterval(d time.Duration) ConfirmerOption {
	return func(c *Confirmer) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) ConfirmerOption {
	return func(c *Confirmer) {
		c.logger = logger
	}
}

// WithObserver receives the outcome label and wait time of every Await.
func WithObserver(fn func(status string, elapsed time.Duration)) ConfirmerOption {
	return func(c *Confirmer) {
		c.observe = fn
	}
}

// NewConfirmer uses reader for polling and switches to Watch when reader
// also implements Watcher.
func NewConfirmer(reader StatusReader, opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{
		reader:   reader,
		timeout:  defaultConfirmTimeout,
		interval: defaultPollInterval,
		logger:   slog.Default(),
	}
	if w, ok := reader.(Watcher); ok {
		c.watcher = w
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Await blocks until the transaction is final. It returns nil when confirmed,
// CodeTransactionFailed when the chain rejected it, CodeTransactionTimeout when
// no final state arrived in time and CodeCancelled when ctx was cancelled.
// A timeout is ambiguous: the transaction may still confirm later.
func (c *Confirmer) Await(ctx context.Context, id domain.TxID) error {
	ctx, span := otel.Tracer("stacksevents/ledger").Start(ctx, "ledger.await")
	span.SetAttributes(attribute.String("tx_id", id.String()))
	defer span.End()

	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		state TxState
		err   error
	)
	if c.watcher != nil {
		state, err = c.watch(waitCtx, id)
	} else {
		state, err = c.poll(waitCtx, id)
	}

	outcome, result := c.resolve(ctx, id, state, err)
	if c.observe != nil {
		c.observe(outcome, time.Since(start))
	}
	if result != nil {
		span.SetStatus(codes.Error, outcome)
		span.RecordError(result)
	}
	return result
}

func (c *Confirmer) resolve(ctx context.Context, id domain.TxID, state TxState, err error) (string, error) {
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return "cancelled", dErrors.Wrap(ctxErr, dErrors.CodeCancelled, "stopped waiting for transaction "+id.String())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.WarnContext(ctx, "transaction confirmation timed out",
				"tx_id", id,
				"timeout", c.timeout,
			)
			return "timeout", dErrors.Wrap(err, dErrors.CodeTransactionTimeout,
				"transaction "+id.String()+" not confirmed in time; check its status before retrying")
		}
		return "error", err
	}
	switch state.Status {
	case TxConfirmed:
		return "confirmed", nil
	case TxFailed:
		msg := "transaction " + id.String() + " failed"
		if state.Reason != "" {
			msg += ": " + state.Reason
		}
		return "failed", dErrors.New(dErrors.CodeTransactionFailed, msg)
	}
	return "error", dErrors.New(dErrors.CodeInternal, "transaction ended in unexpected state "+string(state.Status))
}

func (c *Confirmer) watch(ctx context.Context, id domain.TxID) (TxState, error) {
	updates, err := c.watcher.Watch(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "watch unavailable, falling back to polling", "tx_id", id, "error", err)
		return c.poll(ctx, id)
	}
	for {
		select {
		case <-ctx.Done():
			return TxState{}, ctx.Err()
		case state, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return TxState{}, ctx.Err()
				}
				// Stream ended without a final state; finish by polling.
				return c.poll(ctx, id)
			}
			if state.Final() {
				return state, nil
			}
		}
	}
}

func (c *Confirmer) poll(ctx context.Context, id domain.TxID) (TxState, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		state, err := c.reader.Status(ctx, id)
		switch {
		case err == nil && state.Final():
			return state, nil
		case err != nil && ctx.Err() == nil:
			c.logger.DebugContext(ctx, "transaction status read failed", "tx_id", id, "error", err)
		}
		select {
		case <-ctx.Done():
			return TxState{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
