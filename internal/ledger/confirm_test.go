package ledger_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/internal/ledger/memory"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollOnly hides the memory ledger's Watch so the confirmer polls.
type pollOnly struct {
	reader ledger.StatusReader
	calls  atomic.Int32
	fail   int32
}

func (p *pollOnly) Status(ctx context.Context, id domain.TxID) (ledger.TxState, error) {
	n := p.calls.Add(1)
	if n <= p.fail {
		return ledger.TxState{}, errors.New("node unavailable")
	}
	return p.reader.Status(ctx, id)
}

func submit(t *testing.T, l *memory.Ledger, outcome memory.Outcome) domain.TxID {
	t.Helper()
	l.SetInventory("evt1", 10, 10)
	l.SetScript(func(ledger.Transaction) memory.Outcome { return outcome })
	id, err := l.Submit(context.Background(), ledger.Transaction{Kind: ledger.TxPurchase, EventID: "evt1", Quantity: 1})
	require.NoError(t, err)
	return id
}

func TestAwait_Watch(t *testing.T) {
	tests := []struct {
		name    string
		outcome memory.Outcome
		code    dErrors.Code
	}{
		{"confirmed", memory.Outcome{Status: ledger.TxConfirmed, Delay: 5 * time.Millisecond}, ""},
		{"failed", memory.Outcome{Status: ledger.TxFailed, Reason: "abort_by_response"}, dErrors.CodeTransactionFailed},
		{"never settles", memory.Outcome{Status: ledger.TxPending}, dErrors.CodeTransactionTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := memory.New()
			id := submit(t, l, tt.outcome)
			c := ledger.NewConfirmer(l, ledger.WithTimeout(50*time.Millisecond))

			err := c.Await(context.Background(), id)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAwait_PollingToleratesTransientErrors(t *testing.T) {
	l := memory.New()
	id := submit(t, l, memory.Outcome{Status: ledger.TxConfirmed})
	reader := &pollOnly{reader: l, fail: 2}

	var observed string
	c := ledger.NewConfirmer(reader,
		ledger.WithPollInterval(time.Millisecond),
		ledger.WithTimeout(time.Second),
		ledger.WithObserver(func(status string, _ time.Duration) { observed = status }),
	)

	require.NoError(t, c.Await(context.Background(), id))
	assert.GreaterOrEqual(t, reader.calls.Load(), int32(3))
	assert.Equal(t, "confirmed", observed)
}

func TestAwait_PollingTimeoutIsAmbiguous(t *testing.T) {
	l := memory.New()
	id := submit(t, l, memory.Outcome{Status: ledger.TxPending})
	c := ledger.NewConfirmer(&pollOnly{reader: l},
		ledger.WithPollInterval(time.Millisecond),
		ledger.WithTimeout(20*time.Millisecond),
	)

	err := c.Await(context.Background(), id)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransactionTimeout))
	assert.True(t, dErrors.IsAmbiguous(err))
}

func TestAwait_CallerCancellation(t *testing.T) {
	l := memory.New()
	id := submit(t, l, memory.Outcome{Status: ledger.TxPending})
	c := ledger.NewConfirmer(l, ledger.WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.Await(ctx, id)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCancelled))
}

func TestTxState_Final(t *testing.T) {
	assert.False(t, ledger.TxState{Status: ledger.TxPending}.Final())
	assert.True(t, ledger.TxState{Status: ledger.TxConfirmed}.Final())
	assert.True(t, ledger.TxState{Status: ledger.TxFailed}.Final())
}
