// Package memory is an in-process ledger for development and tests. It keeps
// per-event inventory with compare-and-swap semantics and lets callers script
// the outcome of each submitted transaction.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"github.com/google/uuid"
)

// Outcome scripts how a submitted transaction settles.
type Outcome struct {
	// Status is the final status. TxPending means the transaction never settles.
	Status ledger.TxStatus
	Reason string
	// Delay postpones settlement.
	Delay time.Duration
	// RejectSubmit fails Submit itself with this error.
	RejectSubmit error
}

// Script decides the outcome for a transaction. Nil confirms everything at once.
type Script func(tx ledger.Transaction) Outcome

type entry struct {
	tx       ledger.Transaction
	state    ledger.TxState
	watchers []chan ledger.TxState
	timer    *time.Timer
}

type supply struct {
	total     int
	remaining int
}

type Ledger struct {
	mu        sync.Mutex
	inventory map[domain.EventID]*supply
	owners    map[domain.TicketID]domain.Address
	txs       map[domain.TxID]*entry
	script    Script
	submitted []ledger.Transaction
}

func New() *Ledger {
	return &Ledger{
		inventory: make(map[domain.EventID]*supply),
		owners:    make(map[domain.TicketID]domain.Address),
		txs:       make(map[domain.TxID]*entry),
	}
}

// SetInventory seeds or overwrites one event's supply.
func (l *Ledger) SetInventory(eventID domain.EventID, remaining, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inventory[eventID] = &supply{total: total, remaining: remaining}
}

// SetScript replaces the outcome script for subsequent submissions.
func (l *Ledger) SetScript(s Script) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.script = s
}

// Submitted returns every transaction seen so far.
func (l *Ledger) Submitted() []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.Transaction(nil), l.submitted...)
}

// OwnerOf reports the on-chain owner recorded by confirmed transfers.
func (l *Ledger) OwnerOf(id domain.TicketID) (domain.Address, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr, ok := l.owners[id]
	return addr, ok
}

func (l *Ledger) Submit(ctx context.Context, tx ledger.Transaction) (domain.TxID, error) {
	if err := ctx.Err(); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeCancelled, "submit cancelled")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	outcome := Outcome{Status: ledger.TxConfirmed}
	if l.script != nil {
		outcome = l.script(tx)
	}
	if outcome.RejectSubmit != nil {
		return "", outcome.RejectSubmit
	}

	id := domain.TxID("0x" + uuid.NewString())
	e := &entry{tx: tx, state: ledger.TxState{ID: id, Status: ledger.TxPending}}
	l.txs[id] = e
	l.submitted = append(l.submitted, tx)

	switch {
	case outcome.Status == ledger.TxPending:
	case outcome.Delay > 0:
		e.timer = time.AfterFunc(outcome.Delay, func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.settleLocked(e, outcome)
		})
	default:
		l.settleLocked(e, outcome)
	}
	return id, nil
}

// Settle forces a pending transaction to a final state.
func (l *Ledger) Settle(id domain.TxID, status ledger.TxStatus, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.txs[id]
	if !ok {
		return fmt.Errorf("unknown transaction %s", id)
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	l.settleLocked(e, Outcome{Status: status, Reason: reason})
	return nil
}

// settleLocked applies a confirmed transaction to chain state. A purchase
// beyond remaining supply fails, mirroring the contract's own check.
func (l *Ledger) settleLocked(e *entry, outcome Outcome) {
	if e.state.Final() {
		return
	}
	state := ledger.TxState{ID: e.state.ID, Status: outcome.Status, Reason: outcome.Reason}
	if state.Status == ledger.TxConfirmed {
		switch e.tx.Kind {
		case ledger.TxPurchase:
			s, ok := l.inventory[e.tx.EventID]
			switch {
			case !ok:
				state = ledger.TxState{ID: e.state.ID, Status: ledger.TxFailed, Reason: "unknown event"}
			case s.remaining < e.tx.Quantity:
				state = ledger.TxState{ID: e.state.ID, Status: ledger.TxFailed, Reason: "sold out"}
			default:
				s.remaining -= e.tx.Quantity
			}
		case ledger.TxTransfer:
			if owner, known := l.owners[e.tx.TicketID]; known && owner != e.tx.Sender {
				state = ledger.TxState{ID: e.state.ID, Status: ledger.TxFailed, Reason: "sender does not own ticket"}
			} else {
				l.owners[e.tx.TicketID] = e.tx.Recipient
			}
		}
	}
	e.state = state
	for _, ch := range e.watchers {
		ch <- state
		close(ch)
	}
	e.watchers = nil
}

func (l *Ledger) Status(_ context.Context, id domain.TxID) (ledger.TxState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.txs[id]
	if !ok {
		// Not yet indexed looks the same as pending on a real node.
		return ledger.TxState{ID: id, Status: ledger.TxPending}, nil
	}
	return e.state, nil
}

// Watch delivers the final state once. Channels are buffered so settlement
// never blocks on a slow reader.
func (l *Ledger) Watch(ctx context.Context, id domain.TxID) (<-chan ledger.TxState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.txs[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown transaction "+id.String())
	}
	ch := make(chan ledger.TxState, 1)
	if e.state.Final() {
		ch <- e.state
		close(ch)
		return ch, nil
	}
	e.watchers = append(e.watchers, ch)
	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range e.watchers {
			if w == ch {
				e.watchers = append(e.watchers[:i], e.watchers[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

func (l *Ledger) Inventory(_ context.Context, eventID domain.EventID) (ledger.Inventory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.inventory[eventID]
	if !ok {
		return ledger.Inventory{}, dErrors.New(dErrors.CodeNotFound, "event "+string(eventID)+" not on ledger")
	}
	return ledger.Inventory{EventID: eventID, Remaining: s.remaining, Total: s.total}, nil
}

var (
	_ ledger.Ledger  = (*Ledger)(nil)
	_ ledger.Watcher = (*Ledger)(nil)
)
