// Package ledger is the boundary to the on-chain ticket contract. The chain
// is the source of truth for inventory and ownership; local stores are caches
// reconciled against it after every attempt.
package ledger

import (
	"context"

	"stacksevents/pkg/domain"
)

// TxKind names the contract call a transaction makes.
type TxKind string

const (
	TxPurchase TxKind = "purchase"
	TxTransfer TxKind = "transfer"
)

// MicroSTXPerSTX converts listing prices to ledger amounts.
const MicroSTXPerSTX int64 = 1_000_000

// Transaction describes one contract call. Raw holds the signer's serialized
// payload and is what gets broadcast.
type Transaction struct {
	Kind      TxKind
	Sender    domain.Address
	EventID   domain.EventID
	Quantity  int
	TicketID  domain.TicketID
	Recipient domain.Address
	// Amount is in micro-STX.
	Amount int64
	Raw    []byte
}

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// TxState is a point-in-time view of a submitted transaction.
type TxState struct {
	ID     domain.TxID
	Status TxStatus
	// Reason is the chain's abort reason when Status is failed.
	Reason string
}

func (s TxState) Final() bool {
	return s.Status == TxConfirmed || s.Status == TxFailed
}

// Inventory is the chain's view of one event's supply.
type Inventory struct {
	EventID   domain.EventID
	Remaining int
	Total     int
}

type Submitter interface {
	Submit(ctx context.Context, tx Transaction) (domain.TxID, error)
}

type StatusReader interface {
	Status(ctx context.Context, id domain.TxID) (TxState, error)
}

// Watcher pushes state changes. The channel closes after the final state or
// when ctx ends. Implementations without push support omit it.
type Watcher interface {
	Watch(ctx context.Context, id domain.TxID) (<-chan TxState, error)
}

type InventoryReader interface {
	Inventory(ctx context.Context, eventID domain.EventID) (Inventory, error)
}

// Ledger is what the ticketing service needs from the chain.
type Ledger interface {
	Submitter
	StatusReader
	InventoryReader
}
