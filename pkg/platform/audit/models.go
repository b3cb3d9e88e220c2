package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryOwnership covers events that change who holds a ticket.
	// These are the records a dispute would be settled against.
	CategoryOwnership EventCategory = "ownership"

	// CategorySecurity covers rejected or failed actions worth alerting on.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine session activity. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Address is the wallet that performed the action.
	Address string
	// Counterparty is the recipient for transfers.
	Counterparty string
	Action       string
	EventID      string
	TicketID     string
	TxID         string
	Quantity     int
	Reason       string
	RequestID    string
}

type AuditEvent string

const (
	// Wallet session events
	EventWalletConnected     AuditEvent = "wallet_connected"
	EventWalletDisconnected  AuditEvent = "wallet_disconnected"
	EventWalletConnectFailed AuditEvent = "wallet_connect_failed"
	EventSessionRestored     AuditEvent = "session_restored"

	// Ticket events
	EventTicketPurchased   AuditEvent = "ticket_purchased"
	EventPurchaseFailed    AuditEvent = "purchase_failed"
	EventTicketTransferred AuditEvent = "ticket_transferred"
	EventTransferFailed    AuditEvent = "transfer_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventTicketPurchased:   CategoryOwnership,
	EventTicketTransferred: CategoryOwnership,

	EventWalletConnectFailed: CategorySecurity,
	EventPurchaseFailed:      CategorySecurity,
	EventTransferFailed:      CategorySecurity,

	EventWalletConnected:    CategoryOperations,
	EventWalletDisconnected: CategoryOperations,
	EventSessionRestored:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events and serves them back by address.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAddress(ctx context.Context, address string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives a copy of every persisted event. Sinks are write-only.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
