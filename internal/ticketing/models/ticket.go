package models

import (
	"time"

	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
)

// Ticket is an issued right to attend one event. Tickets are never deleted;
// ownership changes are kept in the transfer log.
type Ticket struct {
	ID              domain.TicketID
	EventID         domain.EventID
	Owner           domain.Address
	PurchasedAt     time.Time
	PriceAtPurchase int64
	Currency        string
	Transferable    bool
	PurchaseTxID    domain.TxID
}

// CanTransfer checks the preconditions that depend only on the ticket.
func (t *Ticket) CanTransfer(caller, to domain.Address) error {
	if !t.Transferable {
		return dErrors.New(dErrors.CodeNotTransferable, "ticket is not transferable")
	}
	if to == t.Owner {
		return dErrors.New(dErrors.CodeSelfTransferNotAllowed, "recipient already owns this ticket")
	}
	if caller != t.Owner {
		return dErrors.New(dErrors.CodeNotAuthorized, "only the current owner can transfer this ticket")
	}
	return nil
}

// TransferRecord is one entry of a ticket's ownership history.
type TransferRecord struct {
	TicketID      domain.TicketID
	From          domain.Address
	To            domain.Address
	TxID          domain.TxID
	TransferredAt time.Time
}
