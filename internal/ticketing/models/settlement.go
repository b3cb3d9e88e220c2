package models

import (
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/pkg/domain"
)

// Settlement is a submitted transaction whose outcome the service has not
// seen yet, recorded when the caller stopped waiting before the ledger
// settled it. Address is the buyer for a purchase and the sender for a
// transfer.
type Settlement struct {
	TxID      domain.TxID
	Kind      ledger.TxKind
	EventID   domain.EventID
	Address   domain.Address
	Quantity  int
	TicketID  domain.TicketID
	Recipient domain.Address
	// Price is per ticket, in whole units of Currency.
	Price       int64
	Currency    string
	SubmittedAt time.Time
}

// Issue builds the tickets a confirmed purchase settlement grants.
func (p *Settlement) Issue(now time.Time) []*Ticket {
	tickets := make([]*Ticket, p.Quantity)
	for i := range tickets {
		tickets[i] = &Ticket{
			ID:              domain.NewTicketID(),
			EventID:         p.EventID,
			Owner:           p.Address,
			PurchasedAt:     now,
			PriceAtPurchase: p.Price,
			Currency:        p.Currency,
			Transferable:    true,
			PurchaseTxID:    p.TxID,
		}
	}
	return tickets
}

// TxReport is the result of re-checking a transaction. Tickets holds what
// a confirmed purchase issued and Ticket the result of a confirmed
// transfer, when this check applied them.
type TxReport struct {
	TxID    domain.TxID
	Status  ledger.TxStatus
	Reason  string
	Kind    ledger.TxKind
	EventID domain.EventID
	Tickets []*Ticket
	Ticket  *Ticket
	// Applied reports whether this check recorded the outcome locally.
	Applied bool
}
