package models

import (
	"stacksevents/pkg/domain"
)

// PurchaseRequest asks for Quantity tickets to event EventID for Buyer. A
// zero Quantity means one ticket.
type PurchaseRequest struct {
	EventID  domain.EventID
	Buyer    domain.Address
	Quantity int
}

// PurchaseReceipt is returned once the purchase confirmed on the ledger.
type PurchaseReceipt struct {
	EventID domain.EventID
	Buyer   domain.Address
	TxID    domain.TxID
	Tickets []*Ticket
	// Total is in whole units of Currency.
	Total    int64
	Currency string
}

// TransferRequest moves TicketID from the connected caller to To. To is kept
// raw so the service can report a malformed address before anything else.
type TransferRequest struct {
	TicketID domain.TicketID
	To       string
}

// Stats summarizes sales across the catalog.
type Stats struct {
	TicketsSold  int
	TotalSupply  int
	Revenue      map[string]int64
	ActiveEvents int
	SoldOut      int
	// SellThrough is TicketsSold / TotalSupply, 0 for an empty catalog.
	SellThrough float64
}
