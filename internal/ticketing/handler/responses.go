package handler

import (
	"time"

	"stacksevents/internal/ticketing/models"
)

type ListingResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Currency        string `json:"currency"`
	TotalSupply     int    `json:"total_supply"`
	RemainingSupply int    `json:"remaining_supply"`
	Availability    string `json:"availability"`
	Date            string `json:"date"`
}

type EventsResponse struct {
	Events []ListingResponse `json:"events"`
}

type TicketResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Owner        string    `json:"owner"`
	PurchasedAt  time.Time `json:"purchased_at"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
	Transferable bool      `json:"transferable"`
	PurchaseTxID string    `json:"purchase_tx_id,omitempty"`
}

type TicketsResponse struct {
	Address string           `json:"address"`
	Tickets []TicketResponse `json:"tickets"`
}

type ReceiptResponse struct {
	EventID  string           `json:"event_id"`
	Buyer    string           `json:"buyer"`
	TxID     string           `json:"tx_id"`
	Total    int64            `json:"total"`
	Currency string           `json:"currency"`
	Tickets  []TicketResponse `json:"tickets"`
}

type TransferRecordResponse struct {
	From          string    `json:"from"`
	To            string    `json:"to"`
	TxID          string    `json:"tx_id"`
	TransferredAt time.Time `json:"transferred_at"`
}

type HistoryResponse struct {
	TicketID  string                   `json:"ticket_id"`
	Transfers []TransferRecordResponse `json:"transfers"`
}

type TxResponse struct {
	TxID    string           `json:"tx_id"`
	Status  string           `json:"status"`
	Reason  string           `json:"reason,omitempty"`
	Kind    string           `json:"kind,omitempty"`
	EventID string           `json:"event_id,omitempty"`
	Applied bool             `json:"applied"`
	Tickets []TicketResponse `json:"tickets,omitempty"`
	Ticket  *TicketResponse  `json:"ticket,omitempty"`
}

type StatsResponse struct {
	TicketsSold  int              `json:"tickets_sold"`
	TotalSupply  int              `json:"total_supply"`
	Revenue      map[string]int64 `json:"revenue"`
	ActiveEvents int              `json:"active_events"`
	SoldOut      int              `json:"sold_out"`
	SellThrough  float64          `json:"sell_through"`
}

func FromListing(l *models.EventListing) ListingResponse {
	return ListingResponse{
		ID:              l.ID.String(),
		Name:            l.Name,
		Price:           l.PriceAmount,
		Currency:        l.Currency,
		TotalSupply:     l.TotalSupply,
		RemainingSupply: l.RemainingSupply,
		Availability:    string(l.Availability()),
		Date:            l.Date.Format(time.DateOnly),
	}
}

func FromListings(listings []*models.EventListing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, FromListing(l))
	}
	return out
}

func FromTicket(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID.String(),
		EventID:      t.EventID.String(),
		Owner:        t.Owner.String(),
		PurchasedAt:  t.PurchasedAt,
		Price:        t.PriceAtPurchase,
		Currency:     t.Currency,
		Transferable: t.Transferable,
		PurchaseTxID: t.PurchaseTxID.String(),
	}
}

func FromTickets(tickets []*models.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, FromTicket(t))
	}
	return out
}

func FromReceipt(r *models.PurchaseReceipt) ReceiptResponse {
	return ReceiptResponse{
		EventID:  r.EventID.String(),
		Buyer:    r.Buyer.String(),
		TxID:     r.TxID.String(),
		Total:    r.Total,
		Currency: r.Currency,
		Tickets:  FromTickets(r.Tickets),
	}
}

func FromRecords(records []models.TransferRecord) []TransferRecordResponse {
	out := make([]TransferRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, TransferRecordResponse{
			From:          rec.From.String(),
			To:            rec.To.String(),
			TxID:          rec.TxID.String(),
			TransferredAt: rec.TransferredAt,
		})
	}
	return out
}

func FromReport(r *models.TxReport) TxResponse {
	resp := TxResponse{
		TxID:    r.TxID.String(),
		Status:  string(r.Status),
		Reason:  r.Reason,
		Kind:    string(r.Kind),
		EventID: r.EventID.String(),
		Applied: r.Applied,
	}
	if len(r.Tickets) > 0 {
		resp.Tickets = FromTickets(r.Tickets)
	}
	if r.Ticket != nil {
		t := FromTicket(r.Ticket)
		resp.Ticket = &t
	}
	return resp
}

func FromStats(s *models.Stats) StatsResponse {
	return StatsResponse{
		TicketsSold:  s.TicketsSold,
		TotalSupply:  s.TotalSupply,
		Revenue:      s.Revenue,
		ActiveEvents: s.ActiveEvents,
		SoldOut:      s.SoldOut,
		SellThrough:  s.SellThrough,
	}
}
