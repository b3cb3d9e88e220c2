package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stacksevents/internal/platform/middleware"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	"stacksevents/pkg/platform/httputil"
	"stacksevents/pkg/requestcontext"
)

// Service is the ticketing surface the HTTP layer drives.
type Service interface {
	List(ctx context.Context) ([]*models.EventListing, error)
	Get(ctx context.Context, id domain.EventID) (*models.EventListing, error)
	Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseReceipt, error)
	FindTicket(ctx context.Context, rawAddr string, eventID domain.EventID) (*models.Ticket, error)
	ListTickets(ctx context.Context, rawAddr string) ([]*models.Ticket, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.Ticket, error)
	History(ctx context.Context, id domain.TicketID) ([]models.TransferRecord, error)
	Stats(ctx context.Context) (*models.Stats, error)
	Recheck(ctx context.Context, txID domain.TxID) (*models.TxReport, error)
}

type Handler struct {
	svc     Service
	session middleware.SessionReader
	logger  *slog.Logger
}

func New(svc Service, session middleware.SessionReader, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, session: session, logger: logger}
}

// Register mounts the catalog, ticket and analytics routes. Purchases require
// a connected wallet up front; transfers check the caller inside the service
// so malformed input is reported first.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.handleListEvents)
	r.Get("/events/{id}", h.handleGetEvent)
	r.With(middleware.RequireConnected(h.session, h.logger)).
		Post("/events/{id}/purchase", h.handlePurchase)

	r.Get("/tickets", h.handleFindTickets)
	r.Get("/tickets/{id}/history", h.handleHistory)
	r.Post("/tickets/{id}/transfer", h.handleTransfer)

	r.Get("/transactions/{id}", h.handleRecheck)

	r.Get("/analytics", h.handleStats)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: FromListings(listings)})
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	listing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListing(listing))
}

// handlePurchase blocks until the ledger settles the purchase or the
// confirmation times out.
func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req PurchaseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	buyer, ok := middleware.ConnectedAddress(ctx)
	if !ok {
		// RequireConnected guards this route.
		h.logger.ErrorContext(ctx, "connected address missing from context",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session context error"))
		return
	}

	receipt, err := h.svc.Purchase(ctx, models.PurchaseRequest{EventID: id, Buyer: buyer, Quantity: req.Quantity})
	if err != nil {
		h.fail(w, r, "purchase failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromReceipt(receipt))
}

// handleFindTickets lists what an address holds. With an event filter it
// answers the single-ticket ownership query. The address defaults to the
// connected wallet.
func (h *Handler) handleFindTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr := r.URL.Query().Get("address")
	if addr == "" {
		if current, ok := h.session.CurrentAddress(); ok {
			addr = current.String()
		}
	}

	var (
		tickets []*models.Ticket
		err     error
	)
	if raw := r.URL.Query().Get("event"); raw != "" {
		eventID, perr := domain.ParseEventID(raw)
		if perr != nil {
			httputil.WriteError(w, perr)
			return
		}
		var t *models.Ticket
		t, err = h.svc.FindTicket(ctx, addr, eventID)
		if t != nil {
			tickets = []*models.Ticket{t}
		}
	} else {
		tickets, err = h.svc.ListTickets(ctx, addr)
	}
	if err != nil {
		h.fail(w, r, "failed to find tickets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TicketsResponse{Address: addr, Tickets: FromTickets(tickets)})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.svc.History(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to read ticket history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{TicketID: id.String(), Transfers: FromRecords(records)})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req TransferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ticket, err := h.svc.Transfer(r.Context(), models.TransferRequest{TicketID: id, To: req.To})
	if err != nil {
		h.fail(w, r, "transfer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTicket(ticket))
}

// handleRecheck reports a transaction's ledger status and applies a late
// outcome of an earlier purchase or transfer that timed out.
func (h *Handler) handleRecheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Recheck(r.Context(), domain.TxID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "failed to re-check transaction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "failed to compute analytics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStats(stats))
}

// fail logs internal errors loudly and client errors quietly, then writes
// the envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
		)
	}
	httputil.WriteError(w, err)
}
