package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stacksevents/internal/wallet/models"
	dErrors "stacksevents/pkg/domain-errors"
	"stacksevents/pkg/platform/httputil"
	"stacksevents/pkg/requestcontext"
)

// Session is the wallet session surface the HTTP layer drives.
type Session interface {
	State() models.SessionState
	Connect(ctx context.Context) (models.SessionState, error)
	Disconnect(ctx context.Context) error
	Restore(ctx context.Context) (models.SessionState, error)
}

// GlobalsReporter accepts the injected globals the browser page observed.
type GlobalsReporter interface {
	Replace(globals ...string)
}

type Handler struct {
	session Session
	globals GlobalsReporter
	logger  *slog.Logger
}

// New builds the wallet handler. globals may be nil when detection is
// configured statically.
func New(session Session, globals GlobalsReporter, logger *slog.Logger) *Handler {
	return &Handler{session: session, globals: globals, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/wallet", h.handleState)
	r.Post("/wallet/connect", h.handleConnect)
	r.Post("/wallet/restore", h.handleRestore)
	r.Post("/wallet/disconnect", h.handleDisconnect)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromState(h.session.State()))
}

// handleConnect blocks until the user answers the wallet prompt or the
// request is cancelled.
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ConnectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.InjectedGlobals != nil && h.globals != nil {
		h.globals.Replace(req.InjectedGlobals...)
	}

	state, err := h.session.Connect(ctx)
	if err != nil {
		h.logger.InfoContext(ctx, "wallet connect rejected",
			"request_id", requestcontext.RequestID(ctx),
			"code", dErrors.CodeOf(err),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromState(state))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.session.Restore(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "session restore failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromState(state))
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Disconnect(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromState(h.session.State()))
}
