package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stacksevents/internal/ledger"
	memoryledger "stacksevents/internal/ledger/memory"
	"stacksevents/internal/ledger/stacks"
	"stacksevents/internal/wallet/signer"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
)

// node serves the slice of the Stacks node and indexer APIs the ledger
// client talks to, backed by the in-process ledger.
type node struct {
	chain  *memoryledger.Ledger
	logger *slog.Logger
}

func (n *node) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/v2/transactions", n.handleBroadcast)
	r.Get("/extended/v1/tx/{txid}", n.handleTx)
	r.Post("/v2/map_entry/{contract}/{name}/{map}", n.handleMapEntry)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (n *node) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transaction rejected", "reason": "ReadError"})
		return
	}
	var p signer.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transaction rejected", "reason": "Deserialization"})
		return
	}
	tx := ledger.Transaction{
		Kind:      ledger.TxKind(p.Kind),
		Sender:    domain.Address(p.Sender),
		EventID:   domain.EventID(p.EventID),
		Quantity:  p.Quantity,
		Recipient: domain.Address(p.Recipient),
		Amount:    p.Amount,
		Raw:       raw,
	}
	if p.TicketID != "" {
		id, err := domain.ParseTicketID(p.TicketID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transaction rejected", "reason": "BadFunctionArgument"})
			return
		}
		tx.TicketID = id
	}

	// The broadcast outlives the request; a client disconnect must not
	// cancel an accepted transaction.
	id, err := n.chain.Submit(context.WithoutCancel(r.Context()), tx)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transaction rejected", "reason": dErrors.Message(err)})
		return
	}
	n.logger.Info("transaction accepted", "txid", id, "kind", tx.Kind, "sender", tx.Sender)
	writeJSON(w, http.StatusOK, strings.TrimPrefix(id.String(), "0x"))
}

type txBody struct {
	TxID     string `json:"tx_id"`
	TxStatus string `json:"tx_status"`
	TxResult struct {
		Repr string `json:"repr"`
	} `json:"tx_result"`
}

func (n *node) handleTx(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "txid")
	if !strings.HasPrefix(id, "0x") {
		id = "0x" + id
	}
	state, err := n.chain.Status(r.Context(), domain.TxID(id))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	body := txBody{TxID: id}
	switch state.Status {
	case ledger.TxConfirmed:
		body.TxStatus = "success"
		body.TxResult.Repr = "(ok true)"
	case ledger.TxFailed:
		body.TxStatus = "abort_by_response"
		body.TxResult.Repr = "(err \"" + state.Reason + "\")"
	default:
		body.TxStatus = "pending"
	}
	writeJSON(w, http.StatusOK, body)
}

func (n *node) handleMapEntry(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "map") != "inventory" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown map"})
		return
	}
	var keyHex string
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&keyHex); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key must be a hex string"})
		return
	}
	key, err := stacks.DecodeHex(keyHex)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	eventID, ok := key.StringField("event-id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key has no event-id"})
		return
	}

	value := stacks.None()
	inv, err := n.chain.Inventory(r.Context(), domain.EventID(eventID))
	switch {
	case err == nil:
		value = stacks.Some(stacks.Tuple(map[string]stacks.ClarityValue{
			"remaining": stacks.UInt(uint64(inv.Remaining)),
			"total":     stacks.UInt(uint64(inv.Total)),
		}))
	case !dErrors.HasCode(err, dErrors.CodeNotFound):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	data, err := value.HexString()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": data})
}
