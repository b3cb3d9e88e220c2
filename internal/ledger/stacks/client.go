// Package stacks talks to a Stacks node and its API indexer over HTTP:
// broadcasting signed transactions, reading their status and reading the
// ticket contract's inventory map.
package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	"stacksevents/pkg/platform/circuit"
)

const inventoryMap = "inventory"

type Client struct {
	base     string
	contract string
	name     string
	http     *http.Client
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New targets the node at baseURL and the ticket contract
// contractAddress.contractName.
func New(baseURL, contractAddress, contractName string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		contract: contractAddress,
		name:     contractName,
		http:     &http.Client{Timeout: 10 * time.Second},
		breaker:  circuit.New("stacks-node"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	TxID   string `json:"txid"`
}

// Submit broadcasts tx.Raw. A node rejection is CodeTransactionFailed.
func (c *Client) Submit(ctx context.Context, tx ledger.Transaction) (domain.TxID, error) {
	if len(tx.Raw) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction is not signed")
	}
	resp, err := c.do(ctx, http.MethodPost, "/v2/transactions", "application/octet-stream", bytes.NewReader(tx.Raw))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var body apiError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		reason := body.Reason
		if reason == "" {
			reason = body.Error
		}
		return "", dErrors.New(dErrors.CodeTransactionFailed, "node rejected transaction: "+reason)
	}
	if resp.StatusCode/100 != 2 {
		return "", dErrors.New(dErrors.CodeUnavailable, "broadcast failed: "+resp.Status)
	}

	var txid string
	if err := json.NewDecoder(resp.Body).Decode(&txid); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "decode broadcast response")
	}
	if !strings.HasPrefix(txid, "0x") {
		txid = "0x" + txid
	}
	return domain.TxID(txid), nil
}

type txResponse struct {
	TxID     string `json:"tx_id"`
	TxStatus string `json:"tx_status"`
	TxResult struct {
		Repr string `json:"repr"`
	} `json:"tx_result"`
}

// Status maps the indexer's tx_status. An unknown transaction is pending
// because the indexer lags the mempool.
func (c *Client) Status(ctx context.Context, id domain.TxID) (ledger.TxState, error) {
	resp, err := c.do(ctx, http.MethodGet, "/extended/v1/tx/"+url.PathEscape(id.String()), "", nil)
	if err != nil {
		return ledger.TxState{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ledger.TxState{ID: id, Status: ledger.TxPending}, nil
	}
	if resp.StatusCode/100 != 2 {
		return ledger.TxState{}, dErrors.New(dErrors.CodeUnavailable, "status lookup failed: "+resp.Status)
	}

	var body txResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ledger.TxState{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode transaction status")
	}
	return ledger.TxState{ID: id, Status: mapStatus(body.TxStatus), Reason: failureReason(body)}, nil
}

func mapStatus(s string) ledger.TxStatus {
	switch {
	case s == "success":
		return ledger.TxConfirmed
	case strings.HasPrefix(s, "abort_"), strings.HasPrefix(s, "dropped_"):
		return ledger.TxFailed
	}
	return ledger.TxPending
}

func failureReason(body txResponse) string {
	if mapStatus(body.TxStatus) != ledger.TxFailed {
		return ""
	}
	if body.TxResult.Repr != "" {
		return body.TxStatus + " " + body.TxResult.Repr
	}
	return body.TxStatus
}

type mapEntryResponse struct {
	Data string `json:"data"`
}

// Inventory reads (map-get? inventory {event-id: ...}) from the contract.
func (c *Client) Inventory(ctx context.Context, eventID domain.EventID) (ledger.Inventory, error) {
	key, err := Tuple(map[string]ClarityValue{"event-id": StringASCII(string(eventID))}).HexString()
	if err != nil {
		return ledger.Inventory{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode inventory key")
	}
	body, err := json.Marshal(key)
	if err != nil {
		return ledger.Inventory{}, err
	}
	path := fmt.Sprintf("/v2/map_entry/%s/%s/%s?proof=0",
		url.PathEscape(c.contract), url.PathEscape(c.name), inventoryMap)
	resp, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return ledger.Inventory{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return ledger.Inventory{}, dErrors.New(dErrors.CodeUnavailable, "map entry lookup failed: "+resp.Status)
	}

	var entry mapEntryResponse
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return ledger.Inventory{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode map entry")
	}
	value, err := DecodeHex(entry.Data)
	if err != nil {
		return ledger.Inventory{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode inventory value")
	}
	if value.IsNone() {
		return ledger.Inventory{}, dErrors.New(dErrors.CodeNotFound, "event "+string(eventID)+" not on ledger")
	}
	if value.Kind != claritySome || value.Some.Kind != clarityTuple {
		return ledger.Inventory{}, dErrors.New(dErrors.CodeInternal, "unexpected inventory value shape")
	}
	remaining, err := value.Some.uintField("remaining")
	if err != nil {
		return ledger.Inventory{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode inventory")
	}
	total, err := value.Some.uintField("total")
	if err != nil {
		return ledger.Inventory{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode inventory")
	}
	return ledger.Inventory{EventID: eventID, Remaining: remaining, Total: total}, nil
}

// do sends one request through the circuit breaker. Transport errors and 5xx
// count as failures; 4xx are answers.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if !c.breaker.Allow() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "stacks node circuit open")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build stacks request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.Canceled) {
				return nil, dErrors.Wrap(ctxErr, dErrors.CodeCancelled, "stacks request cancelled")
			}
			return nil, dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "stacks request timed out")
		}
		c.recordFailure(ctx, err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "stacks node unreachable")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure(ctx, fmt.Errorf("%s %s: %s", method, path, resp.Status))
	} else if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "stacks node circuit closed")
	}
	return resp, nil
}

func (c *Client) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "stacks node circuit opened", "error", err)
	}
}

var _ ledger.Ledger = (*Client)(nil)
