// Package apiclient is a typed HTTP client for the stacksevents API. Error
// envelopes come back as coded domain errors so callers can tell an
// ambiguous timeout from a rejection.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	ticketinghandler "stacksevents/internal/ticketing/handler"
	wallethandler "stacksevents/internal/wallet/handler"
	dErrors "stacksevents/pkg/domain-errors"
)

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string) *Client {
	return &Client{
		Base: strings.TrimRight(base, "/"),
		HTTP: http.DefaultClient,
	}
}

func (c *Client) Wallet(ctx context.Context) (*wallethandler.StateResponse, error) {
	var out wallethandler.StateResponse
	return &out, c.do(ctx, http.MethodGet, "/wallet", nil, &out)
}

// Connect reports globals (when non-nil) and blocks until the wallet answers.
func (c *Client) Connect(ctx context.Context, globals []string) (*wallethandler.StateResponse, error) {
	var out wallethandler.StateResponse
	body := wallethandler.ConnectRequest{InjectedGlobals: globals}
	return &out, c.do(ctx, http.MethodPost, "/wallet/connect", body, &out)
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/wallet/disconnect", nil, nil)
}

func (c *Client) Events(ctx context.Context) ([]ticketinghandler.ListingResponse, error) {
	var out ticketinghandler.EventsResponse
	if err := c.do(ctx, http.MethodGet, "/events", nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) Event(ctx context.Context, id string) (*ticketinghandler.ListingResponse, error) {
	var out ticketinghandler.ListingResponse
	return &out, c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &out)
}

func (c *Client) Purchase(ctx context.Context, eventID string, quantity int) (*ticketinghandler.ReceiptResponse, error) {
	var out ticketinghandler.ReceiptResponse
	body := ticketinghandler.PurchaseRequest{Quantity: quantity}
	return &out, c.do(ctx, http.MethodPost, "/events/"+url.PathEscape(eventID)+"/purchase", body, &out)
}

// Tickets lists tickets held by address. Empty address means the connected
// wallet; a non-empty eventID narrows to that event.
func (c *Client) Tickets(ctx context.Context, address, eventID string) (*ticketinghandler.TicketsResponse, error) {
	q := url.Values{}
	if address != "" {
		q.Set("address", address)
	}
	if eventID != "" {
		q.Set("event", eventID)
	}
	path := "/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out ticketinghandler.TicketsResponse
	return &out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) Transfer(ctx context.Context, ticketID, to string) (*ticketinghandler.TicketResponse, error) {
	var out ticketinghandler.TicketResponse
	body := ticketinghandler.TransferRequest{To: to}
	return &out, c.do(ctx, http.MethodPost, "/tickets/"+url.PathEscape(ticketID)+"/transfer", body, &out)
}

func (c *Client) History(ctx context.Context, ticketID string) (*ticketinghandler.HistoryResponse, error) {
	var out ticketinghandler.HistoryResponse
	return &out, c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(ticketID)+"/history", nil, &out)
}

// Transaction re-checks a transaction, applying a late purchase or transfer
// on the server.
func (c *Client) Transaction(ctx context.Context, txID string) (*ticketinghandler.TxResponse, error) {
	var out ticketinghandler.TxResponse
	return &out, c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(txID), nil, &out)
}

func (c *Client) Analytics(ctx context.Context) (*ticketinghandler.StatsResponse, error) {
	var out ticketinghandler.StatsResponse
	return &out, c.do(ctx, http.MethodGet, "/analytics", nil, &out)
}

type errorEnvelope struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Hint        string `json:"hint"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s %s failed", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error == "" {
			return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("%s %s: %s", method, path, resp.Status))
		}
		msg := env.Description
		if msg == "" {
			msg = resp.Status
		}
		if env.Hint != "" {
			msg += " (" + env.Hint + ")"
		}
		return dErrors.New(dErrors.Code(env.Error), msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
