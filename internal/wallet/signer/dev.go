// Package signer holds signer implementations that run inside the process.
// The real wallet lives in the user's browser; Dev stands in for it in local
// runs, tests and the CLI.
package signer

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"stacksevents/internal/ledger"
	"stacksevents/internal/wallet/models"
	dErrors "stacksevents/pkg/domain-errors"
)

// Payload is the JSON body Dev produces as a "signed" transaction. The mock
// Stacks node decodes the same shape.
type Payload struct {
	Kind      string `json:"kind"`
	Sender    string `json:"sender"`
	EventID   string `json:"event_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	TicketID  string `json:"ticket_id,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Amount    int64  `json:"amount"`
	Nonce     uint64 `json:"nonce"`
}

// Dev approves every request with a fixed profile unless told to reject.
type Dev struct {
	profile models.Profile

	mu         sync.Mutex
	authorized bool
	reject     error
	nonce      atomic.Uint64
}

func NewDev(profile models.Profile) *Dev {
	return &Dev{profile: profile}
}

// RejectWith makes subsequent Authorize and Sign calls fail with err; nil
// restores approval.
func (d *Dev) RejectWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reject = err
}

func (d *Dev) Authorize(ctx context.Context, _ models.AppDetails) (models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return models.Profile{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject != nil {
		return models.Profile{}, d.reject
	}
	d.authorized = true
	return d.profile, nil
}

func (d *Dev) Current(_ context.Context) (models.Profile, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.authorized {
		return models.Profile{}, false, nil
	}
	return d.profile, true, nil
}

// Resume marks the signer as holding a session, as a browser wallet does
// across page reloads.
func (d *Dev) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authorized = true
}

func (d *Dev) Sign(ctx context.Context, tx ledger.Transaction) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	reject, authorized := d.reject, d.authorized
	d.mu.Unlock()
	if reject != nil {
		return nil, reject
	}
	if !authorized {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "signer has no active session")
	}
	p := Payload{
		Kind:      string(tx.Kind),
		Sender:    tx.Sender.String(),
		EventID:   string(tx.EventID),
		Quantity:  tx.Quantity,
		Recipient: tx.Recipient.String(),
		Amount:    tx.Amount,
		Nonce:     d.nonce.Add(1),
	}
	if !tx.TicketID.IsNil() {
		p.TicketID = tx.TicketID.String()
	}
	return json.Marshal(p)
}

func (d *Dev) SignOut(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authorized = false
	return nil
}
