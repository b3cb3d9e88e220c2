package service

import (
	"context"
	"errors"
	"strconv"

	"stacksevents/internal/ledger"
	"stacksevents/internal/ticketing/models"
	"stacksevents/internal/ticketing/store/directory"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/requestcontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Purchase buys req.Quantity tickets for the connected wallet. Inventory is
// reserved locally first, then the purchase is signed, submitted and awaited.
// Any failure after the reservation releases it. The directory is re-synced
// with the ledger after every attempt.
//
// A CodeTransactionTimeout or CodeCancelled result after submission is
// ambiguous: the purchase may still land. It is recorded as a settlement and
// Recheck or the next Refresh issues the tickets once the ledger confirms.
func (s *Service) Purchase(ctx context.Context, req models.PurchaseRequest) (_ *models.PurchaseReceipt, err error) {
	ctx, span := otel.Tracer("stacksevents/ticketing").Start(ctx, "ticketing.purchase")
	span.SetAttributes(attribute.String("event_id", req.EventID.String()))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			span.RecordError(err)
		}
		span.End()
	}()

	buyer, ok := s.session.CurrentAddress()
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotConnected, "connect a wallet to purchase tickets")
	}
	if !req.Buyer.IsNil() && req.Buyer != buyer {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "buyer is not the connected wallet")
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "quantity must be positive")
	}
	if qty > s.maxPerPurchase {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			"at most "+strconv.Itoa(s.maxPerPurchase)+" tickets per purchase")
	}
	span.SetAttributes(attribute.Int("quantity", qty))

	// Reserve before decrementing so a concurrent Refresh never sees the
	// seat taken locally but not yet counted as pending.
	s.reserve(req.EventID, qty)
	listing, err := s.directory.DecrementRemaining(ctx, req.EventID, qty)
	if err != nil {
		s.release(req.EventID, qty)
		if errors.Is(err, directory.ErrInsufficient) {
			err = dErrors.New(dErrors.CodeOutOfInventory, "not enough tickets left for "+req.EventID.String())
		} else {
			err = wrapStoreErr(err, "event "+req.EventID.String())
		}
		s.purchaseFailed(ctx, buyer, req.EventID, qty, "", err)
		return nil, err
	}

	receipt, confirmed, err := s.settlePurchase(ctx, buyer, listing, qty)
	if err != nil {
		switch {
		case confirmed:
			// Inventory is spent on chain; only the reservation goes.
			s.release(req.EventID, qty)
			s.afterPurchase(ctx, req.EventID)
		case unsettled(receipt, err) && s.holdPurchase(ctx, &models.Settlement{
			TxID:        receipt.TxID,
			Kind:        ledger.TxPurchase,
			EventID:     req.EventID,
			Address:     buyer,
			Quantity:    qty,
			Price:       listing.PriceAmount,
			Currency:    listing.Currency,
			SubmittedAt: requestcontext.Now(ctx),
		}):
			// The purchase may still land. The seats stay reserved until
			// Recheck sees the final state.
		default:
			s.rollbackPurchase(ctx, req.EventID, qty)
		}
		s.purchaseFailed(ctx, buyer, req.EventID, qty, txIDOf(receipt), err)
		return nil, err
	}

	s.release(req.EventID, qty)
	s.afterPurchase(ctx, req.EventID)
	s.invalidate(ctx, buyer)

	s.logger.InfoContext(ctx, "tickets purchased",
		"event_id", req.EventID,
		"address", buyer.Short(),
		"quantity", qty,
		"tx_id", receipt.TxID,
	)
	s.emit(ctx, audit.Event{
		Category:  audit.EventTicketPurchased.Category(),
		Timestamp: requestcontext.Now(ctx),
		Address:   buyer.String(),
		Action:    string(audit.EventTicketPurchased),
		EventID:   req.EventID.String(),
		TxID:      receipt.TxID.String(),
		Quantity:  qty,
		RequestID: requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.IncPurchase(outcomeOf(nil))
		s.metrics.AddTicketsIssued(qty)
	}
	return receipt, nil
}

// settlePurchase signs, submits and awaits the purchase, then issues the
// tickets. A partial receipt carrying only the tx id is returned with
// errors that occur after submission; confirmed reports whether the ledger
// accepted the purchase.
func (s *Service) settlePurchase(ctx context.Context, buyer domain.Address, listing *models.EventListing, qty int) (receipt *models.PurchaseReceipt, confirmed bool, err error) {
	tx, err := s.session.SignTransaction(ctx, ledger.Transaction{
		Kind:     ledger.TxPurchase,
		Sender:   buyer,
		EventID:  listing.ID,
		Quantity: qty,
		Amount:   listing.PriceAmount * int64(qty) * ledger.MicroSTXPerSTX,
	})
	if err != nil {
		return nil, false, err
	}

	txID, err := s.ledger.Submit(ctx, tx)
	if err != nil {
		return nil, false, submitErr(ctx, err)
	}
	partial := &models.PurchaseReceipt{TxID: txID}

	if err := s.confirmer.Await(ctx, txID); err != nil {
		return partial, false, err
	}

	claim := models.Settlement{
		TxID:     txID,
		Kind:     ledger.TxPurchase,
		EventID:  listing.ID,
		Address:  buyer,
		Quantity: qty,
		Price:    listing.PriceAmount,
		Currency: listing.Currency,
	}
	tickets := claim.Issue(requestcontext.Now(ctx))
	// The chain already settled; ctx may be gone but the record must land.
	if err := s.tickets.CreateMany(context.WithoutCancel(ctx), tickets); err != nil {
		s.logger.ErrorContext(ctx, "confirmed purchase could not be recorded",
			"event_id", listing.ID,
			"tx_id", txID,
			"error", err,
		)
		return partial, true, dErrors.Wrap(err, dErrors.CodeInternal,
			"purchase confirmed as "+txID.String()+" but tickets could not be recorded")
	}

	return &models.PurchaseReceipt{
		EventID:  listing.ID,
		Buyer:    buyer,
		TxID:     txID,
		Tickets:  tickets,
		Total:    listing.PriceAmount * int64(qty),
		Currency: listing.Currency,
	}, true, nil
}

// rollbackPurchase releases the local reservation and re-syncs with the
// ledger. It runs detached from ctx so a cancelled caller still compensates.
func (s *Service) rollbackPurchase(ctx context.Context, eventID domain.EventID, qty int) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.directory.IncrementRemaining(ctx, eventID, qty); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back inventory reservation",
			"event_id", eventID,
			"quantity", qty,
			"error", err,
		)
	}
	s.release(eventID, qty)
	s.afterPurchase(ctx, eventID)
}

func (s *Service) afterPurchase(ctx context.Context, eventID domain.EventID) {
	// Best effort: a failed sync leaves the local count, which the next
	// Refresh corrects.
	_ = s.syncEvent(context.WithoutCancel(ctx), eventID)
}

func (s *Service) purchaseFailed(ctx context.Context, buyer domain.Address, eventID domain.EventID, qty int, txID domain.TxID, err error) {
	s.logger.WarnContext(ctx, "purchase failed",
		"event_id", eventID,
		"address", buyer.Short(),
		"quantity", qty,
		"tx_id", txID,
		"error", err,
	)
	s.emit(ctx, audit.Event{
		Category:  audit.EventPurchaseFailed.Category(),
		Timestamp: requestcontext.Now(ctx),
		Address:   buyer.String(),
		Action:    string(audit.EventPurchaseFailed),
		EventID:   eventID.String(),
		TxID:      txID.String(),
		Quantity:  qty,
		Reason:    string(dErrors.CodeOf(err)),
		RequestID: requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.IncPurchase(outcomeOf(err))
	}
}

// submitErr keeps a ledger-coded error and classifies the rest.
func submitErr(ctx context.Context, err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case ctx.Err() != nil:
		return dErrors.Wrap(err, dErrors.CodeCancelled, "transaction submission cancelled")
	default:
		return dErrors.Wrap(err, dErrors.CodeTransactionFailed, "ledger rejected the transaction")
	}
}

// unsettled reports whether a failed attempt left a submitted transaction
// with no final state.
func unsettled(r *models.PurchaseReceipt, err error) bool {
	return r != nil && !r.TxID.IsNil() && !dErrors.HasCode(err, dErrors.CodeTransactionFailed)
}

// holdPurchase keeps the reservation of an unsettled purchase and records
// it. The hold is taken first so a Recheck that resolves the record at once
// still finds it.
func (s *Service) holdPurchase(ctx context.Context, p *models.Settlement) bool {
	s.hold(p.TxID, p.EventID, p.Quantity)
	if s.recordSettlement(ctx, p) {
		return true
	}
	s.mu.Lock()
	delete(s.held, p.TxID)
	s.mu.Unlock()
	return false
}

// recordSettlement stores p for a later Recheck. It reports false when the
// record could not be written, in which case the caller compensates as for
// a failure.
func (s *Service) recordSettlement(ctx context.Context, p *models.Settlement) bool {
	if err := s.settled.Save(context.WithoutCancel(ctx), p); err != nil {
		s.logger.ErrorContext(ctx, "failed to record unsettled transaction",
			"tx_id", p.TxID,
			"kind", p.Kind,
			"error", err,
		)
		return false
	}
	s.logger.WarnContext(ctx, "transaction left unsettled",
		"tx_id", p.TxID,
		"kind", p.Kind,
		"event_id", p.EventID,
	)
	return true
}

func txIDOf(r *models.PurchaseReceipt) domain.TxID {
	if r == nil {
		return ""
	}
	return r.TxID
}
