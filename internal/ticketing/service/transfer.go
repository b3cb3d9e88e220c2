package service

import (
	"context"
	"errors"

	"stacksevents/internal/ledger"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/platform/sentinel"
	"stacksevents/pkg/requestcontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Transfer moves a ticket from the connected wallet to req.To once the ledger
// confirms the transfer. Until then the ticket is untouched. Only one
// transfer per ticket may be in flight, and a ticket whose last transfer is
// still unsettled cannot be transferred again until Recheck resolves it.
func (s *Service) Transfer(ctx context.Context, req models.TransferRequest) (_ *models.Ticket, err error) {
	ctx, span := otel.Tracer("stacksevents/ticketing").Start(ctx, "ticketing.transfer")
	span.SetAttributes(attribute.String("ticket_id", req.TicketID.String()))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			span.RecordError(err)
		}
		span.End()
	}()

	to, err := domain.ParseAddress(req.To)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindByID(ctx, req.TicketID)
	if err != nil {
		return nil, wrapStoreErr(err, "ticket "+req.TicketID.String())
	}
	caller, connected := s.session.CurrentAddress()
	if err := ticket.CanTransfer(caller, to); err != nil {
		if !connected && dErrors.HasCode(err, dErrors.CodeNotAuthorized) {
			return nil, dErrors.New(dErrors.CodeNotConnected, "connect a wallet to transfer tickets")
		}
		return nil, err
	}
	if !s.claimTransfer(ticket.ID) {
		return nil, dErrors.New(dErrors.CodeConflict, "a transfer of this ticket is already in progress")
	}
	defer s.finishTransfer(ticket.ID)
	if err := s.checkNoUnsettledTransfer(ctx, ticket.ID); err != nil {
		return nil, err
	}

	txID, err := s.submitTransfer(ctx, ticket, caller, to)
	if err != nil {
		if !txID.IsNil() && !dErrors.HasCode(err, dErrors.CodeTransactionFailed) {
			// Ownership moves when Recheck sees the transfer confirm.
			s.recordSettlement(ctx, &models.Settlement{
				TxID:        txID,
				Kind:        ledger.TxTransfer,
				EventID:     ticket.EventID,
				Address:     caller,
				TicketID:    ticket.ID,
				Recipient:   to,
				SubmittedAt: requestcontext.Now(ctx),
			})
		}
		s.transferFailed(ctx, ticket, caller, to, txID, err)
		return nil, err
	}

	updated, err := s.recordTransfer(ctx, ticket.ID, caller, to, txID)
	if err != nil {
		s.transferFailed(ctx, ticket, caller, to, txID, err)
		return nil, err
	}
	s.invalidate(ctx, caller, to)

	s.logger.InfoContext(ctx, "ticket transferred",
		"ticket_id", ticket.ID,
		"from", caller.Short(),
		"to", to.Short(),
		"tx_id", txID,
	)
	s.emit(ctx, audit.Event{
		Category:     audit.EventTicketTransferred.Category(),
		Timestamp:    requestcontext.Now(ctx),
		Address:      caller.String(),
		Counterparty: to.String(),
		Action:       string(audit.EventTicketTransferred),
		EventID:      ticket.EventID.String(),
		TicketID:     ticket.ID.String(),
		TxID:         txID.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.IncTransfer(outcomeOf(nil))
	}
	return updated, nil
}

func (s *Service) submitTransfer(ctx context.Context, ticket *models.Ticket, from, to domain.Address) (domain.TxID, error) {
	tx, err := s.session.SignTransaction(ctx, ledger.Transaction{
		Kind:      ledger.TxTransfer,
		Sender:    from,
		EventID:   ticket.EventID,
		Quantity:  1,
		TicketID:  ticket.ID,
		Recipient: to,
	})
	if err != nil {
		return "", err
	}
	txID, err := s.ledger.Submit(ctx, tx)
	if err != nil {
		return "", submitErr(ctx, err)
	}
	if err := s.confirmer.Await(ctx, txID); err != nil {
		return txID, err
	}
	return txID, nil
}

// recordTransfer swaps the owner and appends the history entry in one
// transaction.
func (s *Service) recordTransfer(ctx context.Context, id domain.TicketID, from, to domain.Address, txID domain.TxID) (*models.Ticket, error) {
	ctx = context.WithoutCancel(ctx)
	var updated *models.Ticket
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.swapOwner(ctx, id, from, to, txID)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "confirmed transfer could not be recorded",
			"ticket_id", id,
			"tx_id", txID,
			"error", err,
		)
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal,
			"transfer confirmed as "+txID.String()+" but could not be recorded")
	}
	return updated, nil
}

// swapOwner runs inside a store transaction. The owner is re-checked under
// the store's lock.
func (s *Service) swapOwner(ctx context.Context, id domain.TicketID, from, to domain.Address, txID domain.TxID) (*models.Ticket, error) {
	t, err := s.tickets.Execute(ctx, id,
		func(t *models.Ticket) error {
			if t.Owner != from {
				return dErrors.New(dErrors.CodeConflict, "ticket changed owner during transfer")
			}
			return nil
		},
		func(t *models.Ticket) {
			t.Owner = to
		},
	)
	if err != nil {
		return nil, err
	}
	err = s.tickets.AppendTransfer(ctx, models.TransferRecord{
		TicketID:      id,
		From:          from,
		To:            to,
		TxID:          txID,
		TransferredAt: requestcontext.Now(ctx),
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) checkNoUnsettledTransfer(ctx context.Context, id domain.TicketID) error {
	p, err := s.settled.FindByTicket(ctx, id)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return wrapStoreErr(err, "pending transfers")
	default:
		return dErrors.New(dErrors.CodeConflict,
			"transfer "+p.TxID.String()+" of this ticket is awaiting confirmation; re-check it first")
	}
}

// History returns a ticket's transfers, oldest first.
func (s *Service) History(ctx context.Context, id domain.TicketID) ([]models.TransferRecord, error) {
	records, err := s.tickets.ListTransfers(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "ticket "+id.String())
	}
	return records, nil
}

func (s *Service) transferFailed(ctx context.Context, ticket *models.Ticket, from, to domain.Address, txID domain.TxID, err error) {
	s.logger.WarnContext(ctx, "transfer failed",
		"ticket_id", ticket.ID,
		"from", from.Short(),
		"to", to.Short(),
		"tx_id", txID,
		"error", err,
	)
	s.emit(ctx, audit.Event{
		Category:     audit.EventTransferFailed.Category(),
		Timestamp:    requestcontext.Now(ctx),
		Address:      from.String(),
		Counterparty: to.String(),
		Action:       string(audit.EventTransferFailed),
		EventID:      ticket.EventID.String(),
		TicketID:     ticket.ID.String(),
		TxID:         txID.String(),
		Reason:       string(dErrors.CodeOf(err)),
		RequestID:    requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.IncTransfer(outcomeOf(err))
	}
}
