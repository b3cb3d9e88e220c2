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

// Recheck reads a transaction's status from the ledger. When the
// transaction is an unsettled purchase or transfer and the ledger now has a
// final state, the outcome is applied locally: a confirmed purchase issues
// its tickets, a confirmed transfer moves the ticket, and a failure gives
// back reserved inventory. Applying is keyed by tx id and happens once.
func (s *Service) Recheck(ctx context.Context, txID domain.TxID) (_ *models.TxReport, err error) {
	ctx, span := otel.Tracer("stacksevents/ticketing").Start(ctx, "ticketing.recheck")
	span.SetAttributes(attribute.String("tx_id", txID.String()))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			span.RecordError(err)
		}
		span.End()
	}()

	if txID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "transaction ID is required")
	}
	state, err := s.ledger.Status(ctx, txID)
	if err != nil {
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger status unavailable for "+txID.String())
	}
	report := &models.TxReport{TxID: txID, Status: state.Status, Reason: state.Reason}

	if !state.Final() {
		p, err := s.settled.Find(ctx, txID)
		switch {
		case err == nil:
			report.Kind, report.EventID = p.Kind, p.EventID
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, wrapStoreErr(err, "pending transactions")
		}
		return report, nil
	}

	if err := s.applySettlement(ctx, state, report); err != nil {
		return nil, err
	}
	return report, nil
}

// applySettlement records a final ledger state against the matching
// settlement and removes it in the same store transaction. A missing
// settlement means another caller already applied it.
func (s *Service) applySettlement(ctx context.Context, state ledger.TxState, report *models.TxReport) error {
	ctx = context.WithoutCancel(ctx)
	var settled *models.Settlement
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.settled.Find(ctx, state.ID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		report.Kind, report.EventID = p.Kind, p.EventID

		if state.Status == ledger.TxConfirmed {
			switch p.Kind {
			case ledger.TxPurchase:
				tickets := p.Issue(requestcontext.Now(ctx))
				if err := s.tickets.CreateMany(ctx, tickets); err != nil {
					return err
				}
				report.Tickets = tickets
			case ledger.TxTransfer:
				t, err := s.swapOwner(ctx, p.TicketID, p.Address, p.Recipient, p.TxID)
				if err != nil {
					return err
				}
				report.Ticket = t
			}
		}
		if err := s.settled.Delete(ctx, p.TxID); err != nil {
			return err
		}
		settled = p
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to apply settled transaction",
			"tx_id", state.ID,
			"status", state.Status,
			"error", err,
		)
		return wrapStoreErr(err, "settlement of "+state.ID.String())
	}
	if settled == nil {
		return nil
	}
	report.Applied = true

	switch settled.Kind {
	case ledger.TxPurchase:
		s.afterSettledPurchase(ctx, settled, state, report)
	case ledger.TxTransfer:
		s.afterSettledTransfer(ctx, settled, state)
	}
	return nil
}

func (s *Service) afterSettledPurchase(ctx context.Context, p *models.Settlement, state ledger.TxState, report *models.TxReport) {
	if state.Status == ledger.TxConfirmed {
		s.releaseHeld(p.TxID)
		s.afterPurchase(ctx, p.EventID)
		s.invalidate(ctx, p.Address)

		s.logger.InfoContext(ctx, "late purchase settled",
			"event_id", p.EventID,
			"address", p.Address.Short(),
			"quantity", p.Quantity,
			"tx_id", p.TxID,
		)
		s.emit(ctx, audit.Event{
			Category:  audit.EventTicketPurchased.Category(),
			Timestamp: requestcontext.Now(ctx),
			Address:   p.Address.String(),
			Action:    string(audit.EventTicketPurchased),
			EventID:   p.EventID.String(),
			TxID:      p.TxID.String(),
			Quantity:  p.Quantity,
			RequestID: requestcontext.RequestID(ctx),
		})
		if s.metrics != nil {
			s.metrics.IncSettlement(string(p.Kind), string(state.Status))
			s.metrics.AddTicketsIssued(len(report.Tickets))
		}
		return
	}

	if r, held := s.heldFor(p.TxID); held {
		// Give the seats back before dropping the reservation, as
		// rollbackPurchase does.
		if _, err := s.directory.IncrementRemaining(ctx, r.eventID, r.qty); err != nil {
			s.logger.ErrorContext(ctx, "failed to roll back inventory reservation",
				"event_id", r.eventID,
				"quantity", r.qty,
				"error", err,
			)
		}
		s.releaseHeld(p.TxID)
	}
	s.afterPurchase(ctx, p.EventID)
	s.logger.WarnContext(ctx, "late purchase failed",
		"event_id", p.EventID,
		"tx_id", p.TxID,
		"reason", state.Reason,
	)
	if s.metrics != nil {
		s.metrics.IncSettlement(string(p.Kind), string(state.Status))
	}
}

func (s *Service) afterSettledTransfer(ctx context.Context, p *models.Settlement, state ledger.TxState) {
	if s.metrics != nil {
		s.metrics.IncSettlement(string(p.Kind), string(state.Status))
	}
	if state.Status != ledger.TxConfirmed {
		s.logger.WarnContext(ctx, "late transfer failed",
			"ticket_id", p.TicketID,
			"tx_id", p.TxID,
			"reason", state.Reason,
		)
		return
	}
	s.invalidate(ctx, p.Address, p.Recipient)
	s.logger.InfoContext(ctx, "late transfer settled",
		"ticket_id", p.TicketID,
		"from", p.Address.Short(),
		"to", p.Recipient.Short(),
		"tx_id", p.TxID,
	)
	s.emit(ctx, audit.Event{
		Category:     audit.EventTicketTransferred.Category(),
		Timestamp:    requestcontext.Now(ctx),
		Address:      p.Address.String(),
		Counterparty: p.Recipient.String(),
		Action:       string(audit.EventTicketTransferred),
		EventID:      p.EventID.String(),
		TicketID:     p.TicketID.String(),
		TxID:         p.TxID.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// sweepSettlements re-checks every unsettled transaction. Failures are
// logged; the records stay for the next sweep.
func (s *Service) sweepSettlements(ctx context.Context) {
	pending, err := s.settled.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list unsettled transactions", "error", err)
		return
	}
	for _, p := range pending {
		if _, err := s.Recheck(ctx, p.TxID); err != nil {
			s.logger.WarnContext(ctx, "failed to re-check transaction",
				"tx_id", p.TxID,
				"error", err,
			)
		}
	}
}
