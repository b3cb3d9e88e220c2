package service

import (
	"context"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"golang.org/x/sync/errgroup"
)

// List returns the cached catalog ordered by date, then id.
func (s *Service) List(ctx context.Context) ([]*models.EventListing, error) {
	listings, err := s.directory.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "event directory")
	}
	return listings, nil
}

func (s *Service) Get(ctx context.Context, id domain.EventID) (*models.EventListing, error) {
	listing, err := s.directory.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "event "+id.String())
	}
	return listing, nil
}

// Refresh first re-checks unsettled transactions, then re-reads every
// event's inventory from the ledger. Events are synced independently; the
// first failure is returned after all finish.
func (s *Service) Refresh(ctx context.Context) error {
	s.sweepSettlements(ctx)

	listings, err := s.directory.List(ctx)
	if err != nil {
		return wrapStoreErr(err, "event directory")
	}

	var g errgroup.Group
	g.SetLimit(s.syncParallel)
	for _, listing := range listings {
		id := listing.ID
		g.Go(func() error {
			return s.syncEvent(ctx, id)
		})
	}
	return g.Wait()
}

// syncEvent replaces the cached remaining supply with the ledger's count
// minus reservations still awaiting confirmation here.
func (s *Service) syncEvent(ctx context.Context, id domain.EventID) error {
	inv, err := s.ledger.Inventory(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read ledger inventory",
			"event_id", id,
			"error", err,
		)
		s.syncOutcome("ledger_error")
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil
		}
		return err
	}

	remaining := inv.Remaining - s.pendingFor(id)
	if remaining < 0 {
		remaining = 0
	}
	if _, err := s.directory.Sync(ctx, id, remaining, inv.Total); err != nil {
		s.logger.WarnContext(ctx, "failed to sync directory",
			"event_id", id,
			"error", err,
		)
		s.syncOutcome("store_error")
		return wrapStoreErr(err, "event "+id.String())
	}
	s.syncOutcome("synced")
	return nil
}

func (s *Service) syncOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.IncSync(outcome)
	}
}
