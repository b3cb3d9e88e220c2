package service

import (
	"context"
	"errors"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

// FindTicket resolves the ticket addr holds, optionally for one event. Owning
// nothing is a normal outcome and returns nil, nil. Only a malformed address
// is an error.
func (s *Service) FindTicket(ctx context.Context, rawAddr string, eventID domain.EventID) (*models.Ticket, error) {
	addr, err := domain.ParseAddress(rawAddr)
	if err != nil {
		return nil, err
	}

	var (
		gen       uint64
		cacheable bool
	)
	if s.cache != nil {
		t, hit, err := s.cache.Get(ctx, addr, eventID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "ownership cache read failed",
				"address", addr.Short(),
				"error", err,
			)
			s.cacheResult("error")
		case hit:
			s.cacheResult("hit")
			return t, nil
		default:
			s.cacheResult("miss")
		}
		// The generation is taken before the store read so a purchase or
		// transfer committing during the read keeps this result out.
		gen, err = s.cache.Generation(ctx, addr)
		if err != nil {
			s.logger.WarnContext(ctx, "ownership cache generation read failed",
				"address", addr.Short(),
				"error", err,
			)
		}
		cacheable = err == nil
	}

	t, err := s.tickets.FindByOwner(ctx, addr, eventID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, wrapStoreErr(err, "ticket")
	}

	if cacheable {
		if err := s.cache.Put(ctx, addr, eventID, t, gen); err != nil {
			s.logger.WarnContext(ctx, "ownership cache write failed",
				"address", addr.Short(),
				"error", err,
			)
		}
	}
	return t, nil
}

// ListTickets returns every ticket addr holds in issue order.
func (s *Service) ListTickets(ctx context.Context, rawAddr string) ([]*models.Ticket, error) {
	addr, err := domain.ParseAddress(rawAddr)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByOwner(ctx, addr)
	if err != nil {
		return nil, wrapStoreErr(err, "tickets")
	}
	return tickets, nil
}

// InvalidateAddress drops cached ownership results for addr. The wallet
// session calls it when the connected address changes.
func (s *Service) InvalidateAddress(ctx context.Context, addr domain.Address) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAddress(ctx, addr)
}

func (s *Service) cacheResult(result string) {
	if s.metrics != nil {
		s.metrics.IncCacheLookup(result)
	}
}
