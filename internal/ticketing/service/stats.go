package service

import (
	"context"

	"stacksevents/internal/ticketing/models"
)

// Stats summarizes sales from the directory. Revenue is kept per currency.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	listings, err := s.directory.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "event directory")
	}

	stats := &models.Stats{Revenue: make(map[string]int64)}
	for _, l := range listings {
		sold := l.Sold()
		stats.TicketsSold += sold
		stats.TotalSupply += l.TotalSupply
		stats.Revenue[l.Currency] += int64(sold) * l.PriceAmount
		if l.Availability() == models.AvailabilitySoldOut {
			stats.SoldOut++
		} else {
			stats.ActiveEvents++
		}
	}
	if stats.TotalSupply > 0 {
		stats.SellThrough = float64(stats.TicketsSold) / float64(stats.TotalSupply)
	}
	return stats, nil
}
