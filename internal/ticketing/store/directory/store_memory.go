// Package directory stores the event catalog and its remaining supply. The
// stored remaining count is a cache of the ledger's inventory that is
// reconciled after every purchase attempt.
package directory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

// ErrInsufficient is returned when a decrement asks for more than remains.
var ErrInsufficient = fmt.Errorf("insufficient remaining supply: %w", sentinel.ErrInvalidState)

type InMemoryStore struct {
	mu       sync.RWMutex
	listings map[domain.EventID]*models.EventListing
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{listings: make(map[domain.EventID]*models.EventListing)}
}

// Upsert stores a copy of listing.
func (s *InMemoryStore) Upsert(_ context.Context, listing *models.EventListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *listing
	s.listings[listing.ID] = &cp
	return nil
}

// List returns copies ordered by date, then ID.
func (s *InMemoryStore) List(_ context.Context) ([]*models.EventListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.EventListing, 0, len(s.listings))
	for _, l := range s.listings {
		cp := *l
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.EventListing) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.EventID) (*models.EventListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

// DecrementRemaining checks and decrements under one lock.
func (s *InMemoryStore) DecrementRemaining(_ context.Context, id domain.EventID, n int) (*models.EventListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if n > l.RemainingSupply {
		return nil, ErrInsufficient
	}
	l.RemainingSupply -= n
	cp := *l
	return &cp, nil
}

// IncrementRemaining gives back n reserved tickets, never exceeding total.
func (s *InMemoryStore) IncrementRemaining(_ context.Context, id domain.EventID, n int) (*models.EventListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	l.RemainingSupply = min(l.RemainingSupply+n, l.TotalSupply)
	cp := *l
	return &cp, nil
}

// Sync overwrites the cached supply with the ledger's values.
func (s *InMemoryStore) Sync(_ context.Context, id domain.EventID, remaining, total int) (*models.EventListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	l.TotalSupply = total
	l.RemainingSupply = max(0, min(remaining, total))
	cp := *l
	return &cp, nil
}
