package ticket

import (
	"context"
	"slices"
	"sync"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

// InMemorySettlementStore keeps unsettled transactions keyed by tx id.
type InMemorySettlementStore struct {
	mu      sync.RWMutex
	pending map[domain.TxID]models.Settlement
	order   []domain.TxID
}

func NewInMemorySettlementStore() *InMemorySettlementStore {
	return &InMemorySettlementStore{pending: make(map[domain.TxID]models.Settlement)}
}

// Save records p. Saving a tx id twice is a conflict.
func (s *InMemorySettlementStore) Save(_ context.Context, p *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[p.TxID]; ok {
		return sentinel.ErrConflict
	}
	s.pending[p.TxID] = *p
	s.order = append(s.order, p.TxID)
	return nil
}

func (s *InMemorySettlementStore) Find(_ context.Context, id domain.TxID) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pending[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

// FindByTicket returns the unsettled transfer of a ticket, if any.
func (s *InMemorySettlementStore) FindByTicket(_ context.Context, id domain.TicketID) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, txID := range s.order {
		if p := s.pending[txID]; p.TicketID == id {
			return &p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns unsettled transactions oldest first.
func (s *InMemorySettlementStore) List(_ context.Context) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Settlement, 0, len(s.order))
	for _, txID := range s.order {
		p := s.pending[txID]
		out = append(out, &p)
	}
	return out, nil
}

func (s *InMemorySettlementStore) Delete(_ context.Context, id domain.TxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.pending, id)
	s.order = slices.DeleteFunc(s.order, func(txID domain.TxID) bool { return txID == id })
	return nil
}
