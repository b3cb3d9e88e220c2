// Package ticket stores issued tickets and their transfer log.
package ticket

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

// ErrDuplicate is returned when a ticket ID is already issued.
var ErrDuplicate = fmt.Errorf("ticket already exists: %w", sentinel.ErrConflict)

type InMemoryStore struct {
	mu        sync.RWMutex
	tickets   map[domain.TicketID]*models.Ticket
	order     []domain.TicketID
	transfers map[domain.TicketID][]models.TransferRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tickets:   make(map[domain.TicketID]*models.Ticket),
		transfers: make(map[domain.TicketID][]models.TransferRecord),
	}
}

// CreateMany issues all tickets or none.
func (s *InMemoryStore) CreateMany(_ context.Context, tickets []*models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tickets {
		if _, ok := s.tickets[t.ID]; ok {
			return ErrDuplicate
		}
	}
	for _, t := range tickets {
		cp := *t
		s.tickets[t.ID] = &cp
		s.order = append(s.order, t.ID)
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.TicketID) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// ListByOwner returns the owner's tickets in issue order.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner domain.Address) ([]*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Ticket
	for _, id := range s.order {
		if t := s.tickets[id]; t.Owner == owner {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// FindByOwner returns the first ticket the owner holds, for eventID when it
// is set.
func (s *InMemoryStore) FindByOwner(ctx context.Context, owner domain.Address, eventID domain.EventID) (*models.Ticket, error) {
	owned, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, t := range owned {
		if eventID.IsNil() || t.EventID == eventID {
			return t, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Execute runs validate then mutate under the store lock. When validate
// fails nothing changes.
func (s *InMemoryStore) Execute(_ context.Context, id domain.TicketID, validate func(*models.Ticket) error, mutate func(*models.Ticket)) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.tickets[id] = &cp
	out := cp
	return &out, nil
}

func (s *InMemoryStore) AppendTransfer(_ context.Context, rec models.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[rec.TicketID]; !ok {
		return sentinel.ErrNotFound
	}
	s.transfers[rec.TicketID] = append(s.transfers[rec.TicketID], rec)
	return nil
}

// ListTransfers returns the log oldest first.
func (s *InMemoryStore) ListTransfers(_ context.Context, id domain.TicketID) ([]models.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tickets[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(s.transfers[id]), nil
}

func (s *InMemoryStore) CountByEvent(_ context.Context, eventID domain.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}
