// Package cache holds per-address ownership lookups. A cached nil ticket is a
// negative result ("owns nothing for this event") and is served like a hit.
//
// Each address carries a generation that InvalidateAddress advances. Readers
// take the generation before reading the store and Put only lands while it
// is unchanged, so a lookup that raced a purchase or transfer is dropped
// instead of cached.
package cache

import (
	"context"
	"sync"
	"time"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
)

// anyEvent is the slot for lookups without an event filter.
const anyEvent = "*"

type entry struct {
	ticket    *models.Ticket
	expiresAt time.Time
}

// InMemoryCache is a TTL map keyed by address then event.
type InMemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[domain.Address]map[string]entry
	gens    map[domain.Address]uint64
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[domain.Address]map[string]entry),
		gens:    make(map[domain.Address]uint64),
	}
}

func slot(eventID domain.EventID) string {
	if eventID.IsNil() {
		return anyEvent
	}
	return string(eventID)
}

// Get reports whether a result is cached; the ticket is nil for a cached miss.
func (c *InMemoryCache) Get(_ context.Context, addr domain.Address, eventID domain.EventID) (*models.Ticket, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[addr][slot(eventID)]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries[addr], slot(eventID))
		return nil, false, nil
	}
	if e.ticket == nil {
		return nil, true, nil
	}
	cp := *e.ticket
	return &cp, true, nil
}

// Generation returns addr's current invalidation generation.
func (c *InMemoryCache) Generation(_ context.Context, addr domain.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[addr], nil
}

// Put stores t unless addr was invalidated after gen was taken.
func (c *InMemoryCache) Put(_ context.Context, addr domain.Address, eventID domain.EventID, t *models.Ticket, gen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[addr] != gen {
		return nil
	}
	byEvent, ok := c.entries[addr]
	if !ok {
		byEvent = make(map[string]entry)
		c.entries[addr] = byEvent
	}
	var cp *models.Ticket
	if t != nil {
		v := *t
		cp = &v
	}
	byEvent[slot(eventID)] = entry{ticket: cp, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// InvalidateAddress drops every cached lookup for addr.
func (c *InMemoryCache) InvalidateAddress(_ context.Context, addr domain.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, addr)
	c.gens[addr]++
	return nil
}
