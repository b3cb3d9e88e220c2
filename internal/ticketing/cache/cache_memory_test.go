package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemoryCache(30 * time.Second)
	c.now = func() time.Time { return now }

	ticket := &models.Ticket{ID: domain.NewTicketID(), EventID: "evt1", Owner: "SP_A"}

	_, hit, err := c.Get(ctx, "SP_A", "evt1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Put(ctx, "SP_A", "evt1", ticket, 0))
	require.NoError(t, c.Put(ctx, "SP_A", "", nil, 0))

	got, hit, _ := c.Get(ctx, "SP_A", "evt1")
	assert.True(t, hit)
	assert.Equal(t, ticket.ID, got.ID)

	got, hit, _ = c.Get(ctx, "SP_A", "")
	assert.True(t, hit, "negative results are cached")
	assert.Nil(t, got)

	now = now.Add(31 * time.Second)
	_, hit, _ = c.Get(ctx, "SP_A", "evt1")
	assert.False(t, hit, "entries expire")
}

func TestInMemoryCache_InvalidateAddress(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)
	require.NoError(t, c.Put(ctx, "SP_A", "evt1", &models.Ticket{EventID: "evt1"}, 0))
	require.NoError(t, c.Put(ctx, "SP_B", "evt1", nil, 0))

	require.NoError(t, c.InvalidateAddress(ctx, "SP_A"))

	_, hit, _ := c.Get(ctx, "SP_A", "evt1")
	assert.False(t, hit)
	_, hit, _ = c.Get(ctx, "SP_B", "evt1")
	assert.True(t, hit)
}

func TestInMemoryCache_PutAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)

	gen, err := c.Generation(ctx, "SP_A")
	require.NoError(t, err)

	// A purchase lands between the store read and the write-back.
	require.NoError(t, c.InvalidateAddress(ctx, "SP_A"))
	require.NoError(t, c.Put(ctx, "SP_A", "evt1", nil, gen))

	_, hit, _ := c.Get(ctx, "SP_A", "evt1")
	assert.False(t, hit, "a lookup older than the invalidation is not cached")

	gen, err = c.Generation(ctx, "SP_A")
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "SP_A", "evt1", nil, gen))
	_, hit, _ = c.Get(ctx, "SP_A", "evt1")
	assert.True(t, hit)
}
