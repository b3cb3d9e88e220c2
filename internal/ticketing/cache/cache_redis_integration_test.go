//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stacksevents/internal/ticketing/cache"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.Client.FlushAll(context.Background()).Err())
}

func (s *RedisCacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	ticket := &models.Ticket{
		ID: domain.NewTicketID(), EventID: "evt1", Owner: "SP_A",
		PurchasedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), PriceAtPurchase: 50,
		Currency: "STX", Transferable: true, PurchaseTxID: "0xabc",
	}
	s.Require().NoError(s.cache.Put(ctx, "SP_A", "evt1", ticket, 0))
	s.Require().NoError(s.cache.Put(ctx, "SP_A", "evt2", nil, 0))

	got, hit, err := s.cache.Get(ctx, "SP_A", "evt1")
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(*ticket, *got)

	got, hit, err = s.cache.Get(ctx, "SP_A", "evt2")
	s.Require().NoError(err)
	s.True(hit)
	s.Nil(got)

	ttl, err := s.redis.Client.TTL(ctx, "stacksevents:ownership:SP_A").Result()
	s.Require().NoError(err)
	s.Positive(ttl)

	s.Require().NoError(s.cache.InvalidateAddress(ctx, "SP_A"))
	_, hit, err = s.cache.Get(ctx, "SP_A", "evt1")
	s.Require().NoError(err)
	s.False(hit)
}

func (s *RedisCacheSuite) TestPutAfterInvalidateIsDropped() {
	ctx := context.Background()

	gen, err := s.cache.Generation(ctx, "SP_A")
	s.Require().NoError(err)
	s.Zero(gen)

	s.Require().NoError(s.cache.InvalidateAddress(ctx, "SP_A"))
	s.Require().NoError(s.cache.Put(ctx, "SP_A", "evt1", nil, gen))
	_, hit, err := s.cache.Get(ctx, "SP_A", "evt1")
	s.Require().NoError(err)
	s.False(hit)

	gen, err = s.cache.Generation(ctx, "SP_A")
	s.Require().NoError(err)
	s.Equal(uint64(1), gen)
	s.Require().NoError(s.cache.Put(ctx, "SP_A", "evt1", nil, gen))
	_, hit, err = s.cache.Get(ctx, "SP_A", "evt1")
	s.Require().NoError(err)
	s.True(hit)
}
