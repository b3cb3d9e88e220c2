package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func listing(id domain.EventID, remaining, total int, date time.Time) *models.EventListing {
	return &models.EventListing{
		ID: id, Name: "Event " + string(id), PriceAmount: 50, Currency: "STX",
		TotalSupply: total, RemainingSupply: remaining, Date: date,
	}
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	ctx := context.Background()
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Upsert(ctx, listing("evt2", 5, 50, day.AddDate(0, 1, 7))))
	s.Require().NoError(s.store.Upsert(ctx, listing("evt1", 25, 100, day)))
	s.Require().NoError(s.store.Upsert(ctx, listing("evt0", 1, 1, day)))
}

func (s *InMemoryStoreSuite) TestList_OrderedByDateThenID() {
	got, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal([]domain.EventID{"evt0", "evt1", "evt2"}, []domain.EventID{got[0].ID, got[1].ID, got[2].ID})
}

func (s *InMemoryStoreSuite) TestGet_ReturnsCopy() {
	ctx := context.Background()
	l, err := s.store.Get(ctx, "evt1")
	s.Require().NoError(err)
	l.RemainingSupply = 0

	again, _ := s.store.Get(ctx, "evt1")
	s.Equal(25, again.RemainingSupply)

	_, err = s.store.Get(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDecrementRemaining() {
	ctx := context.Background()

	s.Run("decrements when enough remain", func() {
		l, err := s.store.DecrementRemaining(ctx, "evt2", 5)
		s.Require().NoError(err)
		s.Equal(0, l.RemainingSupply)
	})

	s.Run("refuses to go negative", func() {
		_, err := s.store.DecrementRemaining(ctx, "evt2", 1)
		s.ErrorIs(err, ErrInsufficient)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("unknown event", func() {
		_, err := s.store.DecrementRemaining(ctx, "missing", 1)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDecrementRemaining_Concurrent() {
	ctx := context.Background()
	const goroutines = 50
	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
		soldOutCount atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.DecrementRemaining(ctx, "evt0", 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrInsufficient):
				soldOutCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), soldOutCount.Load())
}

func (s *InMemoryStoreSuite) TestIncrementRemaining_CapsAtTotal() {
	ctx := context.Background()
	l, err := s.store.IncrementRemaining(ctx, "evt1", 500)
	s.Require().NoError(err)
	s.Equal(100, l.RemainingSupply)
}

func (s *InMemoryStoreSuite) TestSync() {
	ctx := context.Background()
	l, err := s.store.Sync(ctx, "evt1", 20, 100)
	s.Require().NoError(err)
	s.Equal(20, l.RemainingSupply)

	l, err = s.store.Sync(ctx, "evt1", -3, 100)
	s.Require().NoError(err)
	s.Equal(0, l.RemainingSupply)

	_, err = s.store.Sync(ctx, "missing", 1, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
