//go:build integration

package directory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stacksevents/internal/platform/postgres"
	"stacksevents/internal/ticketing/models"
	"stacksevents/internal/ticketing/store/directory"
	"stacksevents/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *directory.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.postgres.DSN))
	s.store = directory.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.Truncate(ctx, "ticket_transfers", "tickets", "events"))
	l, err := models.NewEventListing("evt1", "Tech Conference 2025", 50, "STX", 10, 10, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Upsert(ctx, l))
}

// TestConcurrentDecrementNeverOversells races more buyers than seats.
func (s *PostgresStoreSuite) TestConcurrentDecrementNeverOversells() {
	ctx := context.Background()
	const goroutines = 40

	var (
		wg      sync.WaitGroup
		sold    atomic.Int32
		refused atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.DecrementRemaining(ctx, "evt1", 1)
			if err == nil {
				sold.Add(1)
			} else if errors.Is(err, directory.ErrInsufficient) {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(10), sold.Load())
	s.Equal(int32(goroutines-10), refused.Load())

	l, err := s.store.Get(ctx, "evt1")
	s.Require().NoError(err)
	s.Equal(0, l.RemainingSupply)
}

func (s *PostgresStoreSuite) TestIncrementAndSync() {
	ctx := context.Background()
	_, err := s.store.DecrementRemaining(ctx, "evt1", 4)
	s.Require().NoError(err)

	l, err := s.store.IncrementRemaining(ctx, "evt1", 100)
	s.Require().NoError(err)
	s.Equal(10, l.RemainingSupply)

	l, err = s.store.Sync(ctx, "evt1", 3, 10)
	s.Require().NoError(err)
	s.Equal(3, l.RemainingSupply)
}
