//go:build integration

package ticket_test

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
	"stacksevents/internal/ticketing/store/ticket"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	"stacksevents/pkg/platform/sentinel"
	"stacksevents/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *ticket.PostgresStore
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
	s.store = ticket.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.Truncate(ctx, "ticket_transfers", "tickets", "events"))
	l, err := models.NewEventListing("evt1", "Tech Conference 2025", 50, "STX", 100, 25, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(directory.NewPostgres(s.postgres.Pool).Upsert(ctx, l))
}

func (s *PostgresStoreSuite) issue(owner domain.Address) *models.Ticket {
	t := &models.Ticket{
		ID: domain.NewTicketID(), EventID: "evt1", Owner: owner,
		PurchasedAt: time.Now().UTC().Truncate(time.Microsecond), PriceAtPurchase: 50,
		Currency: "STX", Transferable: true, PurchaseTxID: "0xabc",
	}
	s.Require().NoError(s.store.CreateMany(context.Background(), []*models.Ticket{t}))
	return t
}

func (s *PostgresStoreSuite) TestFindByOwner() {
	ctx := context.Background()
	t := s.issue("SP_A")

	got, err := s.store.FindByOwner(ctx, "SP_A", "evt1")
	s.Require().NoError(err)
	s.Equal(t.ID, got.ID)
	s.Equal(t.PurchasedAt, got.PurchasedAt)

	got, err = s.store.FindByOwner(ctx, "SP_A", "")
	s.Require().NoError(err)
	s.Equal(t.ID, got.ID)

	_, err = s.store.FindByOwner(ctx, "SP_B", "")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentTransfersHaveOneWinner races transfers of the same ticket
// guarded on the original owner; only one may move it.
func (s *PostgresStoreSuite) TestConcurrentTransfersHaveOneWinner() {
	ctx := context.Background()
	t := s.issue("SP_A")
	const goroutines = 20

	var (
		wg      sync.WaitGroup
		moved   atomic.Int32
		refused atomic.Int32
	)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			to := domain.Address("SP_R" + string(rune('A'+i)))
			_, err := s.store.Execute(ctx, t.ID,
				func(tk *models.Ticket) error { return tk.CanTransfer("SP_A", to) },
				func(tk *models.Ticket) { tk.Owner = to },
			)
			if err == nil {
				moved.Add(1)
			} else if dErrors.HasCode(err, dErrors.CodeNotAuthorized) {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), moved.Load())
	s.Equal(int32(goroutines-1), refused.Load())
}

func (s *PostgresStoreSuite) TestTransferLogJoinsTransaction() {
	ctx := context.Background()
	t := s.issue("SP_A")

	err := postgres.RunInTx(ctx, s.postgres.Pool, func(ctx context.Context) error {
		if err := s.store.AppendTransfer(ctx, models.TransferRecord{
			TicketID: t.ID, From: "SP_A", To: "SP_B", TxID: "0x1", TransferredAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	log, err := s.store.ListTransfers(ctx, t.ID)
	s.Require().NoError(err)
	s.Empty(log)
}
