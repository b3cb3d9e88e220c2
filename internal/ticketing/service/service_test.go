package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/internal/ledger/memory"
	"stacksevents/internal/ticketing/cache"
	"stacksevents/internal/ticketing/metrics"
	"stacksevents/internal/ticketing/models"
	"stacksevents/internal/ticketing/service/mocks"
	"stacksevents/internal/ticketing/store/directory"
	ticketstore "stacksevents/internal/ticketing/store/ticket"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	audit "stacksevents/pkg/platform/audit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	addrA = domain.Address("SP_A")
	addrB = domain.Address("SP_B")
	addrC = domain.Address("SP_C")

	evt1 = domain.EventID("evt1")
)

// fakeSession stands in for the wallet session. Signing copies the tx and
// marks it as signed.
type fakeSession struct {
	mu      sync.Mutex
	addr    domain.Address
	signErr error
	signed  []ledger.Transaction
}

func (f *fakeSession) CurrentAddress() (domain.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addr, !f.addr.IsNil()
}

func (f *fakeSession) SignTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return tx, f.signErr
	}
	tx.Raw = []byte("signed:" + string(tx.Kind))
	f.signed = append(f.signed, tx)
	return tx, nil
}

func (f *fakeSession) connectAs(addr domain.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addr = addr
}

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockAudit *mocks.MockAuditPublisher
	directory *directory.InMemoryStore
	tickets   *ticketstore.InMemoryStore
	cache     *cache.InMemoryCache
	settled   *ticketstore.InMemorySettlementStore
	ledger    *memory.Ledger
	session   *fakeSession
	metrics   *metrics.Metrics
	service   *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	s.directory = directory.NewInMemoryStore()
	s.tickets = ticketstore.NewInMemoryStore()
	s.cache = cache.NewInMemoryCache(time.Minute)
	s.settled = ticketstore.NewInMemorySettlementStore()
	s.ledger = memory.New()
	s.session = &fakeSession{addr: addrA}
	s.metrics = metrics.New(prometheus.NewRegistry())

	s.seedEvent(evt1, 50, 100, 25)
	s.service = s.newService()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	return s.newServiceWith(s.tickets, opts...)
}

func (s *ServiceSuite) newServiceWith(tickets TicketStore, opts ...Option) *Service {
	confirmer := ledger.NewConfirmer(s.ledger,
		ledger.WithTimeout(150*time.Millisecond),
		ledger.WithPollInterval(10*time.Millisecond),
	)
	opts = append([]Option{
		WithOwnershipCache(s.cache),
		WithSettlementStore(s.settled),
		WithAuditPublisher(s.mockAudit),
		WithMetrics(s.metrics),
		WithMaxPerPurchase(5),
	}, opts...)
	return New(s.directory, tickets, s.session, s.ledger, confirmer, opts...)
}

// onlySettlement returns the single unsettled transaction.
func (s *ServiceSuite) onlySettlement() *models.Settlement {
	pending, err := s.settled.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	return pending[0]
}

func (s *ServiceSuite) seedEvent(id domain.EventID, price int64, total, remaining int) {
	listing, err := models.NewEventListing(id, "Event "+id.String(), price, "STX", total, remaining,
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(s.directory.Upsert(context.Background(), listing))
	s.ledger.SetInventory(id, remaining, total)
}

func (s *ServiceSuite) remaining(id domain.EventID) int {
	listing, err := s.directory.Get(context.Background(), id)
	s.Require().NoError(err)
	return listing.RemainingSupply
}

func (s *ServiceSuite) buyOne() *models.Ticket {
	receipt, err := s.service.Purchase(context.Background(), models.PurchaseRequest{EventID: evt1, Buyer: addrA})
	s.Require().NoError(err)
	s.Require().Len(receipt.Tickets, 1)
	return receipt.Tickets[0]
}

func (s *ServiceSuite) scriptTransfers(outcome memory.Outcome) {
	s.ledger.SetScript(func(tx ledger.Transaction) memory.Outcome {
		if tx.Kind == ledger.TxTransfer {
			return outcome
		}
		return memory.Outcome{Status: ledger.TxConfirmed}
	})
}

func (s *ServiceSuite) TestPurchase() {
	ctx := context.Background()

	s.Run("issues a ticket and finds it for the buyer", func() {
		receipt, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Buyer: addrA, Quantity: 1})
		s.Require().NoError(err)
		s.Require().Len(receipt.Tickets, 1)
		s.NotEmpty(receipt.TxID)
		s.Equal(int64(50), receipt.Total)
		s.Equal("STX", receipt.Currency)

		t := receipt.Tickets[0]
		s.Equal(addrA, t.Owner)
		s.Equal(evt1, t.EventID)
		s.True(t.Transferable)
		s.Equal(receipt.TxID, t.PurchaseTxID)

		found, err := s.service.FindTicket(ctx, addrA.String(), evt1)
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.Equal(t.ID, found.ID)
		s.Equal(24, s.remaining(evt1))

		inv, err := s.ledger.Inventory(ctx, evt1)
		s.Require().NoError(err)
		s.Equal(24, inv.Remaining)
	})

	s.Run("defaults quantity to one and signs the amount in micro-STX", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
		s.Require().NoError(err)

		last := s.session.signed[len(s.session.signed)-1]
		s.Equal(ledger.TxPurchase, last.Kind)
		s.Equal(addrA, last.Sender)
		s.Equal(1, last.Quantity)
		s.Equal(50*ledger.MicroSTXPerSTX, last.Amount)
	})

	s.Run("issues every ticket of a multi-ticket purchase", func() {
		before := s.remaining(evt1)
		receipt, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 3})
		s.Require().NoError(err)
		s.Len(receipt.Tickets, 3)
		s.Equal(int64(150), receipt.Total)
		s.Equal(before-3, s.remaining(evt1))
		s.Equal(float64(5), testutil.ToFloat64(s.metrics.TicketsIssued))
	})
}

func (s *ServiceSuite) TestPurchase_Preconditions() {
	ctx := context.Background()

	s.Run("not connected", func() {
		s.session.connectAs("")
		defer s.session.connectAs(addrA)

		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
		s.True(dErrors.HasCode(err, dErrors.CodeNotConnected))
		s.Equal(25, s.remaining(evt1))
		s.Empty(s.ledger.Submitted())
	})

	s.Run("buyer is not the connected wallet", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Buyer: addrB})
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
		s.Equal(25, s.remaining(evt1))
	})

	s.Run("quantity over the cap", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 6})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("negative quantity", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: -1})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown event", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("more than remaining", func() {
		s.seedEvent("evt2", 75, 50, 2)
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: "evt2", Quantity: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeOutOfInventory))
		s.Equal(2, s.remaining("evt2"))
		s.Empty(s.ledger.Submitted())
	})
}

func (s *ServiceSuite) TestPurchase_LastSeatRace() {
	s.seedEvent("solo", 10, 1, 1)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Purchase(context.Background(), models.PurchaseRequest{EventID: "solo"})
		}(i)
	}
	wg.Wait()

	var won, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case dErrors.HasCode(err, dErrors.CodeOutOfInventory):
			soldOut++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, won)
	s.Equal(1, soldOut)
	s.Equal(0, s.remaining("solo"))

	n, err := s.tickets.CountByEvent(context.Background(), "solo")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ServiceSuite) TestPurchase_LedgerOutcomes() {
	ctx := context.Background()

	s.Run("rejected transaction rolls back inventory", func() {
		s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
			return memory.Outcome{Status: ledger.TxFailed, Reason: "abort_by_response"}
		})
		defer s.ledger.SetScript(nil)

		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 2})
		s.True(dErrors.HasCode(err, dErrors.CodeTransactionFailed))
		s.Equal(25, s.remaining(evt1))

		found, err := s.service.FindTicket(ctx, addrA.String(), evt1)
		s.Require().NoError(err)
		s.Nil(found)
	})

	s.Run("rejected submission rolls back inventory", func() {
		s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
			return memory.Outcome{RejectSubmit: errors.New("bad nonce")}
		})
		defer s.ledger.SetScript(nil)

		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
		s.True(dErrors.HasCode(err, dErrors.CodeTransactionFailed))
		s.Equal(25, s.remaining(evt1))
	})

	s.Run("wallet declines to sign", func() {
		s.session.signErr = dErrors.New(dErrors.CodeCancelled, "user closed the prompt")
		defer func() { s.session.signErr = nil }()

		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
		s.True(dErrors.HasCode(err, dErrors.CodeCancelled))
		s.Equal(25, s.remaining(evt1))
	})

	s.Equal(float64(2), testutil.ToFloat64(s.metrics.Purchases.WithLabelValues(string(dErrors.CodeTransactionFailed))))
	pending, err := s.settled.List(ctx)
	s.Require().NoError(err)
	s.Empty(pending, "definite failures leave nothing to re-check")
}

func (s *ServiceSuite) TestPurchase_SoldIndexEqualsIssuedTickets() {
	ctx := context.Background()
	calls := 0
	s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
		calls++
		if calls%3 == 0 {
			return memory.Outcome{Status: ledger.TxFailed}
		}
		return memory.Outcome{Status: ledger.TxConfirmed}
	})

	for range 12 {
		_, _ = s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 2})
	}

	listing, err := s.directory.Get(ctx, evt1)
	s.Require().NoError(err)
	issued, err := s.tickets.CountByEvent(ctx, evt1)
	s.Require().NoError(err)

	s.GreaterOrEqual(listing.RemainingSupply, 0)
	// 75 were sold before the test started.
	s.Equal(listing.Sold()-75, issued)
	s.Equal(16, issued)
}

func (s *ServiceSuite) TestPurchase_RecordFailureAfterConfirmation() {
	mockTickets := mocks.NewMockTicketStore(s.ctrl)
	mockTickets.EXPECT().CreateMany(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	confirmer := ledger.NewConfirmer(s.ledger, ledger.WithTimeout(150*time.Millisecond))
	svc := New(s.directory, mockTickets, s.session, s.ledger, confirmer, WithAuditPublisher(s.mockAudit))

	_, err := svc.Purchase(context.Background(), models.PurchaseRequest{EventID: evt1})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	// The ledger spent the seat, so the directory follows it.
	s.Equal(24, s.remaining(evt1))
}

func (s *ServiceSuite) TestPurchase_EmitsAudit() {
	ctrl := gomock.NewController(s.T())
	mockAudit := mocks.NewMockAuditPublisher(ctrl)
	svc := s.newService(WithAuditPublisher(mockAudit))

	mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventTicketPurchased), e.Action)
		s.Equal(audit.CategoryOwnership, e.Category)
		s.Equal(addrA.String(), e.Address)
		s.Equal(evt1.String(), e.EventID)
		s.Equal(2, e.Quantity)
		s.NotEmpty(e.TxID)
		return nil
	})

	_, err := svc.Purchase(context.Background(), models.PurchaseRequest{EventID: evt1, Quantity: 2})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestTransfer() {
	ctx := context.Background()
	ticket := s.buyOne()

	// Prime the cache for both sides so invalidation is observable.
	before, err := s.service.FindTicket(ctx, addrB.String(), "")
	s.Require().NoError(err)
	s.Nil(before)
	_, err = s.service.FindTicket(ctx, addrA.String(), "")
	s.Require().NoError(err)

	moved, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrB.String()})
	s.Require().NoError(err)
	s.Equal(addrB, moved.Owner)
	s.Equal(ticket.ID, moved.ID)

	fromA, err := s.service.FindTicket(ctx, addrA.String(), "")
	s.Require().NoError(err)
	s.Nil(fromA)

	fromB, err := s.service.FindTicket(ctx, addrB.String(), "")
	s.Require().NoError(err)
	s.Require().NotNil(fromB)
	s.Equal(ticket.ID, fromB.ID)

	owner, ok := s.ledger.OwnerOf(ticket.ID)
	s.True(ok)
	s.Equal(addrB, owner)

	history, err := s.service.History(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(addrA, history[0].From)
	s.Equal(addrB, history[0].To)
	s.NotEmpty(history[0].TxID)

	s.Run("new owner can pass it on", func() {
		s.session.connectAs(addrB)
		defer s.session.connectAs(addrA)

		_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrC.String()})
		s.Require().NoError(err)

		history, err := s.service.History(ctx, ticket.ID)
		s.Require().NoError(err)
		s.Len(history, 2)
	})
}

func (s *ServiceSuite) TestTransfer_Preconditions() {
	ctx := context.Background()
	ticket := s.buyOne()

	locked := &models.Ticket{
		ID:           domain.NewTicketID(),
		EventID:      evt1,
		Owner:        addrA,
		Currency:     "STX",
		Transferable: false,
	}
	s.Require().NoError(s.tickets.CreateMany(ctx, []*models.Ticket{locked}))

	tests := []struct {
		name     string
		caller   domain.Address
		req      models.TransferRequest
		wantCode dErrors.Code
	}{
		{"malformed recipient", addrA, models.TransferRequest{TicketID: ticket.ID, To: "not an address"}, dErrors.CodeInvalidAddress},
		{"empty recipient", addrA, models.TransferRequest{TicketID: ticket.ID, To: ""}, dErrors.CodeInvalidAddress},
		{"unknown ticket", addrA, models.TransferRequest{TicketID: domain.NewTicketID(), To: addrB.String()}, dErrors.CodeNotFound},
		{"not transferable", addrA, models.TransferRequest{TicketID: locked.ID, To: addrB.String()}, dErrors.CodeNotTransferable},
		{"self transfer", addrA, models.TransferRequest{TicketID: ticket.ID, To: addrA.String()}, dErrors.CodeSelfTransferNotAllowed},
		{"caller is not the owner", addrB, models.TransferRequest{TicketID: ticket.ID, To: addrC.String()}, dErrors.CodeNotAuthorized},
		{"not connected", "", models.TransferRequest{TicketID: ticket.ID, To: addrC.String()}, dErrors.CodeNotConnected},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.session.connectAs(tt.caller)
			defer s.session.connectAs(addrA)

			_, err := s.service.Transfer(ctx, tt.req)
			s.Require().Error(err)
			s.Equal(tt.wantCode, dErrors.CodeOf(err))
		})
	}

	current, err := s.tickets.FindByID(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal(addrA, current.Owner)
	// Only the purchase reached the ledger.
	s.Len(s.ledger.Submitted(), 1)
}

func (s *ServiceSuite) TestTransfer_FailureLeavesOwner() {
	ctx := context.Background()
	ticket := s.buyOne()

	s.Run("rejected", func() {
		s.scriptTransfers(memory.Outcome{Status: ledger.TxFailed, Reason: "abort_by_post_condition"})
		defer s.ledger.SetScript(nil)

		_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrB.String()})
		s.True(dErrors.HasCode(err, dErrors.CodeTransactionFailed))
	})

	s.Run("timed out", func() {
		s.scriptTransfers(memory.Outcome{Status: ledger.TxPending})
		defer s.ledger.SetScript(nil)

		_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrB.String()})
		s.True(dErrors.IsAmbiguous(err))
	})

	current, err := s.tickets.FindByID(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal(addrA, current.Owner)

	history, err := s.service.History(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *ServiceSuite) TestTransfer_OneInFlightPerTicket() {
	ctx := context.Background()
	ticket := s.buyOne()
	s.scriptTransfers(memory.Outcome{Status: ledger.TxConfirmed, Delay: 80 * time.Millisecond})

	first := make(chan error, 1)
	go func() {
		_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrB.String()})
		first <- err
	}()
	s.Eventually(func() bool {
		return len(s.ledger.Submitted()) == 2
	}, time.Second, 5*time.Millisecond)

	_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrC.String()})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(<-first)
	current, err := s.tickets.FindByID(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal(addrB, current.Owner)

	held, err := s.service.ListTickets(ctx, addrB.String())
	s.Require().NoError(err)
	s.Len(held, 1)
	held, err = s.service.ListTickets(ctx, addrC.String())
	s.Require().NoError(err)
	s.Empty(held)
}

func (s *ServiceSuite) TestFindTicket() {
	ctx := context.Background()

	s.Run("malformed address", func() {
		_, err := s.service.FindTicket(ctx, "SP A", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAddress))
	})

	s.Run("nothing owned is not an error", func() {
		t, err := s.service.FindTicket(ctx, addrC.String(), evt1)
		s.Require().NoError(err)
		s.Nil(t)
	})

	s.Run("repeat lookups hit the cache", func() {
		_, err := s.service.FindTicket(ctx, addrC.String(), evt1)
		s.Require().NoError(err)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.OwnershipCache.WithLabelValues("hit")))
	})

	s.Run("purchase invalidates a cached negative", func() {
		none, err := s.service.FindTicket(ctx, addrA.String(), evt1)
		s.Require().NoError(err)
		s.Require().Nil(none)

		ticket := s.buyOne()
		found, err := s.service.FindTicket(ctx, addrA.String(), evt1)
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.Equal(ticket.ID, found.ID)
	})
}

func (s *ServiceSuite) TestFindTicket_CacheErrorFallsBackToStore() {
	mockCache := mocks.NewMockOwnershipCache(s.ctrl)
	svc := s.newService(WithOwnershipCache(mockCache))
	ticket := s.buyOne()

	mockCache.EXPECT().Get(gomock.Any(), addrA, evt1).Return(nil, false, errors.New("connection refused"))
	mockCache.EXPECT().Generation(gomock.Any(), addrA).Return(uint64(3), nil)
	mockCache.EXPECT().Put(gomock.Any(), addrA, evt1, gomock.Any(), uint64(3)).Return(errors.New("connection refused"))

	found, err := svc.FindTicket(context.Background(), addrA.String(), evt1)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(ticket.ID, found.ID)
}

func (s *ServiceSuite) TestRefresh() {
	ctx := context.Background()
	s.seedEvent("evt2", 75, 50, 5)

	// Another client bought on chain.
	s.ledger.SetInventory(evt1, 20, 100)
	s.ledger.SetInventory("evt2", 0, 50)

	s.Require().NoError(s.service.Refresh(ctx))
	s.Equal(20, s.remaining(evt1))
	s.Equal(0, s.remaining("evt2"))
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.DirectorySyncs.WithLabelValues("synced")))

	s.Run("events missing on chain keep their cached count", func() {
		listing, err := models.NewEventListing("draft", "Draft", 5, "STX", 10, 10, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.directory.Upsert(ctx, listing))

		s.Require().NoError(s.service.Refresh(ctx))
		s.Equal(10, s.remaining("draft"))
	})
}

func (s *ServiceSuite) TestListAndGet() {
	ctx := context.Background()
	s.seedEvent("evt0", 10, 10, 10)

	listings, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(listings, 2)
	s.Equal(domain.EventID("evt0"), listings[0].ID)

	got, err := s.service.Get(ctx, evt1)
	s.Require().NoError(err)
	s.Equal(25, got.RemainingSupply)

	_, err = s.service.Get(ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestList_StoreFailure() {
	mockDirectory := mocks.NewMockDirectoryStore(s.ctrl)
	mockDirectory.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection reset"))
	svc := New(mockDirectory, s.tickets, s.session, s.ledger, ledger.NewConfirmer(s.ledger))

	_, err := svc.List(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestStats() {
	ctx := context.Background()
	s.seedEvent("evt2", 75, 50, 5)
	s.seedEvent("evt3", 25, 30, 0)

	stats, err := s.service.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(75+45+30, stats.TicketsSold)
	s.Equal(180, stats.TotalSupply)
	s.Equal(int64(75*50+45*75+30*25), stats.Revenue["STX"])
	s.Equal(2, stats.ActiveEvents)
	s.Equal(1, stats.SoldOut)
	s.InDelta(150.0/180.0, stats.SellThrough, 1e-9)
}

func (s *ServiceSuite) TestPurchase_UnsettledHoldsTheSeat() {
	ctx := context.Background()
	s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
		return memory.Outcome{Status: ledger.TxPending}
	})

	s.Run("timeout", func() {
		_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
		s.True(dErrors.HasCode(err, dErrors.CodeTransactionTimeout))
		s.True(dErrors.IsAmbiguous(err))
		s.Contains(err.Error(), s.onlySettlement().TxID.String())
	})

	s.Run("cancelled caller", func() {
		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := s.service.Purchase(cctx, models.PurchaseRequest{EventID: evt1})
		s.True(dErrors.HasCode(err, dErrors.CodeCancelled))
	})

	pending, err := s.settled.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(ledger.TxPurchase, pending[0].Kind)
	s.Equal(addrA, pending[0].Address)
	s.Equal(int64(50), pending[0].Price)

	// Both seats stay reserved, including across a Refresh.
	s.Equal(23, s.remaining(evt1))
	s.Require().NoError(s.service.Refresh(ctx))
	s.Equal(23, s.remaining(evt1))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Purchases.WithLabelValues(string(dErrors.CodeTransactionTimeout))))
}

func (s *ServiceSuite) TestRecheck_PurchaseLandsAfterTimeout() {
	ctx := context.Background()
	s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
		return memory.Outcome{Status: ledger.TxPending}
	})
	_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 2})
	s.Require().True(dErrors.IsAmbiguous(err))
	txID := s.onlySettlement().TxID

	none, err := s.service.FindTicket(ctx, addrA.String(), evt1)
	s.Require().NoError(err)
	s.Nil(none)

	report, err := s.service.Recheck(ctx, txID)
	s.Require().NoError(err)
	s.Equal(ledger.TxPending, report.Status)
	s.Equal(ledger.TxPurchase, report.Kind)
	s.False(report.Applied)

	s.Require().NoError(s.ledger.Settle(txID, ledger.TxConfirmed, ""))

	report, err = s.service.Recheck(ctx, txID)
	s.Require().NoError(err)
	s.Equal(ledger.TxConfirmed, report.Status)
	s.True(report.Applied)
	s.Require().Len(report.Tickets, 2)
	s.Equal(txID, report.Tickets[0].PurchaseTxID)
	s.Equal(addrA, report.Tickets[0].Owner)

	found, err := s.service.FindTicket(ctx, addrA.String(), evt1)
	s.Require().NoError(err)
	s.Require().NotNil(found, "the cached negative was invalidated")

	s.Equal(23, s.remaining(evt1))
	inv, err := s.ledger.Inventory(ctx, evt1)
	s.Require().NoError(err)
	s.Equal(23, inv.Remaining)

	s.Run("applies once", func() {
		again, err := s.service.Recheck(ctx, txID)
		s.Require().NoError(err)
		s.Equal(ledger.TxConfirmed, again.Status)
		s.False(again.Applied)

		n, err := s.tickets.CountByEvent(ctx, evt1)
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Settlements.WithLabelValues("purchase", "confirmed")))
}

func (s *ServiceSuite) TestRecheck_PurchaseFailsAfterTimeout() {
	ctx := context.Background()
	s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
		return memory.Outcome{Status: ledger.TxPending}
	})
	_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 3})
	s.Require().True(dErrors.IsAmbiguous(err))
	s.Equal(22, s.remaining(evt1))
	txID := s.onlySettlement().TxID

	s.Require().NoError(s.ledger.Settle(txID, ledger.TxFailed, "sold out"))

	report, err := s.service.Recheck(ctx, txID)
	s.Require().NoError(err)
	s.Equal(ledger.TxFailed, report.Status)
	s.Equal("sold out", report.Reason)
	s.True(report.Applied)
	s.Empty(report.Tickets)

	s.Equal(25, s.remaining(evt1))
	n, err := s.tickets.CountByEvent(ctx, evt1)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ServiceSuite) TestRefresh_SweepsLateConfirmations() {
	ctx := context.Background()
	s.ledger.SetScript(func(ledger.Transaction) memory.Outcome {
		// Confirms after the 150ms confirmation window has closed.
		return memory.Outcome{Status: ledger.TxConfirmed, Delay: 300 * time.Millisecond}
	})

	_, err := s.service.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeTransactionTimeout))
	txID := s.onlySettlement().TxID

	s.Eventually(func() bool {
		state, err := s.ledger.Status(ctx, txID)
		return err == nil && state.Status == ledger.TxConfirmed
	}, time.Second, 10*time.Millisecond)

	s.Require().NoError(s.service.Refresh(ctx))

	found, err := s.service.FindTicket(ctx, addrA.String(), evt1)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(txID, found.PurchaseTxID)
	s.Equal(24, s.remaining(evt1))

	pending, err := s.settled.List(ctx)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *ServiceSuite) TestRecheck_TransferLandsAfterTimeout() {
	ctx := context.Background()
	ticket := s.buyOne()
	s.scriptTransfers(memory.Outcome{Status: ledger.TxPending})

	_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrB.String()})
	s.Require().True(dErrors.IsAmbiguous(err))
	p := s.onlySettlement()
	s.Equal(ledger.TxTransfer, p.Kind)
	s.Equal(ticket.ID, p.TicketID)
	s.Equal(addrB, p.Recipient)

	s.Run("ticket is locked until the transfer settles", func() {
		_, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrC.String()})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.ledger.Submitted(), 2)
	})

	before, err := s.service.FindTicket(ctx, addrB.String(), "")
	s.Require().NoError(err)
	s.Nil(before)

	s.Require().NoError(s.ledger.Settle(p.TxID, ledger.TxConfirmed, ""))
	report, err := s.service.Recheck(ctx, p.TxID)
	s.Require().NoError(err)
	s.True(report.Applied)
	s.Require().NotNil(report.Ticket)
	s.Equal(addrB, report.Ticket.Owner)

	owner, ok := s.ledger.OwnerOf(ticket.ID)
	s.True(ok)
	s.Equal(addrB, owner)
	fromB, err := s.service.FindTicket(ctx, addrB.String(), "")
	s.Require().NoError(err)
	s.Require().NotNil(fromB)
	s.Equal(ticket.ID, fromB.ID)

	history, err := s.service.History(ctx, ticket.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(p.TxID, history[0].TxID)

	s.Run("new owner can pass it on", func() {
		s.ledger.SetScript(nil)
		s.session.connectAs(addrB)
		defer s.session.connectAs(addrA)

		moved, err := s.service.Transfer(ctx, models.TransferRequest{TicketID: ticket.ID, To: addrC.String()})
		s.Require().NoError(err)
		s.Equal(addrC, moved.Owner)
	})
}

func (s *ServiceSuite) TestRecheck_Inputs() {
	ctx := context.Background()

	s.Run("empty id", func() {
		_, err := s.service.Recheck(ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown transaction reads as pending", func() {
		report, err := s.service.Recheck(ctx, "0xunknown")
		s.Require().NoError(err)
		s.Equal(ledger.TxPending, report.Status)
		s.Empty(report.Kind)
		s.False(report.Applied)
	})

	s.Run("settlement store failure", func() {
		mockSettled := mocks.NewMockSettlementStore(s.ctrl)
		mockSettled.EXPECT().Find(gomock.Any(), domain.TxID("0xunknown")).Return(nil, errors.New("connection reset"))
		svc := s.newService(WithSettlementStore(mockSettled))

		_, err := svc.Recheck(ctx, "0xunknown")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// pausingTickets holds FindByOwner after the read until resume closes.
type pausingTickets struct {
	*ticketstore.InMemoryStore
	once    sync.Once
	reading chan struct{}
	resume  chan struct{}
}

func (p *pausingTickets) FindByOwner(ctx context.Context, owner domain.Address, eventID domain.EventID) (*models.Ticket, error) {
	t, err := p.InMemoryStore.FindByOwner(ctx, owner, eventID)
	p.once.Do(func() { close(p.reading) })
	<-p.resume
	return t, err
}

func (s *ServiceSuite) TestFindTicket_ReadRacingPurchaseIsNotCached() {
	ctx := context.Background()
	tickets := &pausingTickets{
		InMemoryStore: s.tickets,
		reading:       make(chan struct{}),
		resume:        make(chan struct{}),
	}
	svc := s.newServiceWith(tickets)

	stale := make(chan *models.Ticket, 1)
	go func() {
		t, _ := svc.FindTicket(ctx, addrA.String(), evt1)
		stale <- t
	}()
	<-tickets.reading

	_, err := svc.Purchase(ctx, models.PurchaseRequest{EventID: evt1})
	s.Require().NoError(err)
	close(tickets.resume)
	s.Nil(<-stale, "the racing read saw the store before the purchase")

	found, err := svc.FindTicket(ctx, addrA.String(), evt1)
	s.Require().NoError(err)
	s.NotNil(found, "the racing read did not leave a negative in the cache")
}

// countingDirectory reports each decrement before applying it.
type countingDirectory struct {
	*directory.InMemoryStore
	onDecrement func(id domain.EventID)
}

func (c *countingDirectory) DecrementRemaining(ctx context.Context, id domain.EventID, n int) (*models.EventListing, error) {
	c.onDecrement(id)
	return c.InMemoryStore.DecrementRemaining(ctx, id, n)
}

func (s *ServiceSuite) TestPurchase_ReservesBeforeDecrement() {
	ctx := context.Background()
	var (
		svc         *Service
		atDecrement int
	)
	dir := &countingDirectory{
		InMemoryStore: s.directory,
		onDecrement:   func(id domain.EventID) { atDecrement = svc.pendingFor(id) },
	}
	confirmer := ledger.NewConfirmer(s.ledger,
		ledger.WithTimeout(150*time.Millisecond),
		ledger.WithPollInterval(10*time.Millisecond),
	)
	svc = New(dir, s.tickets, s.session, s.ledger, confirmer,
		WithOwnershipCache(s.cache),
		WithSettlementStore(s.settled),
		WithAuditPublisher(s.mockAudit),
	)

	s.Run("reservation is visible while decrementing", func() {
		_, err := svc.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 2})
		s.Require().NoError(err)
		s.Equal(2, atDecrement)
		s.Zero(svc.pendingFor(evt1))
	})

	s.Run("failed decrement releases the reservation", func() {
		_, err := svc.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 10})
		s.Require().NoError(err)
		_, err = svc.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 10})
		s.Require().NoError(err)

		_, err = svc.Purchase(ctx, models.PurchaseRequest{EventID: evt1, Quantity: 5})
		s.True(dErrors.HasCode(err, dErrors.CodeOutOfInventory))
		s.Equal(5, atDecrement)
		s.Zero(svc.pendingFor(evt1))
		s.Equal(3, s.remaining(evt1))
	})
}
