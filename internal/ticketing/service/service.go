package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/internal/ticketing/metrics"
	"stacksevents/internal/ticketing/models"
	ticketstore "stacksevents/internal/ticketing/store/ticket"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/platform/sentinel"
)

const defaultMaxPerPurchase = 10

// DirectoryStore is the local catalog cache.
type DirectoryStore interface {
	List(ctx context.Context) ([]*models.EventListing, error)
	Get(ctx context.Context, id domain.EventID) (*models.EventListing, error)
	DecrementRemaining(ctx context.Context, id domain.EventID, n int) (*models.EventListing, error)
	IncrementRemaining(ctx context.Context, id domain.EventID, n int) (*models.EventListing, error)
	Sync(ctx context.Context, id domain.EventID, remaining, total int) (*models.EventListing, error)
}

// TicketStore holds issued tickets and the transfer log. Execute validates
// and mutates one ticket atomically.
type TicketStore interface {
	CreateMany(ctx context.Context, tickets []*models.Ticket) error
	FindByID(ctx context.Context, id domain.TicketID) (*models.Ticket, error)
	FindByOwner(ctx context.Context, owner domain.Address, eventID domain.EventID) (*models.Ticket, error)
	ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Ticket, error)
	Execute(ctx context.Context, id domain.TicketID, validate func(*models.Ticket) error, mutate func(*models.Ticket)) (*models.Ticket, error)
	AppendTransfer(ctx context.Context, rec models.TransferRecord) error
	ListTransfers(ctx context.Context, id domain.TicketID) ([]models.TransferRecord, error)
}

// OwnershipCache caches FindTicket results per address. A cached nil ticket
// is a negative result. Put is conditional on the generation taken before
// the store read; InvalidateAddress advances it.
type OwnershipCache interface {
	Get(ctx context.Context, addr domain.Address, eventID domain.EventID) (*models.Ticket, bool, error)
	Generation(ctx context.Context, addr domain.Address) (uint64, error)
	Put(ctx context.Context, addr domain.Address, eventID domain.EventID, t *models.Ticket, gen uint64) error
	InvalidateAddress(ctx context.Context, addr domain.Address) error
}

// SettlementStore records submitted transactions whose outcome was not seen
// before the caller stopped waiting. Find joins a transaction in ctx and
// locks the record there.
type SettlementStore interface {
	Save(ctx context.Context, p *models.Settlement) error
	Find(ctx context.Context, id domain.TxID) (*models.Settlement, error)
	FindByTicket(ctx context.Context, id domain.TicketID) (*models.Settlement, error)
	List(ctx context.Context) ([]*models.Settlement, error)
	Delete(ctx context.Context, id domain.TxID) error
}

// Session is the wallet session: the only source of the caller's address
// and the boundary through which transactions get signed.
type Session interface {
	CurrentAddress() (domain.Address, bool)
	SignTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
}

// Confirmer waits for a submitted transaction to settle.
type Confirmer interface {
	Await(ctx context.Context, id domain.TxID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service drives the ticket lifecycle. The ledger is authoritative; the
// directory and ticket stores are reconciled against it.
type Service struct {
	directory DirectoryStore
	tickets   TicketStore
	cache     OwnershipCache
	settled   SettlementStore
	session   Session
	ledger    ledger.Ledger
	confirmer Confirmer
	tx        TicketStoreTx
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	maxPerPurchase int
	syncParallel   int

	mu sync.Mutex
	// pending counts tickets reserved locally but not yet settled on the
	// ledger, per event.
	pending map[domain.EventID]int
	// inflight holds tickets with a transfer awaiting confirmation.
	inflight map[domain.TicketID]struct{}
	// held maps an unsettled purchase to the reservation it still holds in
	// pending.
	held map[domain.TxID]reservation
}

type reservation struct {
	eventID domain.EventID
	qty     int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithOwnershipCache(c OwnershipCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithSettlementStore persists unsettled transactions. The default keeps
// them in memory.
func WithSettlementStore(store SettlementStore) Option {
	return func(s *Service) {
		s.settled = store
	}
}

// WithTx replaces the default in-process transaction boundary.
func WithTx(tx TicketStoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithMaxPerPurchase(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPerPurchase = n
		}
	}
}

// WithSyncParallelism bounds concurrent inventory reads during Refresh.
func WithSyncParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.syncParallel = n
		}
	}
}

func New(directory DirectoryStore, tickets TicketStore, session Session, l ledger.Ledger, confirmer Confirmer, opts ...Option) *Service {
	s := &Service{
		directory:      directory,
		tickets:        tickets,
		session:        session,
		ledger:         l,
		confirmer:      confirmer,
		logger:         slog.Default(),
		maxPerPurchase: defaultMaxPerPurchase,
		syncParallel:   4,
		pending:        make(map[domain.EventID]int),
		inflight:       make(map[domain.TicketID]struct{}),
		held:           make(map[domain.TxID]reservation),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewLockTx(5 * time.Second)
	}
	if s.settled == nil {
		s.settled = ticketstore.NewInMemorySettlementStore()
	}
	return s
}

func (s *Service) reserve(eventID domain.EventID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[eventID] += n
}

func (s *Service) release(eventID domain.EventID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[eventID] -= n
	if s.pending[eventID] <= 0 {
		delete(s.pending, eventID)
	}
}

// hold keeps a purchase's reservation past the call that made it, until
// the transaction settles.
func (s *Service) hold(txID domain.TxID, eventID domain.EventID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[txID] = reservation{eventID: eventID, qty: n}
}

func (s *Service) heldFor(txID domain.TxID) (reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.held[txID]
	return r, ok
}

// releaseHeld drops a held reservation and reports whether there was one.
// After a restart nothing is held and the ledger count alone applies.
func (s *Service) releaseHeld(txID domain.TxID) (reservation, bool) {
	s.mu.Lock()
	r, ok := s.held[txID]
	delete(s.held, txID)
	s.mu.Unlock()
	if ok {
		s.release(r.eventID, r.qty)
	}
	return r, ok
}

func (s *Service) pendingFor(eventID domain.EventID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[eventID]
}

// claimTransfer marks a ticket as having a transfer in flight.
func (s *Service) claimTransfer(id domain.TicketID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Service) finishTransfer(id domain.TicketID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) invalidate(ctx context.Context, addrs ...domain.Address) {
	if s.cache == nil {
		return
	}
	for _, addr := range addrs {
		if err := s.cache.InvalidateAddress(ctx, addr); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate ownership cache",
				"address", addr.Short(),
				"error", err,
			)
		}
	}
}

// wrapStoreErr translates store sentinels into domain errors. Coded errors
// pass through.
func wrapStoreErr(err error, what string) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, what+" was modified concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+what)
	}
}

// outcomeOf is the metrics label for an operation result.
func outcomeOf(err error) string {
	if err == nil {
		return "confirmed"
	}
	return string(dErrors.CodeOf(err))
}
