package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stacksevents/internal/ledger"
	"stacksevents/internal/wallet/marker"
	"stacksevents/internal/wallet/metrics"
	"stacksevents/internal/wallet/models"
	"stacksevents/pkg/domain"
	audit "stacksevents/pkg/platform/audit"
)

// Detector reports which wallet providers are installed.
type Detector interface {
	Detect(ctx context.Context) models.ProviderSet
}

// Signer is the external wallet. Authorize suspends until the user approves
// or rejects in the wallet's own UI. SignOut is local only and does not
// revoke anything provider-side.
type Signer interface {
	Authorize(ctx context.Context, app models.AppDetails) (models.Profile, error)
	Current(ctx context.Context) (models.Profile, bool, error)
	Sign(ctx context.Context, tx ledger.Transaction) ([]byte, error)
	SignOut(ctx context.Context) error
}

// MarkerStore persists the signed session marker between process runs.
type MarkerStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Load(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

// OwnershipInvalidator drops cached ticket ownership for an address.
type OwnershipInvalidator interface {
	InvalidateAddress(ctx context.Context, addr domain.Address) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the connection to a single external signer. All transitions
// are serialized and listeners are notified synchronously in transition
// order; a listener must not call Connect, Disconnect or Restore inline.
type Service struct {
	detector    Detector
	signer      Signer
	markers     MarkerStore
	codec       *marker.Codec
	invalidator OwnershipInvalidator
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	app         models.AppDetails

	// notifyMu serializes transitions together with their notifications.
	notifyMu sync.Mutex
	mu       sync.Mutex
	state    models.SessionState
	// gen increments on every connect attempt and disconnect so a late
	// signer answer can tell it has been superseded.
	gen       uint64
	lastAddr  domain.Address
	listeners map[int]models.Listener
	nextID    int
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

// WithOwnershipInvalidator wires the ticket ownership cache.
func WithOwnershipInvalidator(inv OwnershipInvalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

// WithMarkers enables session persistence.
func WithMarkers(store MarkerStore, codec *marker.Codec) Option {
	return func(s *Service) {
		s.markers = store
		s.codec = codec
	}
}

// New starts Disconnected.
func New(detector Detector, signer Signer, app models.AppDetails, opts ...Option) *Service {
	s := &Service{
		detector:  detector,
		signer:    signer,
		app:       app,
		logger:    slog.Default(),
		state:     models.Disconnected(),
		listeners: make(map[int]models.Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state.
func (s *Service) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentAddress returns the address iff connected.
func (s *Service) CurrentAddress() (domain.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsConnected() {
		return "", false
	}
	return s.state.Address, true
}

// Network is the configured address variant.
func (s *Service) Network() domain.Network {
	return s.app.Network
}

// Subscribe registers l for every later transition.
func (s *Service) Subscribe(l models.Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// transition applies next when guard accepts the current state and notifies
// listeners. It reports whether the state changed.
func (s *Service) transition(guard func(cur models.SessionState, gen uint64) bool, next models.SessionState, bumpGen bool) (prev models.SessionState, gen uint64, changed bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev = s.state
	if guard != nil && !guard(prev, s.gen) {
		gen = s.gen
		s.mu.Unlock()
		return prev, gen, false
	}
	if bumpGen {
		s.gen++
	}
	gen = s.gen
	s.state = next
	if next.IsConnected() {
		s.lastAddr = next.Address
	}
	listeners := make([]models.Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	if prev == next {
		return prev, gen, false
	}
	for _, l := range listeners {
		l(prev, next)
	}
	if s.metrics != nil {
		s.metrics.SetConnected(next.IsConnected())
	}
	return prev, gen, true
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
	if s.invalidator == nil {
		return
	}
	for _, addr := range addrs {
		if addr.IsNil() {
			continue
		}
		if err := s.invalidator.InvalidateAddress(ctx, addr); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate ownership cache",
				"address", addr.Short(),
				"error", err,
			)
		}
	}
}
