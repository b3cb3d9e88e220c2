package service

import (
	"context"

	"stacksevents/internal/wallet/models"
	audit "stacksevents/pkg/platform/audit"
)

// Restore reconnects from a persisted marker without prompting. The marker is
// only a hint: the session becomes Connected only when the signer still holds
// a session for the same address on the configured network. Any mismatch
// clears the marker and leaves the session Disconnected.
func (s *Service) Restore(ctx context.Context) (models.SessionState, error) {
	cur := s.State()
	if cur.Status != models.StatusDisconnected || s.markers == nil || s.codec == nil {
		return cur, nil
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	token, ok, err := s.markers.Load(ctx)
	if err != nil {
		s.restoreOutcome("store_error")
		return cur, err
	}
	if !ok {
		s.restoreOutcome("no_marker")
		return cur, nil
	}

	m, err := s.codec.Decode(token)
	if err != nil {
		s.logger.InfoContext(ctx, "discarding session marker", "error", err)
		return s.discardMarker(ctx, "invalid_marker")
	}
	if m.Network != s.app.Network {
		return s.discardMarker(ctx, "network_changed")
	}

	profile, active, err := s.signer.Current(ctx)
	if err != nil {
		s.restoreOutcome("signer_error")
		return cur, classifySignerError(ctx, err, "wallet session check failed")
	}
	if !active {
		return s.discardMarker(ctx, "signer_signed_out")
	}
	addr, err := profile.AddressFor(s.app.Network)
	if err != nil || addr != m.Address {
		return s.discardMarker(ctx, "address_mismatch")
	}

	provider := m.Provider
	if provider == "" {
		provider = profile.Provider
	}
	next := models.Connected(addr, s.app.Network, provider)
	s.mu.Lock()
	prior := s.lastAddr
	s.mu.Unlock()
	_, _, changed := s.transition(func(c models.SessionState, g uint64) bool {
		return g == gen && c.Status == models.StatusDisconnected
	}, next, false)
	if !changed {
		s.restoreOutcome("superseded")
		return s.State(), nil
	}

	s.invalidate(ctx, prior, addr)
	s.restoreOutcome("restored")
	s.logger.InfoContext(ctx, "wallet session restored", "address", addr.Short())
	s.emit(ctx, audit.Event{
		Address: addr.String(),
		Action:  string(audit.EventSessionRestored),
	})
	return next, nil
}

func (s *Service) discardMarker(ctx context.Context, outcome string) (models.SessionState, error) {
	if err := s.markers.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear session marker", "error", err)
	}
	s.restoreOutcome(outcome)
	return s.State(), nil
}

func (s *Service) restoreOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.IncRestore(outcome)
	}
}
