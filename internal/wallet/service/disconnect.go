package service

import (
	"context"

	"stacksevents/internal/wallet/models"
	audit "stacksevents/pkg/platform/audit"
)

// Disconnect always ends in Disconnected, clears the persisted marker and
// signs out locally. It is idempotent and cancels a pending Connect.
func (s *Service) Disconnect(ctx context.Context) error {
	prev, _, changed := s.transition(nil, models.Disconnected(), true)

	if s.markers != nil {
		if err := s.markers.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to clear session marker", "error", err)
		}
	}
	if err := s.signer.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "signer sign-out failed", "error", err)
	}

	if !changed || !prev.IsConnected() {
		return nil
	}
	if s.metrics != nil {
		s.metrics.Disconnects.Inc()
	}
	s.logger.InfoContext(ctx, "wallet disconnected", "address", prev.Address.Short())
	s.emit(ctx, audit.Event{
		Address: prev.Address.String(),
		Action:  string(audit.EventWalletDisconnected),
	})
	return nil
}
