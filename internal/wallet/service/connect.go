package service

import (
	"context"
	"errors"

	"stacksevents/internal/wallet/models"
	dErrors "stacksevents/pkg/domain-errors"
	audit "stacksevents/pkg/platform/audit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Connect runs detection and then the signer's authorization handshake.
// Allowed only from Disconnected or Error; otherwise CodeConflict. The
// returned state is the one this attempt ended in.
func (s *Service) Connect(ctx context.Context) (models.SessionState, error) {
	ctx, span := otel.Tracer("stacksevents/wallet").Start(ctx, "wallet.connect")
	defer span.End()

	_, gen, changed := s.transition(func(cur models.SessionState, _ uint64) bool {
		return cur.CanConnect()
	}, models.Connecting(), true)
	if !changed {
		cur := s.State()
		return cur, dErrors.New(dErrors.CodeConflict, "wallet is already "+string(cur.Status))
	}

	providers := s.detector.Detect(ctx)
	if providers.Empty() {
		err := dErrors.New(dErrors.CodeNoProviderFound, "no supported wallet extension found")
		return s.failConnect(ctx, gen, err)
	}

	profile, err := s.signer.Authorize(ctx, s.app)
	if s.superseded(gen) {
		// A disconnect won the race; the late answer is discarded.
		s.logger.InfoContext(ctx, "connect superseded by disconnect")
		if s.metrics != nil {
			s.metrics.IncConnect(string(dErrors.CodeCancelled))
		}
		span.SetStatus(codes.Error, "superseded")
		return s.State(), dErrors.New(dErrors.CodeCancelled, "connect cancelled by disconnect")
	}
	if err != nil {
		return s.failConnect(ctx, gen, classifySignerError(ctx, err, "wallet authorization failed"))
	}

	addr, err := profile.AddressFor(s.app.Network)
	if err != nil {
		return s.failConnect(ctx, gen, err)
	}
	provider := profile.Provider
	if provider == "" || !providers.Has(provider) {
		provider, _ = providers.Preferred()
	}

	next := models.Connected(addr, s.app.Network, provider)
	s.mu.Lock()
	prior := s.lastAddr
	s.mu.Unlock()
	_, _, changed = s.transition(func(cur models.SessionState, g uint64) bool {
		return g == gen && cur.Status == models.StatusConnecting
	}, next, false)
	if !changed {
		return s.State(), dErrors.New(dErrors.CodeCancelled, "connect cancelled by disconnect")
	}

	s.invalidate(ctx, prior, addr)
	s.saveMarker(ctx, next)
	if s.metrics != nil {
		s.metrics.IncConnect("connected")
	}
	span.SetAttributes(attribute.String("provider", string(provider)))
	s.logger.InfoContext(ctx, "wallet connected",
		"address", addr.Short(),
		"network", s.app.Network,
		"provider", provider,
	)
	s.emit(ctx, audit.Event{
		Address: addr.String(),
		Action:  string(audit.EventWalletConnected),
		Reason:  string(provider),
	})
	return next, nil
}

func (s *Service) failConnect(ctx context.Context, gen uint64, err error) (models.SessionState, error) {
	next := models.Failed(err)
	_, _, changed := s.transition(func(cur models.SessionState, g uint64) bool {
		return g == gen && cur.Status == models.StatusConnecting
	}, next, false)
	if !changed {
		return s.State(), dErrors.New(dErrors.CodeCancelled, "connect cancelled by disconnect")
	}
	if s.metrics != nil {
		s.metrics.IncConnect(string(next.Reason))
	}
	s.logger.WarnContext(ctx, "wallet connect failed",
		"reason", next.Reason,
		"error", err,
	)
	s.emit(ctx, audit.Event{
		Action: string(audit.EventWalletConnectFailed),
		Reason: string(next.Reason),
	})
	trace.SpanFromContext(ctx).SetStatus(codes.Error, string(next.Reason))
	return next, err
}

func (s *Service) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

// classifySignerError maps a signer failure onto the error taxonomy. Context
// cancellation and user rejection are CodeCancelled; errors the signer already
// coded keep their code; anything else is CodeNotAuthorized.
func classifySignerError(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeCancelled, msg+": cancelled")
	}
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeNotAuthorized, msg)
}

func (s *Service) saveMarker(ctx context.Context, state models.SessionState) {
	if s.markers == nil || s.codec == nil {
		return
	}
	token, err := s.codec.Encode(state.Address, state.Network, state.Provider)
	if err == nil {
		err = s.markers.Save(ctx, token, s.codec.TTL())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist session marker", "error", err)
	}
}
