package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
	"stacksevents/pkg/platform/httputil"
	"stacksevents/pkg/requestcontext"
)

// SessionReader exposes the connected address of the wallet session.
type SessionReader interface {
	CurrentAddress() (domain.Address, bool)
}

type contextKeyAddress struct{}

// ContextKeyAddress is exported for handler tests.
var ContextKeyAddress = contextKeyAddress{}

// ConnectedAddress returns the address RequireConnected stored in ctx.
func ConnectedAddress(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(ContextKeyAddress).(domain.Address)
	return addr, ok && !addr.IsNil()
}

// WithConnectedAddress injects an address as RequireConnected would.
func WithConnectedAddress(ctx context.Context, addr domain.Address) context.Context {
	return context.WithValue(ctx, ContextKeyAddress, addr)
}

// RequireConnected rejects mutating requests while no wallet is connected and
// otherwise pins the connected address for the rest of the request.
func RequireConnected(session SessionReader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := session.CurrentAddress()
			if !ok {
				logger.WarnContext(r.Context(), "wallet not connected",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeNotConnected, "connect a wallet first"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithConnectedAddress(r.Context(), addr)))
		})
	}
}
