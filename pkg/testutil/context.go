package testutil

import (
	"net/http"

	"stacksevents/internal/platform/middleware"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/requestcontext"
)

// WithConnectedAddress sets the address RequireConnected would pin for a
// connected wallet.
func WithConnectedAddress(req *http.Request, addr string) *http.Request {
	return req.WithContext(middleware.WithConnectedAddress(req.Context(), domain.Address(addr)))
}

// WithRequestID stamps a fixed request id so audit assertions are stable.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
