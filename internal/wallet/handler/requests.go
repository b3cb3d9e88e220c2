package handler

import (
	dErrors "stacksevents/pkg/domain-errors"
)

const maxInjectedGlobals = 32

// ConnectRequest is the optional body of POST /wallet/connect. The browser
// reports the provider globals it found on the page.
type ConnectRequest struct {
	InjectedGlobals []string `json:"injected_globals,omitempty"`
}

func (r *ConnectRequest) Validate() error {
	if len(r.InjectedGlobals) > maxInjectedGlobals {
		return dErrors.New(dErrors.CodeBadRequest, "too many injected_globals")
	}
	for _, g := range r.InjectedGlobals {
		if len(g) > 128 {
			return dErrors.New(dErrors.CodeBadRequest, "injected_globals entry is too long")
		}
	}
	return nil
}
