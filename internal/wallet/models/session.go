package models

import (
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
)

// Status names the variant of a SessionState.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// SessionState is one of Disconnected, Connecting, Connected(address) or
// Error(reason). Build it through the constructors below; Address is set only
// when connected and Reason only in the error variant.
type SessionState struct {
	Status   Status
	Address  domain.Address
	Network  domain.Network
	Provider ProviderKind
	Reason   dErrors.Code
	Message  string
}

func Disconnected() SessionState {
	return SessionState{Status: StatusDisconnected}
}

func Connecting() SessionState {
	return SessionState{Status: StatusConnecting}
}

func Connected(addr domain.Address, network domain.Network, provider ProviderKind) SessionState {
	return SessionState{Status: StatusConnected, Address: addr, Network: network, Provider: provider}
}

// Failed builds the Error variant from a coded error.
func Failed(err error) SessionState {
	return SessionState{
		Status:  StatusError,
		Reason:  dErrors.CodeOf(err),
		Message: dErrors.Message(err),
	}
}

func (s SessionState) IsConnected() bool {
	return s.Status == StatusConnected
}

// CanConnect reports whether connect() is allowed from this state.
func (s SessionState) CanConnect() bool {
	return s.Status == StatusDisconnected || s.Status == StatusError
}

// Listener observes state transitions in the order they happen.
type Listener func(prev, next SessionState)
