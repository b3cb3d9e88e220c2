package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and ledger clients
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrNotFound: entity does not exist in store or cache
//   - ErrConflict: a concurrent writer already holds the resource
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
