package market

import "errors"

// Service errors. The API layer maps these to HTTP status codes.
var (
	// ErrNotFound is returned when a requested account does not exist
	// on the ledger.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable is returned when the ledger RPC call
	// failed or timed out. Reads do not fall back to expired cache
	// entries in this case.
	ErrUpstreamUnavailable = errors.New("ledger unavailable")

	// ErrInvalidInput is returned when request validation fails before
	// any cache or ledger access.
	ErrInvalidInput = errors.New("invalid input")
)
