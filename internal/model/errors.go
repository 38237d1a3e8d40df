package model

import "errors"

// Error taxonomy shared by the ingestion handlers, the store, and the
// enrichment adapter. Callers branch with errors.Is; wrapping preserves
// the underlying cause for logging.
var (
	// ErrInvalidArgument signals a malformed or missing business key.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals a referenced entity is absent where presence
	// was assumed (e.g. fulfil before prepare was materialized).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists signals a duplicate creation attempt on a unique
	// business key.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUpstreamUnavailable signals an enrichment call failed at the
	// transport level.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPersistenceFailure signals a store operation failed for a reason
	// other than the key-level conditions above.
	ErrPersistenceFailure = errors.New("persistence failure")
)
