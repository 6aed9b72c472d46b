package model

import "errors"

// Sentinel kinds shared across the pipeline. These allow errors.Is from callers.
var (
	// ErrNotFound means the catalog has no monitorable entity for an identifier
	// (the event cart is closed). It is a legitimate end state, not a failure.
	ErrNotFound = errors.New("identifier not found")

	// ErrLookup wraps transport and protocol failures of a catalog lookup.
	ErrLookup = errors.New("lookup failed")

	// ErrSourceUnavailable means the identifier list could not be loaded.
	ErrSourceUnavailable = errors.New("identifier source unavailable")

	// ErrRunInProgress refuses a run while another one is executing.
	ErrRunInProgress = errors.New("a run is already in progress")
)
