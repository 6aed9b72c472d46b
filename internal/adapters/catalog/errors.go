package catalog

import "errors"

// Sentinel kinds for catalog client errors.
var (
	ErrInvalidEndpoint   = errors.New("invalid catalog endpoint")
	ErrInvalidIdentifier = errors.New("identifier must not be empty")
)
