package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrFinalized = errors.New("aggregator already finalized")
)
