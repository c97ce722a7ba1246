package occupancy

import "errors"

// Sentinel kinds for training errors.
var (
	ErrSourceUnavailable = errors.New("desk log source unavailable")
	ErrNoMatchingData    = errors.New("no desk log records map to a known location")
)
