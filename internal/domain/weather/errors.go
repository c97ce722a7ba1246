package weather

import "errors"

// Sentinel kinds for weather providers.
var (
	ErrUnavailable = errors.New("weather unavailable")
	ErrNoHour      = errors.New("weather hour not in forecast")
)
