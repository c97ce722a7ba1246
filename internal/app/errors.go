package service

import "errors"

// Sentinel errors for request validation.
var (
	ErrMissingSpot = errors.New("spot is required")
	ErrNotStarted  = errors.New("service has no desk-log source")
)
