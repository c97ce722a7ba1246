package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNotFound = errors.New("frequency table not found")
	ErrCorrupt  = errors.New("frequency table corrupt")
	ErrInvalid  = errors.New("frequency table invalid")
)
