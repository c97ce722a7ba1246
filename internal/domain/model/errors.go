package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidBin       = errors.New("invalid time bin")
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidFrequency = errors.New("frequency out of range")
	ErrUnparseableTime  = errors.New("unparseable timestamp")
)
