package feedback

import "errors"

// Sentinel kinds for feedback sources.
var (
	ErrUnavailable = errors.New("feedback source unavailable")
	ErrMalformed   = errors.New("feedback data malformed")
)

// Sentinel kinds for feedback submissions.
var (
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
	ErrUnknownSpot   = errors.New("unknown spot")
	ErrReadOnly      = errors.New("feedback source does not accept submissions")
)
