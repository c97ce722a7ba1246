package predict

import "errors"

// Sentinel kinds for prediction errors.
var (
	ErrNoModel = errors.New("occupancy model not trained")
)
