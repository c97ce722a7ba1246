package feedback

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
)

// Submission is one new rating from a user.
type Submission struct {
	Location model.Location `json:"spot_id"`
	Rating   float64        `json:"busy_rating"`
	At       time.Time      `json:"created_at"`
}

// Validate checks the location and the 1-10 rating scale.
func (s Submission) Validate() error {
	if !s.Location.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSpot, string(s.Location))
	}
	if math.IsNaN(s.Rating) || s.Rating < ratingMin || s.Rating > ratingScale {
		return fmt.Errorf("%w: %v", ErrInvalidRating, s.Rating)
	}
	return nil
}

// Submitter stores new ratings. Sources that can accept writes implement it.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}
