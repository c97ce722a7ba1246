package feedback

import (
	"time"

	"github.com/okian/busyspot/pkg/logger"
)

// DefaultWindow is how far back ratings count.
const DefaultWindow = 14 * 24 * time.Hour

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLogger sets the aggregator's logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWindow sets the look-back window for timestamped ratings.
func WithWindow(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.window = d
		}
	}
}
