package occupancy

import (
	"time"

	"github.com/okian/busyspot/pkg/logger"
)

// Option applies a configuration option to the Trainer.
type Option func(*Trainer)

// WithLogger sets the trainer's logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock sets the source of the snapshot's trained_at stamp.
func WithClock(now func() time.Time) Option {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithVersioner sets the generator for snapshot version identifiers.
func WithVersioner(next func() string) Option {
	return func(t *Trainer) {
		if next != nil {
			t.version = next
		}
	}
}
