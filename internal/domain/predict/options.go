package predict

import (
	"time"

	"github.com/okian/busyspot/pkg/logger"
)

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithLogger sets the predictor's logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the source of "now" for requests without a usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithFeedback sets the feedback signal. Without one, predictions are model only.
func WithFeedback(f FeedbackScorer) Option {
	return func(p *Predictor) {
		p.feedback = f
	}
}

// WithWeather sets the weather adjuster. Without one, weather is skipped.
func WithWeather(w WeatherAdjuster) Option {
	return func(p *Predictor) {
		p.weather = w
	}
}
