package service

import (
	"time"

	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service and its components.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFeedback sets the feedback source. A source that also implements
// feedback.Submitter accepts new ratings.
func WithFeedback(src feedback.Source) Option {
	return func(s *Service) {
		s.feedback = src
	}
}

// WithFeedbackWindow sets how far back ratings count.
func WithFeedbackWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithWeather enables weather adjustment through provider.
func WithWeather(provider weather.Provider) Option {
	return func(s *Service) {
		s.weather = provider
	}
}

// WithClock overrides the time source used for defaults and versions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCloser registers a cleanup to run on Close, in reverse registration order.
func WithCloser(fn func()) Option {
	return func(s *Service) {
		if fn != nil {
			s.closers = append(s.closers, fn)
		}
	}
}
