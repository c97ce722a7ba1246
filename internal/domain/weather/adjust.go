// Package weather applies a bounded, deterministic weather adjustment to a busyness score.
package weather

import (
	"context"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

// Adjustment rules.
const (
	lightRainMM   = 0.1
	lightRainBump = 0.15
	heavyRainMM   = 2.0
	heavyRainBump = 0.25
	hotC          = 23.0
	hotDrop       = -0.10
	coldC         = 5.0
	coldBump      = 0.10
	cloudWeight   = 0.05
	windyKMH      = 20.0
	windBump      = 0.05

	maxFactor = 0.35
	minScore  = 0.01
	maxScore  = 1.0
)

// Outcome is the tagged diagnostic of one adjustment.
type Outcome = model.WeatherOutcome

// Provider looks up the observed or forecast weather for an instant.
type Provider interface {
	Observe(ctx context.Context, at time.Time) (model.WeatherObservation, error)
}

// Factor returns the additive adjustment for obs, clamped to [-0.35, 0.35].
// Missing fields contribute nothing.
func Factor(obs model.WeatherObservation) float64 {
	f := 0.0
	if p := obs.Precip; p != nil {
		if *p > lightRainMM {
			f += lightRainBump
		}
		if *p > heavyRainMM {
			f += heavyRainBump
		}
	}
	if t := obs.Temp; t != nil {
		if *t >= hotC {
			f += hotDrop
		} else if *t <= coldC {
			f += coldBump
		}
	}
	if c := obs.Cloud; c != nil {
		f += *c / 100 * cloudWeight
	}
	if w := obs.Wind; w != nil && *w > windyKMH {
		f += windBump
	}
	return model.Clamp(f, -maxFactor, maxFactor)
}

// Adjust applies obs to base. The result is always within [0.01, 1].
func Adjust(base float64, obs model.WeatherObservation) (float64, Outcome) {
	f := Factor(obs)
	adjusted := model.Clamp(base+f, minScore, maxScore)
	raw := obs
	return adjusted, Outcome{
		Status: model.WeatherApplied,
		Raw:    &raw,
		Factor: model.Round4(f),
		Before: model.Round4(base),
		After:  model.Round4(adjusted),
	}
}

// Skipped is the outcome when no observation could be applied; the score passes through.
func Skipped(base float64, reason string) (float64, Outcome) {
	return base, Outcome{
		Status: model.WeatherSkipped,
		Error:  reason,
		Factor: 0,
		Before: model.Round4(base),
		After:  model.Round4(base),
	}
}

// Adjuster fetches weather from a provider and applies it.
type Adjuster struct {
	provider Provider
	logger   logger.Logger
}

// Option applies a configuration option to the Adjuster.
type Option func(*Adjuster)

// WithLogger sets the adjuster's logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adjuster) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdjuster creates an adjuster. A nil provider skips every adjustment.
func NewAdjuster(provider Provider, opts ...Option) *Adjuster {
	a := &Adjuster{provider: provider, logger: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply adjusts base by the weather at the given instant. It never fails: any
// provider problem leaves the score unchanged and is reported in the outcome.
func (a *Adjuster) Apply(ctx context.Context, base float64, at time.Time) (float64, Outcome) {
	if a.provider == nil {
		metrics.RecordWeatherOutcome(string(model.WeatherSkipped))
		return Skipped(base, "weather disabled")
	}

	start := time.Now()
	obs, err := a.provider.Observe(ctx, at.UTC())
	metrics.RecordWeatherLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		a.logger.Warn(ctx, "weather lookup failed", logger.Error(err), logger.String("at", at.UTC().Format(time.RFC3339)))
		metrics.RecordWeatherOutcome(string(model.WeatherSkipped))
		return Skipped(base, err.Error())
	}
	if !obs.Available() {
		metrics.RecordWeatherOutcome(string(model.WeatherSkipped))
		return Skipped(base, ErrUnavailable.Error())
	}

	score, out := Adjust(base, obs)
	out.TimestampUTC = at.UTC().Format(time.RFC3339)
	metrics.RecordWeatherOutcome(string(model.WeatherApplied))
	return score, out
}
