// Package predict combines the occupancy model, feedback and weather into one busyness score.
package predict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

const (
	neutralPrior   = 0.5
	modelWeight    = 0.75
	feedbackWeight = 0.25
)

// TableLoader reads the current frequency table.
type TableLoader interface {
	Load(ctx context.Context) (model.Snapshot, error)
}

// FeedbackScorer yields the recent feedback signal for a location.
type FeedbackScorer interface {
	Score(ctx context.Context, location model.Location, asOf time.Time) (float64, bool)
}

// WeatherAdjuster applies the weather at an instant to a score.
type WeatherAdjuster interface {
	Apply(ctx context.Context, base float64, at time.Time) (float64, weather.Outcome)
}

// Predictor orchestrates one prediction: model lookup, feedback, then weather.
type Predictor struct {
	table    TableLoader
	feedback FeedbackScorer
	weather  WeatherAdjuster
	now      func() time.Time
	logger   logger.Logger
}

// NewPredictor creates a predictor reading tables from table.
func NewPredictor(table TableLoader, opts ...Option) *Predictor {
	p := &Predictor{
		table:  table,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve parses timestamp, falling back to the current instant when it is empty
// or unparseable. The result is in UTC.
func (p *Predictor) Resolve(timestamp string) time.Time {
	if strings.TrimSpace(timestamp) != "" {
		if at, err := model.ParseInstant(timestamp); err == nil {
			return at
		}
	}
	return p.now().UTC()
}

// Predict scores location at timestamp. Only a missing or unreadable table is an error.
func (p *Predictor) Predict(ctx context.Context, location model.Location, timestamp string) (model.PredictionResult, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return model.PredictionResult{}, err
	}
	return p.score(ctx, snap, location, p.Resolve(timestamp)), nil
}

// PredictAll scores every canonical location at one resolved instant, reading the table once.
func (p *Predictor) PredictAll(ctx context.Context, timestamp string) ([]model.PredictionResult, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	at := p.Resolve(timestamp)
	locs := model.Locations()
	out := make([]model.PredictionResult, 0, len(locs))
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("predict all cancelled: %w", err)
		}
		out = append(out, p.score(ctx, snap, loc, at))
	}
	return out, nil
}

func (p *Predictor) load(ctx context.Context) (model.Snapshot, error) {
	if p.table == nil {
		metrics.RecordPredictionError("no_model")
		return model.Snapshot{}, ErrNoModel
	}
	snap, err := p.table.Load(ctx)
	if err != nil {
		metrics.RecordPredictionError("no_model")
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrNoModel, err)
	}
	return snap, nil
}

func (p *Predictor) score(ctx context.Context, snap model.Snapshot, location model.Location, at time.Time) model.PredictionResult {
	start := time.Now()
	bin := model.BinFor(at)

	modelScore, source := neutralPrior, model.SourceGlobalFallback
	if v, ok := snap.Lookup(location, bin); ok {
		modelScore, source = v, model.SourcePerLibrary
	} else if v, ok := snap.GlobalLookup(bin); ok {
		modelScore = v
	}

	var feedbackScore *float64
	blended, blend := modelScore, model.BlendModelOnly
	if p.feedback != nil {
		if fb, ok := p.feedback.Score(ctx, location, at); ok {
			feedbackScore = &fb
			blended = modelWeight*modelScore + feedbackWeight*fb
			blend = model.BlendWeighted
		}
	}
	blended = model.Clamp(blended, 0, 1)

	final, outcome := weather.Skipped(blended, "weather disabled")
	if p.weather != nil {
		final, outcome = p.weather.Apply(ctx, blended, at)
	}

	res := model.PredictionResult{
		Spot:               location,
		TimestampUsed:      at.Format(time.RFC3339),
		Bin:                bin,
		ModelScore:         model.Round4(modelScore),
		ModelSource:        source,
		FeedbackScore:      feedbackScore,
		Blend:              blend,
		ScoreBeforeWeather: model.Round4(blended),
		Weather:            outcome,
		BusyScore:          model.Round4(final),
	}

	metrics.RecordPrediction(string(source), string(blend), float64(time.Since(start).Milliseconds()))
	p.logger.Debug(ctx, "prediction",
		logger.String("spot", string(location)),
		logger.Int("bin", int(bin)),
		logger.String("model_source", string(source)),
		logger.String("blend", string(blend)),
		logger.Float64("busy_score", res.BusyScore))
	return res
}
