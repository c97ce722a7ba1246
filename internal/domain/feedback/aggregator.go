// Package feedback turns crowd-sourced busyness ratings into a normalized signal.
package feedback

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

// Ratings are submitted on a 1-10 scale; ratingScale maps them onto [0,1].
const (
	ratingMin   = 1.0
	ratingScale = 10.0
)

// Entry is one raw feedback row as stored by the source.
type Entry struct {
	SpotID    string
	Rating    string
	CreatedAt string
}

// Batch is what a source returned. HasTimestamps is false when the source
// carries no created_at column at all, in which case no window is applied.
type Batch struct {
	Entries       []Entry
	HasTimestamps bool
}

// Source returns feedback rows. Implementations may pre-filter by location;
// the aggregator filters again regardless.
type Source interface {
	Fetch(ctx context.Context, location model.Location) (Batch, error)
}

// Outcome labels reported to metrics.
const (
	outcomePresent        = "present"
	outcomeUnavailable    = "source_unavailable"
	outcomeEmpty          = "empty"
	outcomeBadTimestamps  = "bad_timestamps"
	outcomeOutOfWindow    = "out_of_window"
	outcomeNoLocationRows = "no_location_rows"
	outcomeNoRatings      = "no_ratings"
)

// Aggregator computes the feedback score for a location.
type Aggregator struct {
	source Source
	window time.Duration
	logger logger.Logger
}

// NewAggregator creates an aggregator over source.
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		window: DefaultWindow,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score returns mean(rating)/10 clamped to [0,1] over the location's ratings in
// [asOf-window, asOf]. It reports false whenever no usable rating exists.
func (a *Aggregator) Score(ctx context.Context, location model.Location, asOf time.Time) (float64, bool) {
	if a.source == nil {
		return a.absent(ctx, location, outcomeUnavailable)
	}
	batch, err := a.source.Fetch(ctx, location)
	if err != nil {
		a.logger.Debug(ctx, "feedback fetch failed", logger.String("spot", string(location)), logger.Error(err))
		return a.absent(ctx, location, outcomeUnavailable)
	}
	rows := batch.Entries
	if len(rows) == 0 {
		return a.absent(ctx, location, outcomeEmpty)
	}

	if batch.HasTimestamps {
		rows = a.inWindow(rows, asOf)
		if rows == nil {
			return a.absent(ctx, location, outcomeBadTimestamps)
		}
		if len(rows) == 0 {
			return a.absent(ctx, location, outcomeOutOfWindow)
		}
	}

	want := strings.ToLower(strings.TrimSpace(string(location)))
	ratings := make([]float64, 0, len(rows))
	matched := 0
	for _, e := range rows {
		if strings.ToLower(strings.TrimSpace(e.SpotID)) != want {
			continue
		}
		matched++
		v, err := strconv.ParseFloat(strings.TrimSpace(e.Rating), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ratings = append(ratings, v)
	}
	if matched == 0 {
		return a.absent(ctx, location, outcomeNoLocationRows)
	}
	if len(ratings) == 0 {
		return a.absent(ctx, location, outcomeNoRatings)
	}

	score := model.Round4(model.Clamp(stat.Mean(ratings, nil)/ratingScale, 0, 1))
	metrics.RecordFeedbackOutcome(outcomePresent)
	a.logger.Debug(ctx, "feedback score",
		logger.String("spot", string(location)),
		logger.Int("ratings", len(ratings)),
		logger.Float64("score", score))
	return score, true
}

// inWindow keeps rows whose created_at parses and lies in [asOf-window, asOf].
// It returns nil when no row has a parseable timestamp.
func (a *Aggregator) inWindow(rows []Entry, asOf time.Time) []Entry {
	from := asOf.Add(-a.window)
	parsed := 0
	kept := make([]Entry, 0, len(rows))
	for _, e := range rows {
		at, err := model.ParseInstant(e.CreatedAt)
		if err != nil {
			continue
		}
		parsed++
		if at.Before(from) || at.After(asOf) {
			continue
		}
		kept = append(kept, e)
	}
	if parsed == 0 {
		return nil
	}
	return kept
}

func (a *Aggregator) absent(ctx context.Context, location model.Location, reason string) (float64, bool) {
	metrics.RecordFeedbackOutcome(reason)
	a.logger.Debug(ctx, "no feedback signal",
		logger.String("spot", string(location)),
		logger.String("reason", reason))
	return 0, false
}
