// Package service wires the occupancy trainer, the persisted table and the predictor
// into the operations exposed over HTTP and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/busyspot/internal/adapters/repository"
	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/normalize"
	"github.com/okian/busyspot/internal/domain/occupancy"
	"github.com/okian/busyspot/internal/domain/predict"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

// Service implements the training and prediction entry points.
type Service struct {
	// trainMu serializes training runs; predictions never take it.
	trainMu sync.Mutex

	source   occupancy.Source
	store    repository.Store
	feedback feedback.Source
	weather  weather.Provider
	window   time.Duration
	now      func() time.Time

	trainer   *occupancy.Trainer
	predictor *predict.Predictor

	closeOnce sync.Once
	closers   []func()

	logger logger.Logger
}

// New constructs a Service training from source and publishing to store.
func New(source occupancy.Source, store repository.Store, opts ...Option) *Service {
	s := &Service{
		source: source,
		store:  store,
		window: feedback.DefaultWindow,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.trainer = occupancy.NewTrainer(
		occupancy.WithLogger(s.logger.Named("train")),
		occupancy.WithClock(s.now),
	)

	popts := []predict.Option{
		predict.WithLogger(s.logger.Named("predict")),
		predict.WithClock(s.now),
	}
	if s.feedback != nil {
		popts = append(popts, predict.WithFeedback(feedback.NewAggregator(s.feedback,
			feedback.WithLogger(s.logger.Named("feedback")),
			feedback.WithWindow(s.window),
		)))
	}
	if s.weather != nil {
		popts = append(popts, predict.WithWeather(weather.NewAdjuster(s.weather,
			weather.WithLogger(s.logger.Named("weather")),
		)))
	}
	s.predictor = predict.NewPredictor(store, popts...)
	return s
}

// Train reads the desk logs, rebuilds the frequency table and publishes it atomically.
// On any failure the previously published table is left untouched.
func (s *Service) Train(ctx context.Context) (model.TrainingSummary, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()
	elapsed := func() float64 { return float64(time.Since(start).Milliseconds()) }

	if s.source == nil {
		metrics.RecordTrainingRun("source_error", elapsed())
		return model.TrainingSummary{}, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, ErrNotStarted)
	}

	records, err := s.source.Records(ctx)
	if err != nil {
		metrics.RecordTrainingRun("source_error", elapsed())
		s.logger.Error(ctx, "reading desk logs failed", logger.Error(err))
		return model.TrainingSummary{}, err
	}

	snap, stats, err := s.trainer.Train(ctx, records)
	metrics.RecordTrainingRecords("used", stats.RecordsUsed)
	metrics.RecordTrainingRecords("dropped_unmapped", stats.DroppedUnmapped)
	metrics.RecordTrainingRecords("dropped_bad_timestamp", stats.DroppedBadTimestamp)
	if err != nil {
		outcome := "error"
		if errors.Is(err, occupancy.ErrNoMatchingData) {
			outcome = "no_data"
		}
		metrics.RecordTrainingRun(outcome, elapsed())
		s.logger.Warn(ctx, "training produced no table", logger.Error(err))
		return model.TrainingSummary{}, err
	}

	if err := s.store.Save(ctx, snap); err != nil {
		metrics.RecordTrainingRun("store_error", elapsed())
		s.logger.Error(ctx, "publishing frequency table failed", logger.Error(err))
		return model.TrainingSummary{}, fmt.Errorf("publish frequency table: %w", err)
	}

	metrics.UpdateModeledLocations(len(snap.PerLibrary))
	metrics.RecordTrainingRun("success", elapsed())

	sum := occupancy.Summarize(snap, stats)
	s.logger.Info(ctx, "training complete",
		logger.String("version", sum.Version),
		logger.Int("records_read", sum.RecordsRead),
		logger.Int("records_used", sum.RecordsUsed),
		logger.Int("per_library_entries", sum.PerLibraryEntries),
		logger.Int("global_entries", sum.GlobalEntries),
		logger.Duration("took", time.Since(start)))
	return sum, nil
}

// Predict scores one spot. Names that are not canonical are tried against the desk-label
// table before being scored as-is, which falls back to the global table.
func (s *Service) Predict(ctx context.Context, spot, timestamp string) (model.PredictionResult, error) {
	loc, err := resolveSpot(spot)
	if err != nil {
		metrics.RecordPredictionError("missing_spot")
		return model.PredictionResult{}, err
	}
	return s.predictor.Predict(ctx, loc, timestamp)
}

// PredictAll scores every canonical spot at one instant.
func (s *Service) PredictAll(ctx context.Context, timestamp string) ([]model.PredictionResult, error) {
	return s.predictor.PredictAll(ctx, timestamp)
}

// Spots returns the study-spot catalog.
func (s *Service) Spots() []model.Spot {
	return model.Catalog()
}

// SubmitFeedback stores a new rating. A zero time means now.
func (s *Service) SubmitFeedback(ctx context.Context, sub feedback.Submission) error {
	submitter, ok := s.feedback.(feedback.Submitter)
	if !ok {
		return feedback.ErrReadOnly
	}
	loc, err := resolveSpot(string(sub.Location))
	if err != nil {
		return fmt.Errorf("%w: %w", feedback.ErrUnknownSpot, err)
	}
	sub.Location = loc
	if sub.At.IsZero() {
		sub.At = s.now()
	}
	sub.At = sub.At.UTC()
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := submitter.Submit(ctx, sub); err != nil {
		s.logger.Error(ctx, "storing feedback failed", logger.String("spot", string(loc)), logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "feedback stored", logger.String("spot", string(loc)), logger.Float64("rating", sub.Rating))
	return nil
}

// Close releases sources opened for this service. It is safe to call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		for i := len(s.closers) - 1; i >= 0; i-- {
			s.closers[i]()
		}
	})
}

func resolveSpot(spot string) (model.Location, error) {
	spot = strings.TrimSpace(spot)
	if spot == "" {
		return "", ErrMissingSpot
	}
	loc := model.Location(spot)
	if loc.Valid() {
		return loc, nil
	}
	if mapped, ok := normalize.Normalize(spot); ok {
		return mapped, nil
	}
	return loc, nil
}
