package service

import (
	"context"
	"fmt"

	"github.com/okian/busyspot/internal/adapters/feedbacksource"
	"github.com/okian/busyspot/internal/adapters/logsource"
	"github.com/okian/busyspot/internal/adapters/repository"
	"github.com/okian/busyspot/internal/adapters/weatherapi"
	"github.com/okian/busyspot/internal/config"
	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/occupancy"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
)

// FromConfig builds a Service and its adapters from cfg. Optional collaborators that
// cannot be reached (Postgres feedback, Redis cache) degrade with a warning; only an
// unusable desk-log source is an error. Call Close when done.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts := []Option{
		WithLogger(log),
		WithFeedbackWindow(cfg.FeedbackWindow()),
	}

	source, closeSource, err := deskLogSource(cfg, log)
	if err != nil {
		return nil, err
	}
	if closeSource != nil {
		opts = append(opts, WithCloser(closeSource))
	}

	fb, closeFeedback := feedbackSource(ctx, cfg, log)
	opts = append(opts, WithFeedback(fb))
	if closeFeedback != nil {
		opts = append(opts, WithCloser(closeFeedback))
	}

	if cfg.WeatherEnabled {
		provider, closeWeather := weatherProvider(ctx, cfg, log)
		opts = append(opts, WithWeather(provider))
		if closeWeather != nil {
			opts = append(opts, WithCloser(closeWeather))
		}
	}

	store := repository.NewFileStore(cfg.LookupPath, repository.WithLogger(log.Named("store")))
	log.Info(ctx, "service wired",
		logger.String("desk_logs_driver", cfg.DeskLogsDriver),
		logger.String("feedback_driver", cfg.FeedbackDriver),
		logger.Bool("weather", cfg.WeatherEnabled),
		logger.String("lookup_path", cfg.LookupPath))
	return New(source, store, opts...), nil
}

func deskLogSource(cfg *config.Config, log logger.Logger) (occupancy.Source, func(), error) {
	lopts := []logsource.Option{
		logsource.WithColumns(cfg.DeskColumn, cfg.TimestampColumn),
		logsource.WithTable(cfg.DeskLogsTable),
		logsource.WithLogger(log.Named("logsource")),
	}
	switch cfg.DeskLogsDriver {
	case config.DriverSQLite:
		db, err := logsource.OpenSQLite(cfg.DeskLogsPath, lopts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open desk-log database: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return logsource.NewCSV(cfg.DeskLogsPath, lopts...), nil, nil
	}
}

func feedbackSource(ctx context.Context, cfg *config.Config, log logger.Logger) (feedback.Source, func()) {
	switch cfg.FeedbackDriver {
	case config.DriverPostgres:
		pg, err := feedbacksource.ConnectPostgres(ctx, cfg.FeedbackDSN, cfg.FeedbackTable)
		if err != nil {
			log.Warn(ctx, "feedback database unreachable, predictions use the model only", logger.Error(err))
			return feedbacksource.None{}, nil
		}
		return pg, pg.Close
	case config.DriverNone:
		return feedbacksource.None{}, nil
	default:
		return feedbacksource.NewCSV(cfg.FeedbackPath), nil
	}
}

func weatherProvider(ctx context.Context, cfg *config.Config, log logger.Logger) (weather.Provider, func()) {
	om := weatherapi.NewOpenMeteo(
		weatherapi.WithBaseURL(cfg.WeatherBaseURL),
		weatherapi.WithCoordinates(cfg.WeatherLatitude, cfg.WeatherLongitude),
		weatherapi.WithTimeout(cfg.WeatherTimeout()),
		weatherapi.WithDays(cfg.WeatherPastDays, cfg.WeatherForecastDays),
		weatherapi.WithLogger(log.Named("openmeteo")),
	)
	if cfg.RedisURL == "" {
		return om, nil
	}
	client, err := weatherapi.NewRedisClient(cfg.RedisURL, cfg.WeatherTimeout())
	if err != nil {
		log.Warn(ctx, "weather cache disabled", logger.Error(err))
		return om, nil
	}
	cached := weatherapi.NewCached(client, om,
		weatherapi.WithTTL(cfg.WeatherCacheTTL()),
		weatherapi.WithCacheLogger(log.Named("weathercache")),
	)
	return cached, func() { _ = client.Close() }
}
