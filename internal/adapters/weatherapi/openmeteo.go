// Package weatherapi looks up hourly weather from Open-Meteo, optionally through a Redis cache.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
)

// HourKey formats the hour containing at the way Open-Meteo labels hourly rows.
func HourKey(at time.Time) string {
	return at.UTC().Format("2006-01-02T15:00")
}

// OpenMeteo is a weather.Provider backed by the Open-Meteo hourly forecast API.
type OpenMeteo struct {
	baseURL      string
	lat, lon     float64
	pastDays     int
	forecastDays int
	client       *http.Client
	logger       logger.Logger
}

// NewOpenMeteo creates a client with campus defaults.
func NewOpenMeteo(opts ...Option) *OpenMeteo {
	o := &OpenMeteo{
		baseURL:      DefaultBaseURL,
		lat:          DefaultLatitude,
		lon:          DefaultLongitude,
		pastDays:     DefaultPastDays,
		forecastDays: DefaultForecastDays,
		client:       &http.Client{Timeout: DefaultTimeout},
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type forecastResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
		Precipitation []*float64 `json:"precipitation"`
		CloudCover    []*float64 `json:"cloud_cover"`
		WindSpeed10m  []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (o *OpenMeteo) requestURL() (string, error) {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %w", weather.ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(o.lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(o.lon, 'f', -1, 64))
	q.Set("hourly", "temperature_2m,precipitation,cloud_cover,wind_speed_10m")
	q.Set("past_days", strconv.Itoa(o.pastDays))
	q.Set("forecast_days", strconv.Itoa(o.forecastDays))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Observe fetches the forecast window and picks the row for at's UTC hour.
func (o *OpenMeteo) Observe(ctx context.Context, at time.Time) (model.WeatherObservation, error) {
	endpoint, err := o.requestURL()
	if err != nil {
		return model.WeatherObservation{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.WeatherObservation{}, fmt.Errorf("%w: %w", weather.ErrUnavailable, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return model.WeatherObservation{}, fmt.Errorf("%w: %w", weather.ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			o.logger.Warn(ctx, "failed to close weather response", logger.Error(err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return model.WeatherObservation{}, fmt.Errorf("%w: status %d", weather.ErrUnavailable, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.WeatherObservation{}, fmt.Errorf("%w: decode: %w", weather.ErrUnavailable, err)
	}

	key := HourKey(at)
	h := body.Hourly
	for i, t := range h.Time {
		if t != key {
			continue
		}
		return model.WeatherObservation{
			Temp:   pick(h.Temperature2m, i),
			Precip: pick(h.Precipitation, i),
			Cloud:  pick(h.CloudCover, i),
			Wind:   pick(h.WindSpeed10m, i),
		}, nil
	}
	return model.WeatherObservation{}, fmt.Errorf("%w: %s", weather.ErrNoHour, key)
}

func pick(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
