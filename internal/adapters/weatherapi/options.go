package weatherapi

import (
	"net/http"
	"time"

	"github.com/okian/busyspot/pkg/logger"
)

// Campus coordinates and Open-Meteo defaults.
const (
	DefaultBaseURL      = "https://api.open-meteo.com/v1/forecast"
	DefaultLatitude     = 49.2606
	DefaultLongitude    = -123.2460
	DefaultTimeout      = 5 * time.Second
	DefaultPastDays     = 16
	DefaultForecastDays = 16
)

// Option applies a configuration option to the OpenMeteo client.
type Option func(*OpenMeteo)

// WithBaseURL points the client at a different forecast endpoint.
func WithBaseURL(u string) Option {
	return func(o *OpenMeteo) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithCoordinates sets the location to forecast.
func WithCoordinates(lat, lon float64) Option {
	return func(o *OpenMeteo) {
		o.lat, o.lon = lat, lon
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *OpenMeteo) {
		if d > 0 {
			o.client.Timeout = d
		}
	}
}

// WithDays sets how many past and forecast days one response covers.
func WithDays(past, forecast int) Option {
	return func(o *OpenMeteo) {
		if past >= 0 {
			o.pastDays = past
		}
		if forecast > 0 {
			o.forecastDays = forecast
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is kept as given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *OpenMeteo) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) Option {
	return func(o *OpenMeteo) {
		if l != nil {
			o.logger = l
		}
	}
}
