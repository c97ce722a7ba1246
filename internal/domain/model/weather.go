package model

// WeatherObservation is one hour of weather. Any field may be missing.
type WeatherObservation struct {
	Temp   *float64 `json:"temp"`   // °C
	Precip *float64 `json:"precip"` // mm
	Cloud  *float64 `json:"cloud"`  // percent, 0-100
	Wind   *float64 `json:"wind"`   // km/h
}

// Available reports whether at least one field is present.
func (o WeatherObservation) Available() bool {
	return o.Temp != nil || o.Precip != nil || o.Cloud != nil || o.Wind != nil
}

// WeatherStatus tags a WeatherOutcome.
type WeatherStatus string

const (
	WeatherApplied WeatherStatus = "applied"
	WeatherSkipped WeatherStatus = "skipped"
)

// WeatherOutcome is the diagnostic attached to a prediction.
// Raw and TimestampUTC are set only when applied; Error only when skipped.
type WeatherOutcome struct {
	Status       WeatherStatus       `json:"status"`
	Raw          *WeatherObservation `json:"raw,omitempty"`
	Factor       float64             `json:"weather_factor"`
	Before       float64             `json:"before_weather"`
	After        float64             `json:"after_weather"`
	TimestampUTC string              `json:"timestamp_utc,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
