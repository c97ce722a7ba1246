package model

import "math"

// ModelSource names which frequency table produced the model score.
type ModelSource string

const (
	SourcePerLibrary     ModelSource = "per_library"
	SourceGlobalFallback ModelSource = "global_fallback"
)

// Blend names how model and feedback were combined.
type Blend string

const (
	BlendModelOnly Blend = "model_only"
	BlendWeighted  Blend = "weighted_0.75_0.25"
)

// PredictionResult is the full diagnostic of one prediction.
type PredictionResult struct {
	Spot               Location       `json:"spot"`
	TimestampUsed      string         `json:"timestamp_used"`
	Bin                TimeBin        `json:"bin"`
	ModelScore         float64        `json:"model_score"`
	ModelSource        ModelSource    `json:"model_source"`
	FeedbackScore      *float64       `json:"feedback_score"`
	Blend              Blend          `json:"blend"`
	ScoreBeforeWeather float64        `json:"score_before_weather"`
	Weather            WeatherOutcome `json:"weather"`
	BusyScore          float64        `json:"busy_score"`
}

// Round4 rounds x to 4 decimal places.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
