package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func familyNames(reg *prometheus.Registry) map[string]bool {
	out := map[string]bool{}
	mfs, err := reg.Gather()
	if err != nil {
		return out
	}
	for _, mf := range mfs {
		out[mf.GetName()] = true
	}
	return out
}

func counterValue(reg *prometheus.Registry, name string) float64 {
	mfs, err := reg.Gather()
	if err != nil {
		return -1
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("pre"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegistry(registry),
			)
			manager.trainingRuns.WithLabelValues("success").Inc()

			Convey("Then names carry namespace, subsystem and prefix", func() {
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				So(familyNames(registry)["test_unit_pre_training_runs_total"], ShouldBeTrue)
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		SetEnabled(true)
		reg := GetRegistry()

		Convey("When recording pipeline events", func() {
			before := counterValue(reg, "busyspot_pipeline_training_runs_total")
			So(func() {
				RecordTrainingRun("success", 12)
				RecordTrainingRecords("used", 3)
				RecordTrainingRecords("unmapped", 0)
				UpdateModeledLocations(2)
				RecordSnapshotWrite("success")
				RecordPrediction("per_library", "model_only", 4)
				RecordPredictionError("no_model")
				RecordFeedbackOutcome("present")
				RecordWeatherOutcome("applied")
				RecordWeatherLatency(30)
				RecordWeatherCache("miss")
				RecordAutoTrainTrigger()
				RecordHTTPRequest("/predict", "GET", "200")
				RecordHTTPRequestDuration("/predict", "GET", "200", 5)
				RecordErrorByEndpoint("/predict", "GET", "client_error")
				RecordErrorByType("client_error", "medium")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)

			Convey("Then the counters move", func() {
				So(counterValue(reg, "busyspot_pipeline_training_runs_total"), ShouldEqual, before+1)
				So(familyNames(reg)["busyspot_pipeline_predictions_total"], ShouldBeTrue)
			})
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			before := counterValue(reg, "busyspot_pipeline_training_runs_total")
			RecordTrainingRun("success", 1)

			Convey("Then nothing is recorded", func() {
				So(counterValue(reg, "busyspot_pipeline_training_runs_total"), ShouldEqual, before)
			})
		})
	})
}
