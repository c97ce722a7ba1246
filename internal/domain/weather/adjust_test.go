package weather_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/smartystreets/goconvey/convey"
)

type stubProvider struct {
	obs model.WeatherObservation
	err error
	at  time.Time
}

func (p *stubProvider) Observe(_ context.Context, at time.Time) (model.WeatherObservation, error) {
	p.at = at
	return p.obs, p.err
}

func obs(temp, precip, cloud, wind *float64) model.WeatherObservation {
	return model.WeatherObservation{Temp: temp, Precip: precip, Cloud: cloud, Wind: wind}
}

func TestFactor(t *testing.T) {
	f := model.Float
	cases := []struct {
		name string
		obs  model.WeatherObservation
		want float64
	}{
		{"nothing known", obs(nil, nil, nil, nil), 0},
		{"drizzle", obs(nil, f(0.5), nil, nil), 0.15},
		{"trace rain", obs(nil, f(0.1), nil, nil), 0},
		{"hot", obs(f(23), nil, nil, nil), -0.10},
		{"cold", obs(f(5), nil, nil, nil), 0.10},
		{"mild", obs(f(12), nil, nil, nil), 0},
		{"overcast", obs(nil, nil, f(100), nil), 0.05},
		{"gusty", obs(nil, nil, nil, f(20.5)), 0.05},
		{"calm", obs(nil, nil, nil, f(20)), 0},
		{"storm clamps", obs(f(10), f(3.0), f(50), f(5)), 0.35},
		{"hot and clear", obs(f(30), f(0), f(0), f(0)), -0.10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := model.Round4(weather.Factor(tc.obs)); got != tc.want {
				t.Fatalf("Factor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdjust(t *testing.T) {
	f := model.Float

	convey.Convey("Given heavy rain at 10°C with half cloud and light wind", t, func() {
		score, out := weather.Adjust(0.5, obs(f(10), f(3.0), f(50), f(5)))

		convey.Convey("Then the factor is clamped to 0.35", func() {
			convey.So(out.Status, convey.ShouldEqual, model.WeatherApplied)
			convey.So(out.Factor, convey.ShouldEqual, 0.35)
			convey.So(model.Round4(score), convey.ShouldEqual, 0.85)
			convey.So(out.Before, convey.ShouldEqual, 0.5)
			convey.So(out.After, convey.ShouldEqual, 0.85)
			convey.So(*out.Raw.Precip, convey.ShouldEqual, 3.0)
		})
	})

	convey.Convey("Given scores near the bounds", t, func() {
		low, _ := weather.Adjust(0.0, obs(f(35), nil, nil, nil))
		high, _ := weather.Adjust(0.9, obs(f(0), f(5), f(100), f(40)))

		convey.Convey("Then the result stays within [0.01, 1]", func() {
			convey.So(low, convey.ShouldEqual, 0.01)
			convey.So(high, convey.ShouldEqual, 1.0)
		})
	})
}

func TestAdjusterApply(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 20, 1, 15, 0, 0, time.FixedZone("X", 3600))

	convey.Convey("Given a provider that fails", t, func() {
		p := &stubProvider{err: errors.New("dial tcp: timeout")}
		score, out := weather.NewAdjuster(p).Apply(ctx, 0.725, at)

		convey.Convey("Then the score passes through with the reason", func() {
			convey.So(score, convey.ShouldEqual, 0.725)
			convey.So(out.Status, convey.ShouldEqual, model.WeatherSkipped)
			convey.So(out.Error, convey.ShouldContainSubstring, "timeout")
			convey.So(out.Factor, convey.ShouldEqual, 0)
			convey.So(out.Before, convey.ShouldEqual, out.After)
		})
	})

	convey.Convey("Given a provider with no data for the hour", t, func() {
		score, out := weather.NewAdjuster(&stubProvider{}).Apply(ctx, 0.004, at)
		convey.So(score, convey.ShouldEqual, 0.004)
		convey.So(out.Status, convey.ShouldEqual, model.WeatherSkipped)
		convey.So(out.Error, convey.ShouldEqual, weather.ErrUnavailable.Error())
	})

	convey.Convey("Given no provider", t, func() {
		score, out := weather.NewAdjuster(nil).Apply(ctx, 0.3, at)
		convey.So(score, convey.ShouldEqual, 0.3)
		convey.So(out.Status, convey.ShouldEqual, model.WeatherSkipped)
	})

	convey.Convey("Given a provider with cold weather", t, func() {
		p := &stubProvider{obs: obs(model.Float(2), nil, nil, nil)}
		score, out := weather.NewAdjuster(p).Apply(ctx, 0.5, at)

		convey.Convey("Then it is asked for the UTC instant", func() {
			convey.So(p.at.Location(), convey.ShouldEqual, time.UTC)
			convey.So(out.TimestampUTC, convey.ShouldEqual, "2025-03-20T00:15:00Z")
			convey.So(model.Round4(score), convey.ShouldEqual, 0.6)
		})
	})
}
