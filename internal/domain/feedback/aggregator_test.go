package feedback_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	batch feedback.Batch
	err   error
	calls int
}

func (s *stubSource) Fetch(_ context.Context, _ model.Location) (feedback.Batch, error) {
	s.calls++
	return s.batch, s.err
}

func TestAggregatorScore(t *testing.T) {
	asOf := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	convey.Convey("Given two recent ratings for Koerner", t, func() {
		src := &stubSource{batch: feedback.Batch{
			HasTimestamps: true,
			Entries: []feedback.Entry{
				{SpotID: "Koerner", Rating: "8", CreatedAt: "2025-03-19T10:00:00Z"},
				{SpotID: "koerner ", Rating: "6", CreatedAt: "2025-03-15 09:30:00"},
				{SpotID: "IKBLC", Rating: "2", CreatedAt: "2025-03-19T10:00:00Z"},
			},
		}}
		agg := feedback.NewAggregator(src)

		convey.Convey("When scoring Koerner", func() {
			score, ok := agg.Score(ctx, model.Koerner, asOf)

			convey.Convey("Then the mean rating is scaled to 0.7", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(score, convey.ShouldEqual, 0.7)
			})
		})

		convey.Convey("When scoring a location with no rows", func() {
			_, ok := agg.Score(ctx, model.Law, asOf)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When the ratings are older than the window", func() {
			_, ok := agg.Score(ctx, model.Koerner, asOf.Add(30*24*time.Hour))
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When the ratings postdate the reference instant", func() {
			_, ok := agg.Score(ctx, model.Koerner, asOf.Add(-10*24*time.Hour))
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then the source is left untouched", func() {
			before := len(src.batch.Entries)
			agg.Score(ctx, model.Koerner, asOf)
			convey.So(len(src.batch.Entries), convey.ShouldEqual, before)
			convey.So(src.batch.Entries[1].SpotID, convey.ShouldEqual, "koerner ")
		})
	})

	convey.Convey("Given a narrower window", t, func() {
		src := &stubSource{batch: feedback.Batch{
			HasTimestamps: true,
			Entries: []feedback.Entry{
				{SpotID: "Law", Rating: "10", CreatedAt: "2025-03-20T11:00:00Z"},
				{SpotID: "Law", Rating: "0", CreatedAt: "2025-03-18T11:00:00Z"},
			},
		}}
		score, ok := feedback.NewAggregator(src, feedback.WithWindow(24*time.Hour)).Score(ctx, model.Law, asOf)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(score, convey.ShouldEqual, 1.0)
	})

	convey.Convey("Given a batch without timestamps", t, func() {
		src := &stubSource{batch: feedback.Batch{
			Entries: []feedback.Entry{
				{SpotID: "Asian", Rating: "12"},
				{SpotID: "Asian", Rating: "14"},
				{SpotID: "Asian", Rating: "busy"},
				{SpotID: "Asian", Rating: "NaN"},
			},
		}}

		convey.Convey("Then no window applies and the result is clamped", func() {
			score, ok := feedback.NewAggregator(src).Score(ctx, model.Asian, asOf)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(score, convey.ShouldEqual, 1.0)
		})
	})

	convey.Convey("Given degraded sources", t, func() {
		cases := []struct {
			name string
			src  *stubSource
		}{
			{"unavailable", &stubSource{err: feedback.ErrUnavailable}},
			{"malformed", &stubSource{err: errors.Join(feedback.ErrMalformed, errors.New("missing busy_rating"))}},
			{"empty", &stubSource{batch: feedback.Batch{HasTimestamps: true}}},
			{"unparseable times", &stubSource{batch: feedback.Batch{HasTimestamps: true, Entries: []feedback.Entry{{SpotID: "Law", Rating: "5", CreatedAt: "soon"}}}}},
			{"no numeric rating", &stubSource{batch: feedback.Batch{Entries: []feedback.Entry{{SpotID: "Law", Rating: "very"}}}}},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" yields no signal", func() {
				_, ok := feedback.NewAggregator(tc.src).Score(ctx, model.Law, asOf)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(tc.src.calls, convey.ShouldEqual, 1)
			})
		}

		convey.Convey("Then a missing source yields no signal", func() {
			_, ok := feedback.NewAggregator(nil).Score(ctx, model.Law, asOf)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestSubmissionValidate(t *testing.T) {
	convey.Convey("Given ratings on the 1-10 scale", t, func() {
		for _, r := range []float64{1, 5.5, 10} {
			convey.So(feedback.Submission{Location: model.Koerner, Rating: r}.Validate(), convey.ShouldBeNil)
		}
	})

	convey.Convey("Given ratings off the scale", t, func() {
		for _, r := range []float64{0, 0.5, -3, 10.5, 11} {
			err := feedback.Submission{Location: model.Koerner, Rating: r}.Validate()
			convey.So(err, convey.ShouldWrap, feedback.ErrInvalidRating)
		}
	})

	convey.Convey("Given an unknown spot", t, func() {
		err := feedback.Submission{Location: "Gym", Rating: 5}.Validate()
		convey.So(err, convey.ShouldWrap, feedback.ErrUnknownSpot)
	})
}
