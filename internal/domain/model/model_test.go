package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTimeBin(t *testing.T) {
	convey.Convey("Given hours of the day", t, func() {
		convey.Convey("Then each maps to its 3-hour window", func() {
			convey.So(model.BinOf(0), convey.ShouldEqual, model.TimeBin(0))
			convey.So(model.BinOf(2), convey.ShouldEqual, model.TimeBin(0))
			convey.So(model.BinOf(3), convey.ShouldEqual, model.TimeBin(1))
			convey.So(model.BinOf(13), convey.ShouldEqual, model.TimeBin(4))
			convey.So(model.BinOf(23), convey.ShouldEqual, model.TimeBin(7))
		})

		convey.Convey("Then BinFor uses the UTC hour", func() {
			pst := time.FixedZone("PST", -8*3600)
			at := time.Date(2024, 3, 1, 17, 30, 0, 0, pst) // 01:30 UTC next day
			convey.So(model.BinFor(at), convey.ShouldEqual, model.TimeBin(0))
		})
	})

	convey.Convey("Given bins as text keys", t, func() {
		var b model.TimeBin
		convey.So(b.UnmarshalText([]byte("5")), convey.ShouldBeNil)
		convey.So(b, convey.ShouldEqual, model.TimeBin(5))
		convey.So(b.UnmarshalText([]byte("8")), convey.ShouldWrap, model.ErrInvalidBin)
		convey.So(b.UnmarshalText([]byte("x")), convey.ShouldWrap, model.ErrInvalidBin)

		_, err := model.TimeBin(9).MarshalText()
		convey.So(err, convey.ShouldWrap, model.ErrInvalidBin)
	})

	convey.Convey("Given a bin as a JSON value", t, func() {
		data, err := json.Marshal(model.PredictionResult{Bin: 4})
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldContainSubstring, `"bin":4,`)

		var out struct{ Bin model.TimeBin }
		convey.So(json.Unmarshal([]byte(`{"Bin":6}`), &out), convey.ShouldBeNil)
		convey.So(out.Bin, convey.ShouldEqual, model.TimeBin(6))
		convey.So(json.Unmarshal([]byte(`{"Bin":"2"}`), &out), convey.ShouldBeNil)
		convey.So(out.Bin, convey.ShouldEqual, model.TimeBin(2))
	})
}

func TestLocations(t *testing.T) {
	convey.Convey("Given the canonical locations", t, func() {
		locs := model.Locations()

		convey.Convey("Then there are nine in catalog order", func() {
			convey.So(len(locs), convey.ShouldEqual, 9)
			convey.So(locs[0], convey.ShouldEqual, model.IKBLC)
			convey.So(locs[8], convey.ShouldEqual, model.Chapman)
		})

		convey.Convey("Then membership is exact", func() {
			convey.So(model.DavidLam.Valid(), convey.ShouldBeTrue)
			convey.So(model.Location("david lam").Valid(), convey.ShouldBeFalse)
			convey.So(model.Location("").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("Then the catalog covers every location once", func() {
			spots := model.Catalog()
			convey.So(len(spots), convey.ShouldEqual, len(locs))
			for i, s := range spots {
				convey.So(s.Name, convey.ShouldEqual, locs[i])
				convey.So(s.Features, convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("Then callers cannot mutate the catalog", func() {
			spots := model.Catalog()
			spots[0].Features[0] = "loud"
			convey.So(model.Catalog()[0].Features[0], convey.ShouldEqual, "quiet")
		})
	})
}

func TestSnapshotJSON(t *testing.T) {
	convey.Convey("Given a snapshot", t, func() {
		snap := model.Snapshot{
			PerLibrary: map[model.Location]model.BinFrequencies{
				model.Koerner: {0: 0.7, 4: 1.0},
			},
			Global:  model.BinFrequencies{0: 0.5},
			Version: "v1",
		}

		convey.Convey("When encoded", func() {
			data, err := json.Marshal(snap)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then bins are string keys", func() {
				convey.So(string(data), convey.ShouldContainSubstring, `"Koerner":{"0":0.7,"4":1}`)
				convey.So(string(data), convey.ShouldContainSubstring, `"global":{"0":0.5}`)
			})
		})

		convey.Convey("When decoding an out-of-range bin", func() {
			var out model.Snapshot
			err := json.Unmarshal([]byte(`{"per_library":{},"global":{"12":0.3}}`), &out)

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validating", func() {
			convey.So(snap.Validate(), convey.ShouldBeNil)

			bad := model.Snapshot{PerLibrary: map[model.Location]model.BinFrequencies{"Nowhere": {0: 1}}}
			convey.So(bad.Validate(), convey.ShouldWrap, model.ErrInvalidLocation)

			bad = model.Snapshot{Global: model.BinFrequencies{1: 1.5}}
			convey.So(bad.Validate(), convey.ShouldWrap, model.ErrInvalidFrequency)
		})

		convey.Convey("When looking up", func() {
			v, ok := snap.Lookup(model.Koerner, 0)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 0.7)

			_, ok = snap.Lookup(model.Koerner, 3)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = snap.Lookup(model.Law, 0)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = snap.GlobalLookup(7)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 9, 12, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-09-12T14:30:00Z", want},
		{"2024-09-12T14:30:00.250Z", want.Add(250 * time.Millisecond)},
		{"2024-09-12T07:30:00-07:00", want},
		{"2024-09-12T14:30:00", want},
		{"2024-09-12 14:30:00", want},
		{"2024-09-12 14:30", want},
		{"2024-09-12 16:30:00+02:00", want},
		{"9/12/2024 14:30", want},
		{"  2024-09-12T14:30:00Z ", want},
		{"2024-09-12", time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := model.ParseInstant(tc.in)
			if err != nil {
				t.Fatalf("ParseInstant(%q): %v", tc.in, err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("ParseInstant(%q) = %v, want %v UTC", tc.in, got, tc.want)
			}
		})
	}

	convey.Convey("Given garbage timestamps", t, func() {
		for _, in := range []string{"", "   ", "not-a-date", "2024-13-45T99:00:00"} {
			_, err := model.ParseInstant(in)
			convey.So(err, convey.ShouldWrap, model.ErrUnparseableTime)
		}
	})
}

func TestScoresHelpers(t *testing.T) {
	convey.Convey("Given score helpers", t, func() {
		convey.So(model.Round4(0.72504), convey.ShouldEqual, 0.725)
		convey.So(model.Round4(1.0/3), convey.ShouldEqual, 0.3333)
		convey.So(model.Clamp(1.2, 0, 1), convey.ShouldEqual, 1.0)
		convey.So(model.Clamp(-0.2, 0.01, 1), convey.ShouldEqual, 0.01)

		obs := model.WeatherObservation{}
		convey.So(obs.Available(), convey.ShouldBeFalse)
		obs.Wind = model.Float(12)
		convey.So(obs.Available(), convey.ShouldBeTrue)
	})
}
