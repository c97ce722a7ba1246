package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/busyspot/internal/adapters/repository"
	"github.com/okian/busyspot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func sampleSnapshot(version string) model.Snapshot {
	return model.Snapshot{
		PerLibrary: map[model.Location]model.BinFrequencies{
			model.Koerner: {0: 0.7, 4: 1.0},
		},
		Global:    model.BinFrequencies{0: 0.5, 4: 1.0},
		Version:   version,
		TrainedAt: time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an empty directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "data", "lookup.json")
		store := repository.NewFileStore(path)

		convey.Convey("When loading before any save", func() {
			_, err := store.Load(ctx)

			convey.Convey("Then the table is not found", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrNotFound)
			})
		})

		convey.Convey("When a table is saved", func() {
			convey.So(store.Save(ctx, sampleSnapshot("v1")), convey.ShouldBeNil)

			convey.Convey("Then it loads back unchanged", func() {
				got, err := store.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.PerLibrary[model.Koerner][0], convey.ShouldEqual, 0.7)
				convey.So(got.Global[4], convey.ShouldEqual, 1.0)
				convey.So(got.Version, convey.ShouldEqual, "v1")
				convey.So(got.TrainedAt.Equal(sampleSnapshot("v1").TrainedAt), convey.ShouldBeTrue)
			})

			convey.Convey("Then a second save replaces it wholesale", func() {
				next := sampleSnapshot("v2")
				next.PerLibrary = map[model.Location]model.BinFrequencies{model.Law: {7: 1}}
				convey.So(store.Save(ctx, next), convey.ShouldBeNil)

				got, err := store.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Version, convey.ShouldEqual, "v2")
				_, hasKoerner := got.PerLibrary[model.Koerner]
				convey.So(hasKoerner, convey.ShouldBeFalse)
			})

			convey.Convey("Then no temp files are left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 1)
				convey.So(entries[0].Name(), convey.ShouldEqual, "lookup.json")
			})
		})

		convey.Convey("When saving an invalid table", func() {
			bad := sampleSnapshot("bad")
			bad.Global[2] = 1.7
			err := store.Save(ctx, bad)

			convey.Convey("Then it is rejected and nothing is published", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrInvalid)
				_, statErr := os.Stat(path)
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file holds garbage", func() {
			convey.So(os.MkdirAll(filepath.Dir(path), 0o755), convey.ShouldBeNil)
			convey.So(os.WriteFile(path, []byte(`{"per_library":`), 0o644), convey.ShouldBeNil)
			_, err := store.Load(ctx)

			convey.Convey("Then the table is corrupt", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrCorrupt)
			})
		})

		convey.Convey("When the file uses an unknown bin key", func() {
			convey.So(os.MkdirAll(filepath.Dir(path), 0o755), convey.ShouldBeNil)
			convey.So(os.WriteFile(path, []byte(`{"per_library":{"Koerner":{"9":0.5}},"global":{}}`), 0o644), convey.ShouldBeNil)
			_, err := store.Load(ctx)
			convey.So(err, convey.ShouldWrap, repository.ErrCorrupt)
		})
	})
}
