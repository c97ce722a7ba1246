package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/busyspot/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			t.Setenv(config.EnvConfigFile, "")
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.WeatherEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("BUSYSPOT_ADDR", ":8080")
			t.Setenv("BUSYSPOT_FEEDBACK_WINDOW_DAYS", "7")
			t.Setenv("BUSYSPOT_WEATHER_ENABLED", "false")
			t.Setenv("BUSYSPOT_WEATHER_LATITUDE", "49.5")
			t.Setenv("BUSYSPOT_DESK_LOGS_DRIVER", "sqlite")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.FeedbackWindowDays, convey.ShouldEqual, 7)
				convey.So(cfg.WeatherEnabled, convey.ShouldBeFalse)
				convey.So(cfg.WeatherLatitude, convey.ShouldEqual, 49.5)
				convey.So(cfg.DeskLogsDriver, convey.ShouldEqual, config.DriverSQLite)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "busyspot.yaml")
			yamlContent := `
addr: ":9090"
lookup_path: /var/lib/busyspot/lookup.json
feedback_driver: none
auto_train: true
auto_train_debounce_ms: 500
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o644), convey.ShouldBeNil)
			t.Setenv(config.EnvConfigFile, path)
			t.Setenv("BUSYSPOT_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LookupPath, convey.ShouldEqual, "/var/lib/busyspot/lookup.json")
				convey.So(cfg.FeedbackDriver, convey.ShouldEqual, config.DriverNone)
				convey.So(cfg.AutoTrain, convey.ShouldBeTrue)
				convey.So(cfg.AutoTrainDebounceMS, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When env produces an invalid config", func() {
			t.Setenv("BUSYSPOT_FEEDBACK_DRIVER", "postgres")
			_, err := config.LoadFile(ctx, "")

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
