package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/busyspot/internal/cli"
	"github.com/okian/busyspot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const deskLogs = `desk,date_time
Chapman LC Desk,2024-09-12T13:05:00Z
Chapman,2024-09-12T14:40:00Z
Law Circ,2024-09-12 22:00:00
`

// workspace writes a config pointing every path into a temp dir, and a CSV export of
// desk logs at dir/desk_logs.csv.
func workspace(t *testing.T, driver string) (dir, cfgPath string) {
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "busyspot.yaml")
	deskPath := filepath.Join(dir, "desk_logs.csv")
	if driver == "sqlite" {
		deskPath = filepath.Join(dir, "desk_logs.db")
	}
	cfg := fmt.Sprintf(`lookup_path: %s
desk_logs_driver: %s
desk_logs_path: %s
feedback_driver: none
weather_enabled: false
log_level: error
`, filepath.Join(dir, "lookup.json"), driver, deskPath)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "desk_logs.csv"), []byte(deskLogs), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, cfgPath
}

func run(args ...string) (string, error) {
	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI(t *testing.T) {
	Convey("Given a configured workspace", t, func() {
		t.Setenv("BUSYSPOT_CONFIG", "")
		_, cfgPath := workspace(t, "csv")

		Convey("When predicting before training", func() {
			_, err := run("predict", "--spot", "Chapman", "-c", cfgPath)

			Convey("Then it fails for lack of a model", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not trained")
			})
		})

		Convey("When training", func() {
			out, err := run("train", "-c", cfgPath)

			Convey("Then a text summary is printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "training complete")
				So(out, ShouldContainSubstring, "Law, Chapman")
			})

			Convey("And predicting one spot as JSON returns the record", func() {
				out, err := run("predict", "--spot", "Law", "--at", "2024-09-20T22:30:00Z", "-o", "json", "-c", cfgPath)
				So(err, ShouldBeNil)
				var res model.PredictionResult
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Spot, ShouldEqual, model.Law)
				So(res.ModelSource, ShouldEqual, model.SourcePerLibrary)
				So(res.BusyScore, ShouldEqual, 1.0)
			})

			Convey("And predicting every spot prints a table", func() {
				out, err := run("predict", "--all", "--at", "2024-09-20T13:30:00Z", "-c", cfgPath)
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "SPOT")
				So(out, ShouldContainSubstring, "Xwi7xwa")
				So(out, ShouldContainSubstring, "global_fallback")
			})
		})

		Convey("When listing spots as JSON", func() {
			out, err := run("spots", "-o", "json", "-c", cfgPath)

			Convey("Then the catalog is printed", func() {
				So(err, ShouldBeNil)
				var spots []model.Spot
				So(json.Unmarshal([]byte(out), &spots), ShouldBeNil)
				So(len(spots), ShouldEqual, 9)
			})
		})

		Convey("When predict has neither --spot nor --all", func() {
			_, err := run("predict", "-c", cfgPath)
			So(err, ShouldNotBeNil)
		})

		Convey("When the output format is unknown", func() {
			_, err := run("spots", "-o", "xml", "-c", cfgPath)
			So(err, ShouldNotBeNil)
		})

		Convey("When printing the version", func() {
			out, err := run("version")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "spotctl")
		})
	})

	Convey("Given a workspace using the SQLite driver", t, func() {
		t.Setenv("BUSYSPOT_CONFIG", "")
		dir, cfgPath := workspace(t, "sqlite")

		Convey("When importing a CSV export and training", func() {
			out, err := run("import-logs", "--from", filepath.Join(dir, "desk_logs.csv"), "-c", cfgPath)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "imported 3 records")

			out, err = run("train", "-o", "json", "-c", cfgPath)

			Convey("Then training reads the imported rows", func() {
				So(err, ShouldBeNil)
				var sum model.TrainingSummary
				So(json.Unmarshal([]byte(out), &sum), ShouldBeNil)
				So(sum.RecordsUsed, ShouldEqual, 3)
			})
		})
	})
}
