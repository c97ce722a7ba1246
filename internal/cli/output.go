package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/busyspot/internal/domain/model"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func render(w io.Writer, format string, data any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	switch v := data.(type) {
	case model.TrainingSummary:
		return summaryText(w, v)
	case []model.PredictionResult:
		return predictionsTable(w, v)
	case []model.Spot:
		return spotsTable(w, v)
	case importResult:
		_, err := fmt.Fprintf(w, "imported %d records into %s\n", v.Imported, v.Database)
		return err
	default:
		return fmt.Errorf("unsupported data type for text output: %T", data)
	}
}

func summaryText(w io.Writer, s model.TrainingSummary) error {
	locs := make([]string, len(s.Locations))
	for i, l := range s.Locations {
		locs[i] = string(l)
	}
	_, err := fmt.Fprintf(w, `training complete
  version:              %s
  records used:         %d of %d
  dropped (unmapped):   %d
  dropped (timestamp):  %d
  per-library entries:  %d
  global entries:       %d
  locations:            %s
`, s.Version, s.RecordsUsed, s.RecordsRead, s.DroppedUnmapped, s.DroppedBadTimestamp,
		s.PerLibraryEntries, s.GlobalEntries, strings.Join(locs, ", "))
	return err
}

func predictionsTable(w io.Writer, results []model.PredictionResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPOT\tBIN\tMODEL\tSOURCE\tFEEDBACK\tWEATHER\tBUSY")
	for _, r := range results {
		fb := "-"
		if r.FeedbackScore != nil {
			fb = fmt.Sprintf("%.4g", *r.FeedbackScore)
		}
		wx := string(r.Weather.Status)
		if r.Weather.Status == model.WeatherApplied {
			wx = fmt.Sprintf("%+.4g", r.Weather.Factor)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%s\t%s\t%s\t%.4g\n",
			r.Spot, int(r.Bin), r.ModelScore, r.ModelSource, fb, wx, r.BusyScore)
	}
	return tw.Flush()
}

func spotsTable(w io.Writer, spots []model.Spot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAT\tLNG\tFEATURES")
	for _, s := range spots {
		fmt.Fprintf(tw, "%d\t%s\t%.6f\t%.6f\t%s\n", s.ID, s.Name, s.Lat, s.Lng, strings.Join(s.Features, ", "))
	}
	return tw.Flush()
}
