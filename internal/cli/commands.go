package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/busyspot/internal/adapters/logsource"
	"github.com/okian/busyspot/internal/config"
	"github.com/okian/busyspot/internal/domain/model"
)

func newTrainCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Rebuild the frequency table from the desk logs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := g.service(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			sum, err := svc.Train(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g.outputFmt, sum)
		},
	}
}

func newPredictCmd(g *globals) *cobra.Command {
	var (
		spot string
		at   string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score how busy a spot is",
		Long: `Score how busy a spot is at an instant (default now).

Examples:
  spotctl predict --spot Koerner
  spotctl predict --spot "David Lam" --at 2024-09-12T13:00:00-07:00
  spotctl predict --all -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && spot == "" {
				return fmt.Errorf("either --spot or --all is required")
			}
			svc, err := g.service(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			var results []model.PredictionResult
			if all {
				results, err = svc.PredictAll(cmd.Context(), at)
			} else {
				var res model.PredictionResult
				res, err = svc.Predict(cmd.Context(), spot, at)
				results = []model.PredictionResult{res}
			}
			if err != nil {
				return err
			}
			if !all && g.outputFmt == formatJSON {
				return render(cmd.OutOrStdout(), g.outputFmt, results[0])
			}
			return render(cmd.OutOrStdout(), g.outputFmt, results)
		},
	}
	cmd.Flags().StringVar(&spot, "spot", "", "spot name, e.g. Koerner")
	cmd.Flags().StringVar(&at, "at", "", "ISO-8601 instant; naive values are UTC")
	cmd.Flags().BoolVar(&all, "all", false, "score every spot")
	return cmd
}

func newSpotsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "spots",
		Short: "List the study-spot catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd.OutOrStdout(), g.outputFmt, model.Catalog())
		},
	}
}

type importResult struct {
	Database string `json:"database"`
	Imported int    `json:"imported"`
}

func newImportLogsCmd(g *globals) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "import-logs",
		Short: "Load a desk-log CSV export into the SQLite desk-log table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				if g.cfg.DeskLogsDriver != config.DriverSQLite {
					return fmt.Errorf("--to is required unless desk_logs_driver is sqlite")
				}
				to = g.cfg.DeskLogsPath
			}
			opts := []logsource.Option{
				logsource.WithColumns(g.cfg.DeskColumn, g.cfg.TimestampColumn),
				logsource.WithTable(g.cfg.DeskLogsTable),
			}
			records, err := logsource.NewCSV(from, opts...).Records(cmd.Context())
			if err != nil {
				return err
			}
			db, err := logsource.OpenSQLite(to, opts...)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Import(cmd.Context(), records)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g.outputFmt, importResult{Database: to, Imported: n})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "CSV export to read")
	cmd.Flags().StringVar(&to, "to", "", "SQLite database to write (default: desk_logs_path)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
