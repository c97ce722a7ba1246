// Package cli implements the spotctl command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/busyspot/internal/app"
	"github.com/okian/busyspot/internal/config"
	"github.com/okian/busyspot/pkg/logger"
)

// Version info set from main.
var (
	version = "dev"
	commit  = "unknown"
)

// SetVersionInfo sets version information from build flags.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

// globals holds the persistent flags and what PersistentPreRunE derives from them.
type globals struct {
	configPath string
	outputFmt  string
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the spotctl command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "spotctl",
		Short: "Train and query the study-spot busyness model",
		Long: `spotctl trains the occupancy model from desk-usage logs and scores how busy
campus study spots are, using the same configuration as the HTTP server.

Examples:
  spotctl train                              # Rebuild the frequency table
  spotctl predict --spot Koerner             # Score one spot now
  spotctl predict --all --at 2024-09-12T13:00:00Z
  spotctl spots -o json                      # List the catalog as JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if g.outputFmt != formatText && g.outputFmt != formatJSON {
				return fmt.Errorf("unknown output format: %s", g.outputFmt)
			}
			var (
				cfg *config.Config
				err error
			)
			if g.configPath != "" {
				cfg, err = config.LoadFile(cmd.Context(), g.configPath)
			} else {
				cfg, err = config.Load(cmd.Context())
			}
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if g.logLevel != "" {
				level = g.logLevel
			}
			if err := logger.Init(
				logger.WithFormat(cfg.LogFormat),
				logger.WithLevel(level),
				logger.WithWriter(cmd.ErrOrStderr()),
			); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			g.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "",
		"config file (default: $"+config.EnvConfigFile+")")
	root.PersistentFlags().StringVarP(&g.outputFmt, "output", "o", formatText,
		"output format (text, json)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"log level override (debug, info, warn, error)")

	root.AddCommand(
		newTrainCmd(g),
		newPredictCmd(g),
		newSpotsCmd(g),
		newImportLogsCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (g *globals) service(ctx context.Context) (*service.Service, error) {
	return service.FromConfig(ctx, g.cfg, logger.Get())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading for version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spotctl %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		},
	}
}
