// Command pricectl works with price extractions from the command line:
// print, export, email and store them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/dataset"
	"github.com/JonMunkholm/PriceView/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "pricectl",
	Short:         "Inspect, export and email price extractions",
	Long:          "Reads the configured price extraction (JSON file or Postgres) and prints, exports or emails it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment still applies.
		_ = godotenv.Overload()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyDatasetFlags(cmd, c)
		cfg = c

		logFile = logging.Setup(logging.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			Output:     os.Stderr,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.FileMaxSizeMB,
			MaxBackups: cfg.Logging.FileMaxBackups,
			MaxAgeDays: cfg.Logging.FileMaxAgeDays,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("source", "", "dataset source: file or postgres (overrides DATASET_SOURCE)")
	f.String("path", "", "dataset JSON file (overrides DATASET_PATH)")
	f.String("id", "", "stored extraction id (overrides DATASET_ID)")
}

// applyDatasetFlags copies explicitly set dataset flags onto c.
func applyDatasetFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		c.Dataset.Source, _ = flags.GetString("source")
	}
	if flags.Changed("path") {
		c.Dataset.Path, _ = flags.GetString("path")
		if !flags.Changed("source") {
			c.Dataset.Source = config.SourceFile
		}
	}
	if flags.Changed("id") {
		c.Dataset.ID, _ = flags.GetString("id")
		if !flags.Changed("source") {
			c.Dataset.Source = config.SourcePostgres
		}
	}
}

// loadStore opens the configured dataset.
func loadStore(ctx context.Context) (*core.RecordStore, error) {
	ds, err := dataset.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return core.NewRecordStore(ds), nil
}

// errorText is what the terminal shows for err: the mapped message and
// action when the error is recognised, otherwise the error itself.
func errorText(err error) string {
	if !core.IsUserFacing(err) {
		return err.Error()
	}
	ue := core.NewUserError(err)
	return fmt.Sprintf("%s (Código: %s). %s", ue.User.Message, ue.User.Code, ue.User.Action)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
		os.Exit(1)
	}
}
