package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/config"
	"github.com/t2a/ccam/internal/db"
	"github.com/t2a/ccam/internal/loader"
	"github.com/t2a/ccam/internal/search"
	"github.com/t2a/ccam/internal/snapshot"
)

var (
	cfg      = config.Default()
	cfgFile  string
	freqJSON string
)

var rootCmd = &cobra.Command{
	Use:   "ccam",
	Short: "CCAM code search and billing-plan assistant",
	Long: "Searches the CCAM procedure catalog by free text and assembles maximal,\n" +
		"rejection-safe billing plans from official and observed association data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		return cfg.LoadFromFile(cfgFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("CCAM_DB_URL"), "Postgres connection string (or set CCAM_DB_URL)")
	pf.StringVar(&cfg.SnapshotDir, "snapshot", "", "Offline snapshot directory (alternative to --dsn)")
	pf.StringVar(&cfgFile, "config", "", "Path to YAML config file")
	pf.StringVar(&freqJSON, "frequency-json", "", "Extra validated-associations JSON file to merge on load")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}

// loadSnapshot builds a snapshot from whichever source is configured.
func loadSnapshot(ctx context.Context, log zerolog.Logger) (*snapshot.Snapshot, error) {
	opts := loader.Options{
		Search: search.Options{
			MinTokenLen:    cfg.MinTokenLen,
			IncludeRetired: cfg.IncludeRetired,
		},
		FrequencyJSON: freqJSON,
	}

	if cfg.SnapshotDir != "" {
		sn, _, err := loader.FromDir(cfg.SnapshotDir, log, opts)
		return sn, err
	}

	pool, err := db.NewPool(ctx, cfg.DSN, true)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	sn, _, err := loader.FromPostgres(ctx, pool, log, opts)
	return sn, err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
