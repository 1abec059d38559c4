package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/db"
	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/loader"
	"github.com/t2a/ccam/internal/logging"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage offline snapshot files",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database catalog into an offline snapshot directory",
	RunE:  runSnapshotExport,
}

func init() {
	snapshotExportCmd.Flags().StringVar(&snapshotOut, "out", "", "Output directory (required)")
	_ = snapshotExportCmd.MarkFlagRequired("out")
	snapshotCmd.AddCommand(snapshotExportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or CCAM_DB_URL is required for export")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN, true)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := loader.Export(ctx, pool, log, snapshotOut); err != nil {
		log.Error().Err(err).Msg("snapshot export failed")
		os.Exit(exitcode.LoadError)
	}

	fmt.Printf("Snapshot exported to %s\n", snapshotOut)
	return nil
}
