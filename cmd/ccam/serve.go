package main

import (
	"context"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/logging"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/server"
	"github.com/t2a/ccam/internal/snapshot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and plan API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateSource(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sn, err := loadSnapshot(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("snapshot load failed")
		os.Exit(exitcode.LoadError)
	}

	var store snapshot.Store
	store.Swap(sn)

	reload := func(ctx context.Context) (*snapshot.Snapshot, *model.LoadSummary, error) {
		fresh, err := loadSnapshot(ctx, log)
		if err != nil {
			return nil, nil, err
		}
		return fresh, &model.LoadSummary{Version: fresh.Version, Codes: fresh.Catalog.Len()}, nil
	}

	srv := server.New(&store, log, cfg, reload)
	log.Info().Str("addr", cfg.Addr).Str("version", sn.Version).Msg("listening")
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(exitcode.QueryError)
	}
	return nil
}
