package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/logging"
	"github.com/t2a/ccam/internal/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search CCAM codes by free-text description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	limit := searchLimit
	if limit == 0 {
		limit = cfg.SearchLimit
	}

	query := strings.Join(args, " ")
	resp := sn.Search.Search(query, limit)
	if len(resp.Results) == 0 {
		if resp.Reason == search.ReasonEmptyQuery {
			fmt.Println("Empty query.")
			return nil
		}
		fmt.Printf("No results for %q. Try more generic terms.\n", query)
		return nil
	}

	fmt.Printf("%d result(s) for %q (%s stage):\n\n", len(resp.Results), query, resp.Stage)
	for i, res := range resp.Results {
		line := fmt.Sprintf("  [%d] %s  %s", i+1, res.Code.Code, truncateLabel(res.Code.Label, 65))
		if res.Code.ICR > 0 {
			line += fmt.Sprintf(" | ICR=%.0f", res.Code.ICR)
		}
		if res.Code.ChapterTitle != "" {
			line += " | " + truncateLabel(res.Code.ChapterTitle, 40)
		}
		fmt.Println(line)
	}
	return nil
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
