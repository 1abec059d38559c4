package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/logging"
	"github.com/t2a/ccam/internal/model"
)

var codeCmd = &cobra.Command{
	Use:   "code <code>",
	Short: "Show details and associations for one CCAM code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCode,
}

func init() {
	rootCmd.AddCommand(codeCmd)
}

func runCode(cmd *cobra.Command, args []string) error {
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

	code, ok := sn.Catalog.Get(args[0])
	if !ok {
		fmt.Printf("Code %s not found.\n", args[0])
		os.Exit(exitcode.QueryError)
	}

	fmt.Printf("Code:       %s\n", code.Code)
	fmt.Printf("Label:      %s\n", code.Label)
	if code.ChapterTitle != "" {
		fmt.Printf("Chapter:    %s  %s\n", code.Chapter, code.ChapterTitle)
	}
	if code.SubchapterTitle != "" {
		fmt.Printf("Subchapter: %s  %s\n", code.Subchapter, code.SubchapterTitle)
	}
	if code.ICR > 0 {
		fmt.Printf("ICR:        %.0f\n", code.ICR)
	}
	if code.Description != "" {
		fmt.Printf("Notes:      %s\n", truncateLabel(code.Description, 200))
	}
	if code.Retired {
		fmt.Println("Status:     RETIRED (historical lookup only)")
	}

	neighbors := sn.Graph.Neighbors(code.Code, model.TierCrossRegion)
	if len(neighbors) > 0 {
		fmt.Printf("\nAssociations (%d):\n", len(neighbors))
		for _, n := range neighbors {
			label := "?"
			if c, ok := sn.Catalog.Get(n.Code); ok {
				label = truncateLabel(c.Label, 50)
			}
			fmt.Printf("  %s  %s  (%s", n.Code, label, n.Tier)
			if n.Support > 0 {
				fmt.Printf(", support %d", n.Support)
			}
			fmt.Println(")")
		}
	}
	return nil
}
