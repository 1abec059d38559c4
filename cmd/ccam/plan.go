package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/logging"
	"github.com/t2a/ccam/internal/plan"
)

var (
	planExclude []string
	planForce   []string
)

var planCmd = &cobra.Command{
	Use:   "plan <code>",
	Short: "Assemble a billing plan around a principal code",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanCmd,
}

func init() {
	f := planCmd.Flags()
	f.StringSliceVar(&planExclude, "exclude", nil, "Codes to exclude from the plan")
	f.StringSliceVar(&planForce, "force", nil, "Codes to include despite no recorded association")
	rootCmd.AddCommand(planCmd)
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
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

	p, err := sn.Plans.Build(args[0], plan.Options{Exclude: planExclude, Force: planForce})
	if err != nil {
		if errors.Is(err, plan.ErrInvalidPrincipal) {
			fmt.Printf("Cannot build plan: %v\n", err)
			os.Exit(exitcode.QueryError)
		}
		log.Error().Err(err).Msg("plan build failed")
		os.Exit(exitcode.QueryError)
	}

	fmt.Printf("Billing plan for %s  %s\n\n", p.Principal.Code, truncateLabel(p.Principal.Label, 60))
	fmt.Printf("  %-8s %-7s ICR=%-6.0f %s\n", p.Principal.Code, "", p.Principal.ICR, "principal procedure")
	for _, e := range p.Entries {
		fmt.Printf("  %-8s [%s] ICR=%-6.0f %s\n", e.Code, e.Badge, e.ICR, e.Reason)
	}
	fmt.Printf("\nTotal ICR: %.0f (%d secondary code(s))\n", p.TotalICR, len(p.Entries))
	if p.SkippedStale > 0 {
		fmt.Printf("Skipped %d stale association reference(s).\n", p.SkippedStale)
	}
	return nil
}
