package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/t2a/ccam/internal/exitcode"
	"github.com/t2a/ccam/internal/logging"
	"github.com/t2a/ccam/internal/plan"
)

var checkCmd = &cobra.Command{
	Use:   "check <code> <code>...",
	Short: "Check whether a set of codes can be billed together",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	issues := sn.Plans.Check(args, cfg.SuggestUnknown)
	blocked := false
	for _, issue := range issues {
		tag := "INFO"
		switch issue.Type {
		case plan.IssueOK:
			tag = "OK"
		case plan.IssueIncompatible, plan.IssueUnknownCode:
			tag = "ERR"
			blocked = true
		case plan.IssueRetiredCode:
			tag = "WARN"
		}
		fmt.Printf("  [%s] %s\n", tag, issue.Message)
	}
	if blocked {
		os.Exit(exitcode.QueryError)
	}
	return nil
}
