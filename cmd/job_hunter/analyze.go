package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-hunter/internal/logger"
	"github.com/jonathan/job-hunter/internal/observability"
	"github.com/jonathan/job-hunter/internal/pipeline"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <posting-file>",
	Short: "Evaluate a single local job posting against the candidate profile",
	Args:  cobra.ExactArgs(1),
	RunE:  analyzeCmd,
}

var (
	analyzeFlags cliFlags
	analyzeJSON  bool
)

func init() {
	bindFlags(analyzeCommand, &analyzeFlags)
	analyzeCommand.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analyzed record as JSON")

	rootCmd.AddCommand(analyzeCommand)
}

func analyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, &analyzeFlags)
	if err != nil {
		return err
	}

	posting, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read posting: %w", err)
	}
	profile, err := readProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec, err := pipeline.AnalyzePosting(ctx, pipeline.RunOptions{
		Config:  cfg,
		Profile: profile,
		Logger:  log,
	}, args[0], string(posting))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	_, err = fmt.Fprintln(out, observability.RenderCard(*rec))
	return err
}
