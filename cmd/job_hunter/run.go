package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-hunter/internal/logger"
	"github.com/jonathan/job-hunter/internal/pipeline"
	"github.com/jonathan/job-hunter/internal/progress"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Collect, evaluate and rank postings from every enabled job board",
	Long: `Runs the full pipeline: collectors fetch postings, the evaluator judges each
posting against the criteria, the enricher fills in derived fields, and the
results are printed best match first.

Configuration can be loaded from a YAML or JSON file using --config and from
JOBHUNTER_* environment variables. Command-line flags override both.`,
	RunE: runPipelineCmd,
}

var (
	runFlags       cliFlags
	runPolicy      string
	runOutput      string
	runDatabaseURL string
	runMetricsAddr string
)

func init() {
	bindFlags(runCommand, &runFlags)
	runCommand.Flags().StringVar(&runPolicy, "policy", "", "Completion policy: first_batch or all_collectors")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", "", "Write results as JSON to this file")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, &runFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = runPolicy
	}
	if cmd.Flags().Changed("out") {
		cfg.Output = runOutput
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = runMetricsAddr
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	profile, err := readProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}

	stopMetrics := serveMetrics(cfg.MetricsAddr, log)
	defer stopMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = pipeline.RunPipeline(ctx, pipeline.RunOptions{
		Config:  cfg,
		Profile: profile,
		Sink:    progress.Zap{Logger: log.Named("progress")},
		Out:     cmd.OutOrStdout(),
		Logger:  log,
	})
	return err
}
