package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/config"
)

// cliFlags holds the flags shared by run and analyze
type cliFlags struct {
	configPath  string
	provider    string
	model       string
	apiKey      string
	endpoint    string
	mode        string
	maxSteps    int
	maxCalls    int
	concurrency int
	keywords    []string
	level       string
	profile     string
	logLevel    string
	logFormat   string
}

func bindFlags(cmd *cobra.Command, f *cliFlags) {
	fs := cmd.Flags()
	// Config file flag (processed first)
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML or JSON config file (values can be overridden by other flags)")

	fs.StringVar(&f.provider, "provider", "", "LLM provider: gemini or ollama")
	fs.StringVar(&f.model, "model", "", "Model name (defaults to the provider's model)")
	fs.StringVar(&f.apiKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	fs.StringVar(&f.endpoint, "endpoint", "", "Ollama endpoint URL")
	fs.StringVar(&f.mode, "mode", "", "Analysis mode: linear or recursive")
	fs.IntVar(&f.maxSteps, "max-steps", 0, "Maximum evidence steps per posting in recursive mode")
	fs.IntVar(&f.maxCalls, "max-calls", 0, "Maximum LLM calls for the whole run")
	fs.IntVar(&f.concurrency, "concurrency", 0, "Postings analyzed in parallel")
	fs.StringSliceVarP(&f.keywords, "keywords", "k", nil, "Search keywords (extracted from the profile when empty)")
	fs.StringVar(&f.level, "level", "", "Experience level: entry, junior, mid, senior, lead or any")
	fs.StringVarP(&f.profile, "profile", "p", "", "Path to the candidate profile (CV) as plain text")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: console or json")
}

// resolveConfig loads the config file and the environment, applies the flags
// that were explicitly set, fills defaults and validates the result.
func resolveConfig(cmd *cobra.Command, f *cliFlags) (config.Config, error) {
	loaded, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := *loaded

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if flags.Changed("mode") {
		cfg.AnalysisMode = f.mode
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = f.maxSteps
	}
	if flags.Changed("max-calls") {
		cfg.MaxCalls = f.maxCalls
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if flags.Changed("keywords") {
		cfg.Keywords = f.keywords
	}
	if flags.Changed("level") {
		cfg.ExperienceLevel = f.level
	}
	if flags.Changed("profile") {
		cfg.ProfilePath = f.profile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())

	// API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// readProfile returns the candidate profile text, or "" when no path is set
func readProfile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read profile: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// serveMetrics exposes the Prometheus registry on addr until the returned
// stop function is called
func serveMetrics(addr string, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() { _ = srv.Close() }
}
