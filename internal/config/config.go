// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/types"
)

// EnvPrefix prefixes every environment override, e.g. JOBHUNTER_API_KEY
const EnvPrefix = "JOBHUNTER"

// Config represents the run configuration. It can be loaded from a YAML or
// JSON file and overridden by JOBHUNTER_* environment variables; CLI flags
// are applied on top by the caller.
type Config struct {
	// Model. Model overrides the provider default and Timeout 0 keeps the
	// provider's per-call timeout.
	Provider string        `mapstructure:"provider" json:"provider,omitempty" validate:"omitempty,oneof=gemini ollama"`
	Model    string        `mapstructure:"model" json:"model,omitempty"`
	APIKey   string        `mapstructure:"api_key" json:"api_key,omitempty"`
	Endpoint string        `mapstructure:"endpoint" json:"endpoint,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout,omitempty" validate:"gte=0"`

	// Evaluation
	AnalysisMode string `mapstructure:"analysis_mode" json:"analysis_mode,omitempty" validate:"omitempty,oneof=linear recursive"`
	MaxSteps     int    `mapstructure:"max_steps" json:"max_steps,omitempty" validate:"gte=0"`
	MaxCalls     int    `mapstructure:"max_calls" json:"max_calls,omitempty" validate:"gte=0"`
	Concurrency  int    `mapstructure:"concurrency" json:"concurrency,omitempty" validate:"gte=0"`
	Policy       string `mapstructure:"policy" json:"policy,omitempty" validate:"omitempty,oneof=first_batch all_collectors"`

	// Criteria. ProfilePath points at the candidate profile (CV) text.
	Keywords        []string               `mapstructure:"keywords" json:"keywords,omitempty"`
	ExperienceLevel string                 `mapstructure:"experience_level" json:"experience_level,omitempty"`
	ProfilePath     string                 `mapstructure:"profile" json:"profile,omitempty"`
	Sources         []types.SourceSettings `mapstructure:"sources" json:"sources,omitempty" validate:"dive"`

	// Output. Output is the JSON export path, MetricsAddr the Prometheus
	// listener (e.g. ":9090").
	LogLevel    string `mapstructure:"log_level" json:"log_level,omitempty"`
	LogFormat   string `mapstructure:"log_format" json:"log_format,omitempty" validate:"omitempty,oneof=json console"`
	Output      string `mapstructure:"output" json:"output,omitempty"`
	DatabaseURL string `mapstructure:"database_url" json:"database_url,omitempty"`
	MetricsAddr string `mapstructure:"metrics_addr" json:"metrics_addr,omitempty"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() Config {
	return Config{
		Provider:        string(llm.ProviderGemini),
		AnalysisMode:    "recursive",
		MaxSteps:        4,
		MaxCalls:        200,
		Concurrency:     1,
		Policy:          "first_batch",
		ExperienceLevel: string(types.LevelAny),
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads configuration from path (optional) and the environment.
// Values missing from both fall back to Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("analysis_mode", d.AnalysisMode)
	v.SetDefault("max_steps", d.MaxSteps)
	v.SetDefault("max_calls", d.MaxCalls)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("keywords", d.Keywords)
	v.SetDefault("experience_level", d.ExperienceLevel)
	v.SetDefault("profile", d.ProfilePath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output", d.Output)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config error: invalid value for '%s' (%s)", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.ExperienceLevel != "" {
		if _, ok := types.ParseExperienceLevel(c.ExperienceLevel); !ok {
			return fmt.Errorf("config error: unknown experience level %q", c.ExperienceLevel)
		}
	}

	if c.Provider == string(llm.ProviderGemini) && c.APIKey == "" {
		return fmt.Errorf("config error: 'api_key' is required for the gemini provider")
	}

	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.ProfilePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if result.AnalysisMode == "" {
		result.AnalysisMode = defaults.AnalysisMode
	}
	if result.Policy == "" {
		result.Policy = defaults.Policy
	}
	if result.ExperienceLevel == "" {
		result.ExperienceLevel = defaults.ExperienceLevel
	}
	if result.ProfilePath == "" {
		result.ProfilePath = defaults.ProfilePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.MetricsAddr == "" {
		result.MetricsAddr = defaults.MetricsAddr
	}

	// Numeric fields: use default if zero
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.MaxSteps == 0 {
		result.MaxSteps = defaults.MaxSteps
	}
	if result.MaxCalls == 0 {
		result.MaxCalls = defaults.MaxCalls
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Slices
	if len(result.Keywords) == 0 {
		result.Keywords = defaults.Keywords
	}
	if len(result.Sources) == 0 {
		result.Sources = defaults.Sources
	}

	return result
}

// LLMConfig builds the completion client configuration
func (c *Config) LLMConfig() *llm.Config {
	var cfg *llm.Config
	if c.Provider == string(llm.ProviderOllama) {
		cfg = llm.DefaultOllamaConfig()
		if c.Endpoint != "" {
			cfg.Endpoint = c.Endpoint
		}
	} else {
		cfg = llm.DefaultGeminiConfig()
	}
	if c.Model != "" {
		cfg = cfg.WithModel(cfg.Tier, c.Model)
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	return cfg
}

// Criteria builds the run criteria; profile is the candidate profile text
func (c *Config) Criteria(profile string) (*types.Criteria, error) {
	level := types.LevelAny
	if c.ExperienceLevel != "" {
		parsed, ok := types.ParseExperienceLevel(c.ExperienceLevel)
		if !ok {
			return nil, fmt.Errorf("unknown experience level %q", c.ExperienceLevel)
		}
		level = parsed
	}

	keywords := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	criteria := &types.Criteria{
		Keywords:         keywords,
		ExperienceLevel:  level,
		Sources:          c.Sources,
		CandidateProfile: profile,
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return criteria, nil
}
