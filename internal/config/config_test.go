package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
provider: ollama
model: mistral
analysis_mode: linear
max_calls: 50
timeout: 2m
keywords: [go, kubernetes]
experience_level: senior
sources:
  - source: remoteok
    enabled: false
  - source: jobspresso
    enabled: true
    delay_ms: 500
    use_browser: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, "linear", cfg.AnalysisMode)
	assert.Equal(t, 50, cfg.MaxCalls)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, []string{"go", "kubernetes"}, cfg.Keywords)
	require.Len(t, cfg.Sources, 2)
	assert.False(t, cfg.Sources[0].Enabled)
	assert.Equal(t, types.SourceJobspresso, cfg.Sources[1].Source)
	assert.Equal(t, 500, cfg.Sources[1].DelayMS)
	assert.True(t, cfg.Sources[1].UseBrowser)

	// unset values keep their defaults
	assert.Equal(t, 4, cfg.MaxSteps)
	assert.Equal(t, "first_batch", cfg.Policy)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"api_key": "k", "policy": "all_collectors", "concurrency": 3}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "all_collectors", cfg.Policy)
	assert.Equal(t, 3, cfg.Concurrency)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "api_key: from-file\nmax_steps: 6\n")
	t.Setenv("JOBHUNTER_API_KEY", "from-env")
	t.Setenv("JOBHUNTER_KEYWORDS", "rust,go")
	t.Setenv("JOBHUNTER_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 6, cfg.MaxSteps)
	assert.Equal(t, []string{"rust", "go"}, cfg.Keywords)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Provider, cfg.Provider)
	assert.Equal(t, 200, cfg.MaxCalls)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeFile(t, "config.json", `{ invalid json }`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	profile := writeFile(t, "cv.txt", "Go developer")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "valid with profile", mutate: func(c *Config) { c.ProfilePath = profile }},
		{name: "ollama needs no key", mutate: func(c *Config) { c.Provider = "ollama"; c.APIKey = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "openai" }, wantErr: "Provider"},
		{name: "unknown mode", mutate: func(c *Config) { c.AnalysisMode = "psychic" }, wantErr: "AnalysisMode"},
		{name: "negative budget", mutate: func(c *Config) { c.MaxCalls = -1 }, wantErr: "MaxCalls"},
		{name: "unknown policy", mutate: func(c *Config) { c.Policy = "never" }, wantErr: "Policy"},
		{name: "unknown level", mutate: func(c *Config) { c.ExperienceLevel = "wizard" }, wantErr: "experience level"},
		{name: "missing key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: "api_key"},
		{name: "missing profile", mutate: func(c *Config) { c.ProfilePath = "/nope/cv.txt" }, wantErr: "profile file not found"},
		{name: "source without name", mutate: func(c *Config) { c.Sources = []types.SourceSettings{{Enabled: true}} }, wantErr: "Source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.APIKey = "key"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Defaults()
	defaults.Keywords = []string{"go"}

	partial := Config{
		Provider: "ollama",
		MaxCalls: 10,
	}

	merged := partial.MergeWithDefaults(defaults)

	assert.Equal(t, "ollama", merged.Provider)
	assert.Equal(t, 10, merged.MaxCalls)
	assert.Equal(t, "recursive", merged.AnalysisMode)
	assert.Equal(t, 4, merged.MaxSteps)
	assert.Equal(t, []string{"go"}, merged.Keywords)

	empty := partial.MergeWithDefaults(Config{})
	assert.Equal(t, "ollama", empty.Provider)
	assert.Empty(t, empty.AnalysisMode)
}

func TestLLMConfig(t *testing.T) {
	cfg := Config{Provider: "ollama", Endpoint: "http://gpu:11434", Model: "qwen2"}
	lc := cfg.LLMConfig()
	assert.Equal(t, llm.ProviderOllama, lc.Provider)
	assert.Equal(t, "http://gpu:11434", lc.Endpoint)
	assert.Equal(t, "qwen2", lc.Model())
	assert.Equal(t, 15*time.Minute, lc.Timeout)

	cfg = Config{Provider: "gemini", Timeout: time.Second}
	lc = cfg.LLMConfig()
	assert.Equal(t, llm.ProviderGemini, lc.Provider)
	assert.Equal(t, time.Second, lc.Timeout)
	assert.Equal(t, llm.DefaultGeminiConfig().Model(), lc.Model())
}

func TestCriteria(t *testing.T) {
	cfg := Config{Keywords: []string{" go ", "", "sql"}, ExperienceLevel: "sr"}
	c, err := cfg.Criteria("profile text")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, c.Keywords)
	assert.Equal(t, types.LevelSenior, c.ExperienceLevel)
	assert.True(t, c.HasProfile())

	c, err = (&Config{}).Criteria("")
	require.NoError(t, err)
	assert.Equal(t, types.LevelAny, c.ExperienceLevel)

	_, err = (&Config{ExperienceLevel: "wizard"}).Criteria("")
	assert.Error(t, err)
}
