// Package llm provides the completion capability used by the evaluator and
// its provider adapters. Callers depend only on Completer; the adapters turn
// a prompt into completion text for one configured model.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: keyword extraction, quick triage
	TierLite ModelTier = "lite"
	// TierStandard is for single-prompt posting analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for multi-step evidence gathering
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOllama is a local Ollama-compatible endpoint
	ProviderOllama Provider = "ollama"
)

// Defaults for the local provider
const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "llama3.1"
	DefaultFallbackModel  = "llama3"
)

// Config holds the model configuration for the application
type Config struct {
	Provider      Provider
	Models        map[ModelTier]string
	Tier          ModelTier
	Endpoint      string
	FallbackModel string
	Timeout       time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Tier:    TierStandard,
		Timeout: 90 * time.Second,
	}
}

// DefaultOllamaConfig returns the default local configuration. Local
// inference can queue for a long time, hence the generous timeout.
func DefaultOllamaConfig() *Config {
	return &Config{
		Provider: ProviderOllama,
		Models: map[ModelTier]string{
			TierStandard: DefaultOllamaModel,
		},
		Tier:          TierStandard,
		Endpoint:      DefaultOllamaEndpoint,
		FallbackModel: DefaultFallbackModel,
		Timeout:       15 * time.Minute,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// Model returns the model used for completions at the configured tier
func (c *Config) Model() string {
	tier := c.Tier
	if tier == "" {
		tier = TierStandard
	}
	return c.GetModel(tier)
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// WithTier returns a new Config that completes at the given tier
func (c *Config) WithTier(tier ModelTier) *Config {
	newConfig := *c
	newConfig.Tier = tier
	return &newConfig
}
