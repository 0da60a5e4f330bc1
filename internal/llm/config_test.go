package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-hunter/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash", config.Model())
	assert.Equal(t, 90*time.Second, config.Timeout)
}

func TestDefaultOllamaConfig(t *testing.T) {
	config := DefaultOllamaConfig()

	assert.Equal(t, ProviderOllama, config.Provider)
	assert.Equal(t, DefaultOllamaModel, config.Model())
	// Tiers without their own model fall back to standard
	assert.Equal(t, DefaultOllamaModel, config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultFallbackModel, config.FallbackModel)
	assert.Equal(t, DefaultOllamaEndpoint, config.Endpoint)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.Model())
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Timeout, newConfig.Timeout)
}

func TestWithTier(t *testing.T) {
	config := DefaultConfig()
	advanced := config.WithTier(TierAdvanced)

	assert.Equal(t, "gemini-2.5-flash", config.Model())
	assert.Equal(t, "gemini-2.5-pro", advanced.Model())
}

func TestCompletionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CompletionError{Provider: ProviderOllama, Model: "llama3", StatusCode: 502, Message: "request failed", Cause: cause}

	assert.Contains(t, err.Error(), "ollama completion with llama3 failed (HTTP 502)")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, types.CodeCompletionFailure, types.CodeOf(err))
}
