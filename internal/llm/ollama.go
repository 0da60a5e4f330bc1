package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OllamaClient implements Client for a local Ollama-compatible endpoint.
// When the configured model is unknown to the server the call is retried
// once with the fallback model.
type OllamaClient struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// NewOllamaClient creates a client for config.Endpoint. A nil logger discards logs.
func NewOllamaClient(config *Config, logger *zap.Logger) *OllamaClient {
	if config == nil {
		config = DefaultOllamaConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Complete sends prompt to the configured model, falling back once when the model is missing
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.config.Model()
	if model == "" {
		model = DefaultOllamaModel
	}

	text, err := c.generate(ctx, model, prompt)
	if err == nil {
		return text, nil
	}

	fallback := c.config.FallbackModel
	if fallback == "" || fallback == model || !isModelNotFound(err) {
		return "", err
	}
	c.logger.Warn("model not found, using fallback",
		zap.String("model", model),
		zap.String("fallback", fallback))
	return c.generate(ctx, fallback, prompt)
}

func (c *OllamaClient) generate(ctx context.Context, model, prompt string) (string, error) {
	endpoint := c.config.Endpoint
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	url := strings.TrimRight(endpoint, "/") + "/api/generate"

	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt, Stream: false, Format: "json"})
	if err != nil {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	var out ollamaResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(out.Error)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", &CompletionError{Provider: ProviderOllama, Model: model, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, StatusCode: resp.StatusCode, Message: "bad JSON from server", Cause: decodeErr}
	}
	if out.Error != "" {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, StatusCode: resp.StatusCode, Message: out.Error}
	}
	if out.Response == "" {
		return "", &CompletionError{Provider: ProviderOllama, Model: model, StatusCode: resp.StatusCode, Message: "no response text"}
	}
	return out.Response, nil
}

func isModelNotFound(err error) bool {
	ce, ok := err.(*CompletionError)
	if !ok {
		return false
	}
	return ce.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(ce.Message), "not found")
}

// GetModel returns the model used for completions
func (c *OllamaClient) GetModel() string {
	return c.config.Model()
}

// Close is a no-op; the HTTP client holds no resources that need releasing
func (c *OllamaClient) Close() error {
	return nil
}

// String describes the client for logs
func (c *OllamaClient) String() string {
	return fmt.Sprintf("ollama(%s @ %s)", c.config.Model(), c.config.Endpoint)
}
