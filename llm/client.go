// Package llm is the gateway to language-model providers. The
// Processor layers prompt templates, caching, retries, batching and
// structured-output repair on top of a provider Client.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/use-agent/spindle/config"
)

// Client sends one prompt to a language model and returns its text output.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// NewClient builds the provider client named by the configuration.
// Pass nil to use a default http.Client with the configured timeout.
func NewClient(cfg config.GenerationConfig, httpClient *http.Client) (Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg, httpClient), nil
	case "anthropic":
		return newAnthropicClient(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
