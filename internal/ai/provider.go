package ai

import (
	"context"
	"fmt"
	"net/http"
)

// Provider is an opaque text-completion service
type Provider interface {
	// Complete sends the prompt and returns the generated text of the first candidate. An empty string means the
	// provider answered without usable content; it is not an error at this level
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig selects and configures a Provider
type ProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	// HTTPClient is used for all upstream calls. nil means http.DefaultClient
	HTTPClient *http.Client
}

// NewProvider constructs the provider named by cfg.Name. An empty name selects the OpenAI-compatible provider
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Name {
	case "", ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.HTTPClient), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unknown provider '%s', expected '%s' or '%s'", cfg.Name, ProviderOpenAI, ProviderAnthropic)
	}
}

// DefaultModel returns the model used with the named provider when none is configured
func DefaultModel(providerName string) string {
	switch providerName {
	case ProviderAnthropic:
		return defaultAnthropicModel
	default:
		return defaultOpenAIModel
	}
}
