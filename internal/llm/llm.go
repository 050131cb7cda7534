// package llm defines the Backend interface for text-generation providers
//
// OpenAI, Anthropic
package llm

import (
	"context"
	"fmt"

	"github.com/cratedig/cratedig/internal/shared"
)

// Recognized provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Both providers are called with identical sampling parameters; only the
// request envelope and reply unwrapping differ.
const (
	maxReplyTokens      = 500
	samplingTemperature = 0.1
)

// Backend sends a classification prompt to a text-generation service and
// returns the raw reply text. Implementations are stateless beyond a fixed
// credential and are safe to share across sequential batches.
type Backend interface {
	// Send submits the prompt and returns the reply text.
	// Failures wrap shared.ErrBackendRequest.
	Send(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier (e.g., "openai")
	Name() string
}

// New constructs the Backend for the configured provider.
//
// An unrecognized provider or a missing credential is a construction-time
// failure; no backend is built and nothing is retried.
func New(cfg shared.LLMConfig) (Backend, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai_api_key not set (config or OPENAI_API_KEY)", shared.ErrMissingCredentials)
		}
		return NewOpenAIBackend(cfg.OpenAIAPIKey), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: anthropic_api_key not set (config or ANTHROPIC_API_KEY)", shared.ErrMissingCredentials)
		}
		return NewAnthropicBackend(cfg.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("%w: %q (use %q or %q)", shared.ErrUnsupportedProvider, provider, ProviderOpenAI, ProviderAnthropic)
	}
}
