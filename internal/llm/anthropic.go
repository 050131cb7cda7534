package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cratedig/cratedig/internal/shared"
)

const anthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicBackend implements [Backend] over the Anthropic Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicBackend creates an Anthropic backend with the given API key.
func NewAnthropicBackend(apiKey string) *AnthropicBackend {
	return &AnthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(anthropicModel),
	}
}

func (b *AnthropicBackend) Name() string { return ProviderAnthropic }

// Send submits the prompt as a single user message and returns the first
// text block of the reply.
func (b *AnthropicBackend) Send(ctx context.Context, prompt string) (string, error) {
	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       b.model,
		MaxTokens:   maxReplyTokens,
		Temperature: anthropic.Float(samplingTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", shared.ErrBackendRequest, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: anthropic: no text content in response", shared.ErrBackendRequest)
}
