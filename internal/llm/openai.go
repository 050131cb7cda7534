package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cratedig/cratedig/internal/shared"
)

const (
	openAIModel   = "gpt-4o"
	openAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIBackend implements [Backend] over the OpenAI chat completions API.
type OpenAIBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIBackend creates an OpenAI backend with the given API key.
func NewOpenAIBackend(apiKey string) *OpenAIBackend {
	return &OpenAIBackend{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (b *OpenAIBackend) Name() string { return ProviderOpenAI }

// Send submits the prompt as a single user message and returns the first
// choice's content.
func (b *OpenAIBackend) Send(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model:       openAIModel,
		Temperature: samplingTemperature,
		MaxTokens:   maxReplyTokens,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: openai: marshal request: %v", shared.ErrBackendRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: openai: build request: %v", shared.ErrBackendRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", shared.ErrBackendRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: openai: read response: %v", shared.ErrBackendRequest, err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: openai: decode response: %v", shared.ErrBackendRequest, err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("%w: openai: %s", shared.ErrBackendRequest, parsed.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: openai: unexpected status %d", shared.ErrBackendRequest, resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices in response", shared.ErrBackendRequest)
	}

	return parsed.Choices[0].Message.Content, nil
}
