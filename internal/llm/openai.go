package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openaiSystemPrompt = "You are a helpful programming tutor."

// OpenAIProvider adapts the OpenAI chat-completions API to the Provider
// interface. It is the primary explanation backend.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates the adapter. baseURL overrides the API
// endpoint — empty means the public OpenAI endpoint; tests point it at a
// local httptest server.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Explain makes a single chat-completion call. No retries here — failures
// propagate so the orchestrator can fall back to the next provider.
func (p *OpenAIProvider) Explain(ctx context.Context, promptText string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai returned no choices: %w", ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps the library's APIError onto our failure
// taxonomy. 401/403/429 and the "insufficient_quota" code are all
// credential/quota problems; everything else is a transport error and is
// wrapped as-is.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			return fmt.Errorf("openai: %s: %w", apiErr.Message, ErrQuota)
		}
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("openai: %s: %w", apiErr.Message, ErrQuota)
		}
	}
	return fmt.Errorf("openai: %w", err)
}
