// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// OpenAIProvider talks to any OpenAI-compatible endpoint; Gemini exposes one.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *OpenAIProvider) GetChatCompletion(ctx context.Context, model string, history []domain.Message) (string, error) {
	if len(history) == 0 {
		return "", NewValidationError("completion", "conversation history is empty")
	}
	if model == "" {
		model = p.config.Model
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	})
	if err != nil {
		return "", classifyError("completion", model, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Operation: "completion",
			Model:     model,
			Message:   "empty completion response",
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, classifyError("list_models", "", err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// classifyError keeps the upstream status code so callers can tell quota
// exhaustion apart from other failures.
func classifyError(operation, model string, err error) *AIError {
	aiErr := NewProviderError(operation, "request to language model failed", err)
	aiErr.Model = model

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		aiErr.Code = apiErr.HTTPStatusCode
		aiErr.Message = apiErr.Message
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		aiErr.Code = reqErr.HTTPStatusCode
	}
	if aiErr.Code == http.StatusTooManyRequests {
		aiErr.Type = ErrTypeRateLimit
	}
	return aiErr
}
