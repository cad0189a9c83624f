package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const (
	// GroqBaseURL is the OpenAI-compatible endpoint used when no base URL is configured
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultOpenAIModel = "llama-3.1-8b-instant"
)

// chatCompleter is the part of the go-openai client OpenAIProvider uses
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider talks to any OpenAI-compatible chat completions API, Groq by default
type OpenAIProvider struct {
	client chatCompleter
}

func NewOpenAIProvider(apiKey string, baseURL string, httpClient *http.Client) OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = GroqBaseURL
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return OpenAIProvider{
		client: openai.NewClientWithConfig(config),
	}
}

func (op OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt.Messages))
	for _, turn := range prompt.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(turn.Role),
			Content: turn.Content,
		})
	}

	response, err := op.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       prompt.Model,
		Messages:    messages,
		Temperature: float32(prompt.Temperature),
		MaxTokens:   int(prompt.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

func openAIRole(role Role) string {
	switch role {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
