package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropt "github.com/anthropics/anthropic-sdk-go/option"
)

// conversationStartText stands in for the user when a prompt's history opens with an assistant turn, since the
// Messages API requires the first message to come from the user
const conversationStartText = "(conversation start)"

var defaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_0)

// MessageSender sends a single request to the Anthropic Messages API
type MessageSender interface {
	SendMessage(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropt.RequestOption) (*anthropic.Message, error)
}

type StreamingMessageSender struct {
	client anthropic.Client
}

func NewStreamingMessageSender(client anthropic.Client) StreamingMessageSender {
	return StreamingMessageSender{
		client: client,
	}
}

func (sms StreamingMessageSender) SendMessage(
	ctx context.Context,
	params anthropic.MessageNewParams,
	opts ...anthropt.RequestOption,
) (*anthropic.Message, error) {
	stream := sms.client.Messages.NewStreaming(ctx, params, opts...)
	response := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		err := response.Accumulate(event)
		if err != nil {
			return nil, fmt.Errorf("failed to accumulate response content stream: %w", err)
		}
	}
	if stream.Err() != nil {
		return nil, fmt.Errorf("failed to stream response: %w", stream.Err())
	}
	if response.StopReason == "" {
		b, err := json.Marshal(response)
		if err != nil {
			log.Printf("error while marshalling corrupt message for inspection: %v", err)
		}
		return nil, fmt.Errorf("malformed message: %v", string(b))
	}

	return &response, nil
}

// AnthropicProvider completes prompts with Claude models
type AnthropicProvider struct {
	sender MessageSender
}

func NewAnthropicProvider(apiKey string, baseURL string, httpClient *http.Client) AnthropicProvider {
	opts := []anthropt.RequestOption{
		anthropt.WithAPIKey(apiKey),
		// One attempt per exchange
		anthropt.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, anthropt.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, anthropt.WithHTTPClient(httpClient))
	}
	return AnthropicProvider{
		sender: NewStreamingMessageSender(anthropic.NewClient(opts...)),
	}
}

func (ap AnthropicProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	response, err := ap.sender.SendMessage(ctx, anthropicParams(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	var text strings.Builder
	for _, contentBlock := range response.Content {
		switch content := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	return text.String(), nil
}

func anthropicParams(prompt Prompt) anthropic.MessageNewParams {
	system, rest := splitSystem(prompt.Messages)

	messageParams := []anthropic.MessageParam{}
	if len(rest) > 0 && rest[0].Role == RoleAssistant {
		messageParams = append(messageParams, anthropic.NewUserMessage(anthropic.NewTextBlock(conversationStartText)))
	}
	for _, turn := range rest {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == RoleAssistant {
			messageParams = append(messageParams, anthropic.NewAssistantMessage(block))
		} else {
			messageParams = append(messageParams, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(prompt.Model),
		MaxTokens:   prompt.MaxTokens,
		Temperature: anthropic.Float(prompt.Temperature),
		Messages:    messageParams,
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(system, "\n\n")},
		}
	}
	return params
}
