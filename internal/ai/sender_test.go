package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	anthropt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type senderStub struct {
	response *anthropic.Message
	err      error

	params *anthropic.MessageNewParams
}

func (ss *senderStub) SendMessage(_ context.Context, params anthropic.MessageNewParams, _ ...anthropt.RequestOption) (*anthropic.Message, error) {
	ss.params = &params
	return ss.response, ss.err
}

func TestAnthropicProvider_Complete(t *testing.T) {
	sender := &senderStub{
		response: newAnthropicResponse(t, anthropic.NewTextBlock("Hello"), anthropic.NewTextBlock(" there")),
	}
	provider := AnthropicProvider{sender: sender}

	reply, err := provider.Complete(context.Background(), Prompt{
		Model:       "claude-sonnet-4-0",
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Messages:    BuildMessages([]Turn{NewUserTurn("hi"), NewAssistantTurn("hello")}, "how are you?"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	params := sender.params
	require.NotNil(t, params)
	assert.Equal(t, anthropic.Model("claude-sonnet-4-0"), params.Model)
	assert.Equal(t, DefaultMaxTokens, params.MaxTokens)
	assert.Equal(t, DefaultTemperature, params.Temperature.Value)
	require.Len(t, params.System, 1)
	assert.Equal(t, SystemInstruction, params.System[0].Text)

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, "hi", params.Messages[0].Content[0].OfText.Text)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)
	assert.Equal(t, "how are you?", params.Messages[2].Content[0].OfText.Text)
}

func TestAnthropicProvider_LeadingAssistantTurn(t *testing.T) {
	sender := &senderStub{response: newAnthropicResponse(t, anthropic.NewTextBlock("ok"))}
	provider := AnthropicProvider{sender: sender}

	_, err := provider.Complete(context.Background(), Prompt{
		Messages: BuildMessages([]Turn{Greeting()}, "hi"),
	})
	require.NoError(t, err)

	messages := sender.params.Messages
	require.Len(t, messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[0].Role)
	assert.Equal(t, conversationStartText, messages[0].Content[0].OfText.Text)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[1].Role)
	assert.Equal(t, GreetingText, messages[1].Content[0].OfText.Text)
}

func TestAnthropicProvider_NoTextBlocks(t *testing.T) {
	sender := &senderStub{response: newAnthropicResponse(t)}
	provider := AnthropicProvider{sender: sender}

	reply, err := provider.Complete(context.Background(), Prompt{Messages: BuildMessages(nil, "hi")})

	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestAnthropicProvider_SendError(t *testing.T) {
	sender := &senderStub{err: errors.New("overloaded")}
	provider := AnthropicProvider{sender: sender}

	_, err := provider.Complete(context.Background(), Prompt{Messages: BuildMessages(nil, "hi")})

	require.Error(t, err)
	assert.ErrorContains(t, err, "overloaded")
}

// newAnthropicResponse creates an *anthropic.Message, which is difficult to create otherwise because the SDK only
// intends users to get one by deserializing an API response
func newAnthropicResponse(t *testing.T, content ...anthropic.ContentBlockParamUnion) *anthropic.Message {
	t.Helper()

	messageParam := anthropic.NewAssistantMessage(content...)

	paramJSON, err := json.Marshal(messageParam)
	require.NoError(t, err)

	var msg anthropic.Message
	err = json.Unmarshal(paramJSON, &msg)
	require.NoError(t, err)

	return &msg
}
