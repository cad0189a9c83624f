// Package ai provides the conversation data model and the completion providers the relay forwards prompts to.
package ai

// Role identifies the author of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem only ever appears in prompts built for a provider, never in a client conversation
	RoleSystem Role = "system"
)

// GreetingText is the content of the synthetic assistant turn that opens every conversation
const GreetingText = "👋 Hello! I'm your AI assistant. Ask me anything!"

// Turn is a single message in a conversation
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn creates a user turn with the given content
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn with the given content
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// Greeting returns the turn a fresh conversation starts with
func Greeting() Turn {
	return NewAssistantTurn(GreetingText)
}

// Conversation is the ordered, chronological sequence of turns of one session
type Conversation []Turn

// NewConversation returns a conversation containing only the greeting
func NewConversation() Conversation {
	return Conversation{Greeting()}
}

// Clone returns a copy of the conversation that shares no backing array with the original
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	clone := make(Conversation, len(c))
	copy(clone, c)
	return clone
}
