package ai

const (
	// SystemInstruction is prepended to every prompt sent to a provider
	SystemInstruction = "You are an expert AI assistant. Provide accurate, well-reasoned, and convincing answers. " +
		"Back up your points with clear explanations and relevant details. Be thorough but concise. " +
		"Focus on clarity and factual correctness in every response."

	// DefaultTemperature favors consistent answers over diverse ones
	DefaultTemperature = 0.6
	// DefaultMaxTokens bounds the length of each reply
	DefaultMaxTokens int64 = 512
)

// Prompt is everything a provider needs to produce one reply
type Prompt struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	// Messages is the full ordered prompt, starting with the system instruction
	Messages []Turn
}

// BuildMessages assembles the prompt messages in their fixed order: the system instruction, then the history, then
// the new user message
func BuildMessages(history []Turn, message string) []Turn {
	messages := make([]Turn, 0, len(history)+2)
	messages = append(messages, Turn{Role: RoleSystem, Content: SystemInstruction})
	messages = append(messages, history...)
	messages = append(messages, NewUserTurn(message))
	return messages
}

// splitSystem separates leading system turns from the rest of the prompt, for providers that take the system
// instruction out of band
func splitSystem(messages []Turn) (system []string, rest []Turn) {
	i := 0
	for ; i < len(messages) && messages[i].Role == RoleSystem; i++ {
		system = append(system, messages[i].Content)
	}
	return system, messages[i:]
}
