package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for chat completion providers. The brief
// generator drives this with the evidence pack and (on validation failure)
// one repair prompt; implementations may call Anthropic Claude or Google
// Gemini.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context in
	// chronological order, including system prompts.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the LLM service is operational and can handle
	// requests.
	HealthCheck(ctx context.Context) error

	// ModelName returns the provider's model identifier for persistence
	// alongside generated briefs.
	ModelName() string

	// Close releases resources held by the service.
	Close() error
}
