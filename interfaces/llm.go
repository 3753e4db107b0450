package interfaces

import "context"

// ChatMessage is a single turn in the conversation context.
type ChatMessage struct {
	Role    string `json:"role"` // system, user or assistant
	Content string `json:"content"`
}

// LanguageModel is the interface for the conversational LLM module.
// Stream sends deltas to the chunks channel as they arrive and closes it
// when the model is done. The returned string is the full reply.
type LanguageModel interface {
	Stream(ctx context.Context, messages []ChatMessage, chunks chan<- string) (string, error)
	Name() string
}
