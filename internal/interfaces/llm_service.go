package interfaces

import (
	"context"
)

// Message represents a single message in a model conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// GenerateRequest is a provider-agnostic content generation request
type GenerateRequest struct {
	Messages          []Message
	Model             string  // Empty selects the configured default model
	Temperature       float32 // Negative selects the provider default; 0 is honored for deterministic calls
	MaxTokens         int
	SystemInstruction string
}

// GenerateResponse is a provider-agnostic content generation response
type GenerateResponse struct {
	Text     string
	Provider string
	Model    string
}

// LLMService defines the interface for language model operations: content
// generation and query embeddings. Implementations are stateless handles to
// remote providers; every call is a suspension point that honors the
// caller's context for cancellation and applies a per-call timeout.
//
// GenerateContent performs a single provider invocation with no internal
// retries. Retry policy belongs to callers so each pipeline stage can apply
// its own attempt budget.
type LLMService interface {
	// GenerateContent generates text for the given request
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases resources and performs cleanup operations
	Close() error
}
