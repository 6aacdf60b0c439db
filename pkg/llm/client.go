// Package llm defines the chat contract the planner and validator speak, and
// its implementations: the Anthropic adapter, a circuit-breaker wrapper, and
// a deterministic scripted client for tests. Consumers depend on the Client
// interface only; which implementation they get is a wiring decision.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable classifies provider failures the caller should treat as
// transient: transport errors, 5xx responses, and an open circuit breaker.
var ErrUnavailable = errors.New("llm provider unavailable")

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat exchange. System instructions travel in
// Request.System, not as a message.
type Message struct {
	Role    Role
	Content string
}

// Request is a provider-neutral chat request. Zero MaxTokens/Temperature
// fall back to the provider's configured defaults.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage counts tokens for a completed exchange.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a complete (non-streaming) chat response.
type Response struct {
	Text  string
	Usage Usage
}

// Chunk is one streaming increment. Exactly one field is set. A Usage chunk
// is the last successful chunk; the channel closes after Usage or Err.
type Chunk struct {
	Text  string
	Usage *Usage
	Err   error
}

// Client is the chat contract.
type Client interface {
	// Chat performs a single blocking completion.
	Chat(ctx context.Context, req Request) (*Response, error)

	// Stream performs a completion delivered incrementally. The returned
	// channel is closed when the stream ends; a mid-stream failure arrives
	// as a final Err chunk.
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}
