package services

import (
	"context"
	"time"

	"github.com/jwebster45206/parley-engine/pkg/chat"
)

// Defaults shared by every provider. The game wants the same sampling
// behavior regardless of which backend serves it.
const (
	// DefaultTemperature keeps narration lively without breaking the
	// strict-JSON reply shape.
	DefaultTemperature = 0.8

	// DefaultMaxTokens bounds a single turn resolution.
	DefaultMaxTokens = 900

	// DefaultRequestTimeout is the per-request HTTP timeout.
	DefaultRequestTimeout = 30 * time.Second
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Chat sends the conversation and returns the model's raw reply
	// text. Decoding and validation happen upstream in the engine.
	Chat(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// ModelName reports which model the service targets.
	ModelName() string
}
