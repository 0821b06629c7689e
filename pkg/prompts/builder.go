package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/parley-engine/pkg/chat"
	"github.com/jwebster45206/parley-engine/pkg/state"
)

// PromptType selects which message pair the builder assembles.
type PromptType int

const (
	WorldPrompt PromptType = iota // invent the opening scenario
	TurnPrompt                    // resolve one persuasion turn
)

// Builder constructs chat messages for LLM interaction using a fluent
// interface. It separates prompt building logic from game state
// management.
type Builder struct {
	promptType    PromptType
	gs            *state.GameState
	setting       string
	playerMessage string
	historyLimit  int
	messages      []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New(promptType PromptType) *Builder {
	return &Builder{
		promptType:   promptType,
		historyLimit: RecentTurnWindow,
		messages:     make([]chat.ChatMessage, 0, 2),
	}
}

// WithGameState sets the game state serialized into turn prompts.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithSetting sets the player's world idea for world prompts.
func (b *Builder) WithSetting(setting string) *Builder {
	b.setting = setting
	return b
}

// WithPlayerMessage sets the pending player message for turn prompts.
func (b *Builder) WithPlayerMessage(message string) *Builder {
	b.playerMessage = message
	return b
}

// WithHistoryLimit sets how many full turns ride along in the payload.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs and returns the final message array for LLM
// consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	b.messages = make([]chat.ChatMessage, 0, 2)

	switch b.promptType {
	case WorldPrompt:
		if strings.TrimSpace(b.setting) == "" {
			return nil, fmt.Errorf("setting is required")
		}
		b.addWorldMessages()
	case TurnPrompt:
		if b.gs == nil {
			return nil, fmt.Errorf("gamestate is required")
		}
		if strings.TrimSpace(b.playerMessage) == "" {
			return nil, fmt.Errorf("player message is required")
		}
		if err := b.addTurnMessages(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown prompt type %d", b.promptType)
	}

	return b.messages, nil
}

func (b *Builder) addWorldMessages() {
	b.messages = append(b.messages,
		chat.ChatMessage{
			Role:    chat.ChatRoleSystem,
			Content: WorldSystemPrompt,
		},
		chat.ChatMessage{
			Role:    chat.ChatRoleUser,
			Content: fmt.Sprintf(WorldUserPromptTemplate, b.setting),
		},
	)
}

func (b *Builder) addTurnMessages() error {
	ps := ToPromptState(b.gs, b.playerMessage, b.historyLimit)
	payload, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("error marshaling prompt state: %w", err)
	}

	b.messages = append(b.messages,
		chat.ChatMessage{
			Role:    chat.ChatRoleSystem,
			Content: TurnSystemPrompt,
		},
		chat.ChatMessage{
			Role:    chat.ChatRoleUser,
			Content: fmt.Sprintf(TurnUserPromptTemplate, payload),
		},
	)
	return nil
}

// WorldMessages is a convenience function for the world setup prompt.
func WorldMessages(setting string) ([]chat.ChatMessage, error) {
	return New(WorldPrompt).WithSetting(setting).Build()
}

// TurnMessages is a convenience function for the turn resolution
// prompt with the default history window.
func TurnMessages(gs *state.GameState, playerMessage string) ([]chat.ChatMessage, error) {
	return New(TurnPrompt).
		WithGameState(gs).
		WithPlayerMessage(playerMessage).
		Build()
}
