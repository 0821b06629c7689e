package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwebster45206/parley-engine/pkg/chat"
)

const DefaultGeminiModel = "gemini-2.5-pro"

// GeminiService implements LLMService for Google Gemini via the genai SDK.
// Unlike the HTTP providers it holds a client that must be closed when
// the session ends.
type GeminiService struct {
	client      *genai.Client
	modelName   string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// Ensure GeminiService implements LLMService interface
var _ LLMService = (*GeminiService)(nil)

// NewGeminiService creates a new Gemini service
func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		client:      client,
		modelName:   modelName,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      logger,
	}, nil
}

// WithSampling overrides the default temperature and max token budget.
func (g *GeminiService) WithSampling(temperature float64, maxTokens int) *GeminiService {
	g.temperature = temperature
	g.maxTokens = maxTokens
	return g
}

// ModelName reports the configured model.
func (g *GeminiService) ModelName() string {
	return g.modelName
}

// Close releases the underlying API client.
func (g *GeminiService) Close() error {
	return g.client.Close()
}

// geminiRole maps a chat role onto the two roles the genai history
// accepts. Gemini calls the assistant side "model".
func geminiRole(role string) string {
	if role == chat.ChatRoleAgent {
		return "model"
	}
	return "user"
}

// Chat generates a chat response using Gemini. System messages become
// the model's system instruction; the rest of the conversation is
// replayed as chat history with the final message sent live.
func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	systemPrompt, conversationMessages := splitChatMessages(messages)
	if len(conversationMessages) == 0 {
		return "", fmt.Errorf("no user messages provided")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(float32(g.temperature))
	model.SetMaxOutputTokens(int32(g.maxTokens))
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	session := model.StartChat()
	for _, msg := range conversationMessages[:len(conversationMessages)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := conversationMessages[len(conversationMessages)-1]
	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}

	var responseText string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				responseText += string(text)
			}
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("no text content found in response")
	}

	return strings.TrimSpace(responseText), nil
}
