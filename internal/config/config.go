package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
)

// Config holds all runtime settings. Values come from the environment;
// the console loads .env first so local play needs no exports.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Provider selects the LLM backend. Model overrides that
	// provider's default model name.
	Provider string `env:"PARLEY_PROVIDER" envDefault:"openai"`
	Model    string `env:"PARLEY_MODEL"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OllamaURL       string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`

	// Sampling knobs passed through to the provider.
	Temperature    float64       `env:"PARLEY_TEMPERATURE" envDefault:"0.8"`
	MaxTokens      int           `env:"PARLEY_MAX_TOKENS" envDefault:"900"`
	RequestTimeout time.Duration `env:"PARLEY_REQUEST_TIMEOUT" envDefault:"30s"`

	// SessionID resumes a previous autosaved session when set.
	SessionID string `env:"PARLEY_SESSION"`

	// Rating softens NPC dialogue when set to G, PG, or PG13.
	// Anything else plays the model's text verbatim.
	Rating string `env:"PARLEY_RATING"`

	// RedisAddr is optional; sessions fall back to in-memory storage
	// when it is unset.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JournalDir string `env:"PARLEY_JOURNAL_DIR" envDefault:"journals"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required to play")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required to play")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required to play")
		}
	case ProviderOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL environment variable is required to play")
		}
	default:
		return fmt.Errorf("invalid provider %q (supported: openai, anthropic, ollama, gemini)", c.Provider)
	}
	return nil
}

// SlogLevel converts the configured level name to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
