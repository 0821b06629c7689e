package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jwebster45206/parley-engine/internal/config"
	"github.com/jwebster45206/parley-engine/internal/engine"
	"github.com/jwebster45206/parley-engine/internal/journal"
	"github.com/jwebster45206/parley-engine/internal/logger"
	"github.com/jwebster45206/parley-engine/internal/services"
	"github.com/jwebster45206/parley-engine/internal/storage"
	"github.com/jwebster45206/parley-engine/pkg/textfilter"
)

func main() {
	// A missing .env is fine; settings may come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Parley",
		"environment", cfg.Environment,
		"llm_provider", cfg.Provider,
		"model_name", cfg.Model)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var llmService services.LLMService
	switch cfg.Provider {
	case config.ProviderOpenAI:
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.Model, log).
			WithSampling(cfg.Temperature, cfg.MaxTokens)
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.Model, log).
			WithSampling(cfg.Temperature, cfg.MaxTokens)
	case config.ProviderOllama:
		ollama := services.NewOllamaService(cfg.OllamaURL, cfg.Model, log).
			WithSampling(cfg.Temperature, cfg.MaxTokens)

		// Pull the model before the UI starts; first pulls are slow.
		initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
		err := ollama.InitModel(initCtx)
		initCancel()
		if err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", ollama.ModelName())
			os.Exit(1)
		}
		llmService = ollama
	case config.ProviderGemini:
		gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.Model, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		llmService = gemini.WithSampling(cfg.Temperature, cfg.MaxTokens)
	}
	if closer, ok := llmService.(io.Closer); ok {
		defer func() {
			_ = closer.Close() // Ignore error in defer
		}()
	}

	var store storage.Storage
	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := redisStore.WaitForConnection(storageCtx)
		storageCancel()
		if err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		log.Info("Storage connection established successfully")
		store = redisStore
	} else {
		log.Info("REDIS_ADDR not set, sessions will not survive restarts")
		store = storage.NewMemoryStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	exporter := journal.NewExporter(cfg.JournalDir)
	eng := engine.New(llmService, store, exporter, log).
		WithRequestTimeout(cfg.RequestTimeout)
	if textfilter.Enabled(cfg.Rating) {
		eng.WithContentFilter(textfilter.NewSoftener())
		log.Info("Dialogue softening enabled", "rating", cfg.Rating)
	}

	if cfg.SessionID != "" {
		id, err := uuid.Parse(cfg.SessionID)
		if err != nil {
			log.Error("Invalid session id", "session_id", cfg.SessionID, "error", err)
			os.Exit(1)
		}
		resumeCtx, resumeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		gs, err := eng.Resume(resumeCtx, id)
		resumeCancel()
		if err != nil {
			log.Error("Failed to resume session", "session_id", cfg.SessionID, "error", err)
			os.Exit(1)
		}
		if gs == nil {
			log.Warn("Session not found, starting fresh", "session_id", cfg.SessionID)
		}
	}

	p := tea.NewProgram(NewConsoleUI(eng, cfg.JournalDir, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Thanks for playing!")
}
