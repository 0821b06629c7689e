// Package engine drives the persuasion game loop: it prompts the
// model, recovers and validates its JSON replies, applies the clamped
// counter changes to game state, and autosaves the session.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/parley-engine/internal/journal"
	"github.com/jwebster45206/parley-engine/internal/services"
	"github.com/jwebster45206/parley-engine/internal/storage"
	"github.com/jwebster45206/parley-engine/pkg/chat"
	"github.com/jwebster45206/parley-engine/pkg/jsontext"
	"github.com/jwebster45206/parley-engine/pkg/prompts"
	"github.com/jwebster45206/parley-engine/pkg/state"
	"github.com/jwebster45206/parley-engine/pkg/textfilter"
)

const (
	// Attempts per layer. A resolution attempt that fails transport
	// burns its own transport retries, so a dead backend is tried at
	// most maxResolutionAttempts * maxTransportAttempts times.
	maxResolutionAttempts = 3
	maxTransportAttempts  = 3
)

// TurnResult is everything the UI needs to render one resolved turn.
type TurnResult struct {
	Record        state.TurnRecord
	NPC           state.NPC
	NextProblem   string
	IsGameOver    bool
	EndingSummary string
}

// Engine owns one game session. It is not safe for concurrent use;
// the console serializes calls by gating input while a turn is in
// flight.
type Engine struct {
	llm      services.LLMService
	storage  storage.Storage
	exporter *journal.Exporter
	logger   *slog.Logger
	softener *textfilter.Softener

	requestTimeout  time.Duration
	transportDelay  time.Duration
	validationDelay time.Duration

	gs           *state.GameState
	retryMessage string
}

// New creates an engine. The storage may be nil to play without
// session persistence.
func New(llm services.LLMService, store storage.Storage, exporter *journal.Exporter, logger *slog.Logger) *Engine {
	return &Engine{
		llm:             llm,
		storage:         store,
		exporter:        exporter,
		logger:          logger,
		requestTimeout:  services.DefaultRequestTimeout,
		transportDelay:  time.Second,
		validationDelay: 1500 * time.Millisecond,
	}
}

// WithRequestTimeout overrides the per-request deadline.
// Returns the Engine for method chaining.
func (e *Engine) WithRequestTimeout(d time.Duration) *Engine {
	if d > 0 {
		e.requestTimeout = d
	}
	return e
}

// WithContentFilter softens narrative text before it reaches the
// player. Returns the Engine for method chaining.
func (e *Engine) WithContentFilter(softener *textfilter.Softener) *Engine {
	e.softener = softener
	return e
}

// GameState returns the live session state, or nil before setup.
func (e *Engine) GameState() *state.GameState {
	return e.gs
}

// HasRetry reports whether a failed turn's message is retained.
func (e *Engine) HasRetry() bool {
	return e.retryMessage != ""
}

// SetupWorld asks the model to generate the scenario for the player's
// setting and initializes the session from it. Unlike turns, an
// invalid world payload is not retried; the error surfaces so the
// player can try a different setting.
func (e *Engine) SetupWorld(ctx context.Context, setting string) (*state.GameState, error) {
	messages, err := prompts.WorldMessages(setting)
	if err != nil {
		return nil, fmt.Errorf("failed to build world prompt: %w", err)
	}

	content, err := e.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	var setup state.WorldSetup
	if err := jsontext.DecodeObject(content, &setup); err != nil {
		return nil, err
	}
	if err := setup.Validate(); err != nil {
		return nil, fmt.Errorf("model returned invalid world payload: %w", err)
	}
	if e.softener != nil {
		setup.OpeningScene = e.softener.Soften(setup.OpeningScene)
		setup.InitialProblem = e.softener.Soften(setup.InitialProblem)
	}

	gs := state.NewGameState(setting, &setup)
	e.gs = gs
	e.retryMessage = ""
	e.logger.Info("World generated",
		"session_id", gs.ID,
		"npc_count", len(gs.NPCs),
		"problem", gs.CurrentProblem)

	e.autosave(ctx)
	return gs, nil
}

// PlayTurn resolves one player message against the current state. On
// failure the message is retained so the player can retry without
// retyping it; a successful turn clears it. A message that fails
// validation is rejected up front and never retained.
func (e *Engine) PlayTurn(ctx context.Context, playerMessage string) (*TurnResult, error) {
	if e.gs == nil {
		return nil, fmt.Errorf("game state is not initialized")
	}
	if err := chat.ValidateMessage(playerMessage); err != nil {
		return nil, err
	}

	e.retryMessage = ""
	result, err := e.resolveTurn(ctx, playerMessage)
	if err != nil {
		e.retryMessage = playerMessage
		return nil, err
	}
	return result, nil
}

// RetryLastTurn replays the retained message from the last failed
// turn. The message stays retained until a replay succeeds.
func (e *Engine) RetryLastTurn(ctx context.Context) (*TurnResult, error) {
	if e.retryMessage == "" {
		return nil, fmt.Errorf("no turn available to retry")
	}

	result, err := e.resolveTurn(ctx, e.retryMessage)
	if err != nil {
		return nil, err
	}
	e.retryMessage = ""
	return result, nil
}

// ExportJournal writes the session journal and returns the path.
func (e *Engine) ExportJournal() (string, error) {
	if e.gs == nil {
		return "", fmt.Errorf("game state is not initialized")
	}
	return e.exporter.Export(e.gs)
}

// Resume loads a previously autosaved session. A missing session is a
// clean miss (nil, nil).
func (e *Engine) Resume(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	if e.storage == nil {
		return nil, nil
	}
	gs, err := e.storage.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, nil
	}
	e.gs = gs
	e.retryMessage = ""
	e.logger.Info("Session resumed", "session_id", gs.ID, "turns", len(gs.TurnHistory))
	return gs, nil
}

func (e *Engine) resolveTurn(ctx context.Context, playerMessage string) (*TurnResult, error) {
	messages, err := prompts.TurnMessages(e.gs, playerMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to build turn prompt: %w", err)
	}

	resolution, err := e.requestWithConstraints(ctx, messages)
	if err != nil {
		return nil, err
	}

	record, npc, err := state.NewDeltaWorker(e.gs).WithLogger(e.logger).Apply(resolution, playerMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to apply turn resolution: %w", err)
	}

	e.autosave(ctx)

	return &TurnResult{
		Record:        record,
		NPC:           npc,
		NextProblem:   e.gs.CurrentProblem,
		IsGameOver:    resolution.IsGameOver,
		EndingSummary: resolution.EndingSummary,
	}, nil
}

// requestWithConstraints runs the validation retry loop: each attempt
// completes a request, decodes the reply, validates the schema, and
// enforces narrative constraints. Failed attempts back off by 1.5s
// times the attempt number.
func (e *Engine) requestWithConstraints(ctx context.Context, messages []chat.ChatMessage) (*state.TurnResolution, error) {
	var lastErr error
	for attempt := 1; attempt <= maxResolutionAttempts; attempt++ {
		resolution, err := e.attemptResolution(ctx, messages)
		if err == nil {
			return resolution, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		e.logger.Warn("Turn resolution attempt failed",
			"attempt", attempt,
			"max_attempts", maxResolutionAttempts,
			"error", err)
		if attempt < maxResolutionAttempts {
			if serr := sleepCtx(ctx, time.Duration(attempt)*e.validationDelay); serr != nil {
				return nil, fmt.Errorf("model response failed validation: %w", lastErr)
			}
		}
	}
	return nil, fmt.Errorf("model response failed validation: %w", lastErr)
}

func (e *Engine) attemptResolution(ctx context.Context, messages []chat.ChatMessage) (*state.TurnResolution, error) {
	content, err := e.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	var resolution state.TurnResolution
	if err := jsontext.DecodeObject(content, &resolution); err != nil {
		return nil, err
	}
	if err := resolution.Validate(); err != nil {
		return nil, err
	}
	if err := enforceConstraints(&resolution); err != nil {
		return nil, err
	}
	e.soften(&resolution)
	return &resolution, nil
}

// soften runs narrative fields through the content filter when one is
// configured. Counters and structure are never touched.
func (e *Engine) soften(resolution *state.TurnResolution) {
	if e.softener == nil {
		return
	}
	resolution.NPCResponse = e.softener.Soften(resolution.NPCResponse)
	resolution.OutcomeSummary = e.softener.Soften(resolution.OutcomeSummary)
	resolution.NextProblem = e.softener.Soften(resolution.NextProblem)
	resolution.EndingSummary = e.softener.Soften(resolution.EndingSummary)
	for i := range resolution.Branches {
		resolution.Branches[i].Title = e.softener.Soften(resolution.Branches[i].Title)
		resolution.Branches[i].Description = e.softener.Soften(resolution.Branches[i].Description)
	}
}

// complete sends one chat request with transport-level retries: up to
// three attempts, delay starting at one second and doubling.
func (e *Engine) complete(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	var lastErr error
	delay := e.transportDelay
	for attempt := 1; attempt <= maxTransportAttempts; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
		content, err := e.llm.Chat(reqCtx, messages)
		cancel()
		if err == nil {
			return content, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < maxTransportAttempts {
			e.logger.Warn("LLM request failed, will retry",
				"attempt", attempt,
				"max_attempts", maxTransportAttempts,
				"error", err)
			if serr := sleepCtx(ctx, delay); serr != nil {
				break
			}
			delay *= 2
		}
	}
	return "", fmt.Errorf("LLM request failed: %w", lastErr)
}

// autosave persists the session. Failures are logged, never fatal; a
// turn that resolved should not be lost to a storage hiccup.
func (e *Engine) autosave(ctx context.Context) {
	if e.storage == nil || e.gs == nil {
		return
	}
	if err := e.storage.SaveGameState(ctx, e.gs.ID, e.gs); err != nil {
		e.logger.Warn("Failed to autosave game state", "session_id", e.gs.ID, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
