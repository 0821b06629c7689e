package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/parley-engine/internal/journal"
	"github.com/jwebster45206/parley-engine/internal/services"
	"github.com/jwebster45206/parley-engine/internal/storage"
	"github.com/jwebster45206/parley-engine/pkg/chat"
	"github.com/jwebster45206/parley-engine/pkg/state"
	"github.com/jwebster45206/parley-engine/pkg/textfilter"
)

const worldReply = `{
  "opening_scene": "Rain hammers the tin roof of the customs house as you step inside with your manifest.",
  "initial_problem": "Convince the customs officer to release your cargo.",
  "npcs": [
    {"name": "Officer Vance", "description": "A weary customs officer", "personality": "By-the-book but tired", "resistance": 6}
  ]
}`

const turnReply = `{
  "active_npc": {"name": "Officer Vance"},
  "npc_response": "Vance looks up from the ledger. He taps the seal on your manifest. Coin alone will not move me tonight.",
  "outcome_type": "Failure",
  "outcome_summary": "Vance refuses the bribe outright.",
  "npc_resistance_change": 1,
  "npc_relationship_change": -1,
  "next_problem": "Find another way past Officer Vance.",
  "branches": [
    {"title": "Appeal to his fatigue", "description": "He wants to go home."}
  ]
}`

func newTestEngine(t *testing.T) (*Engine, *services.MockLLMAPI, *storage.MemoryStore) {
	t.Helper()
	mock := services.NewMockLLMAPI()
	store := storage.NewMemoryStore()
	exporter := journal.NewExporter(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := New(mock, store, exporter, logger)
	e.transportDelay = time.Millisecond
	e.validationDelay = time.Millisecond
	return e, mock, store
}

func setupTestWorld(t *testing.T, e *Engine, mock *services.MockLLMAPI) *state.GameState {
	t.Helper()
	mock.QueueReply(worldReply)
	gs, err := e.SetupWorld(context.Background(), "a rain-soaked harbor town")
	if err != nil {
		t.Fatalf("SetupWorld failed: %v", err)
	}
	return gs
}

func TestSetupWorld(t *testing.T) {
	e, mock, store := newTestEngine(t)
	mock.QueueReply(worldReply)

	gs, err := e.SetupWorld(context.Background(), "a rain-soaked harbor town")
	if err != nil {
		t.Fatalf("SetupWorld failed: %v", err)
	}

	if gs.WorldSetting != "a rain-soaked harbor town" {
		t.Errorf("Expected setting to be preserved, got %q", gs.WorldSetting)
	}
	if gs.CurrentProblem != "Convince the customs officer to release your cargo." {
		t.Errorf("Unexpected initial problem: %q", gs.CurrentProblem)
	}
	npc, ok := gs.NPCs["Officer Vance"]
	if !ok {
		t.Fatal("Expected Officer Vance in the roster")
	}
	if npc.Resistance != 6 {
		t.Errorf("Expected resistance 6, got %d", npc.Resistance)
	}
	if e.GameState() != gs {
		t.Error("Expected engine to hold the new game state")
	}

	// Setup autosaves the fresh session
	saved, err := store.LoadGameState(context.Background(), gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if saved == nil {
		t.Fatal("Expected autosaved game state")
	}
}

func TestSetupWorld_FencedReply(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	mock.QueueReply("```json\n" + worldReply + "\n```")

	gs, err := e.SetupWorld(context.Background(), "a desert caravanserai")
	if err != nil {
		t.Fatalf("SetupWorld failed on fenced reply: %v", err)
	}
	if gs.OpeningScene == "" {
		t.Error("Expected opening scene from the fenced payload")
	}
}

func TestSetupWorld_UnrecoverableReply(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	mock.QueueReply("The mists part and your story begins...")

	_, err := e.SetupWorld(context.Background(), "a mountain pass")
	if err == nil {
		t.Fatal("Expected error for non-JSON reply")
	}
	if !strings.Contains(err.Error(), "no recoverable JSON object") {
		t.Errorf("Expected decode error to pass through, got: %v", err)
	}
	if e.GameState() != nil {
		t.Error("Expected no game state after failed setup")
	}

	// World generation is not retried on a bad payload
	if calls := len(mock.GetCalls()); calls != 1 {
		t.Errorf("Expected 1 chat call, got %d", calls)
	}
}

func TestSetupWorld_InvalidPayload(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	mock.QueueReply(`{"npcs": [{"name": "Sable"}]}`)

	_, err := e.SetupWorld(context.Background(), "a border crossing")
	if err == nil {
		t.Fatal("Expected error for payload missing opening_scene")
	}
	if !strings.Contains(err.Error(), "model returned invalid world payload") {
		t.Errorf("Expected validation wrap, got: %v", err)
	}
}

func TestPlayTurn(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	gs := setupTestWorld(t, e, mock)
	mock.QueueReply(turnReply)

	result, err := e.PlayTurn(context.Background(), "I slide a purse of silver across the counter.")
	if err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}

	if result.Record.TurnNumber != 1 {
		t.Errorf("Expected turn 1, got %d", result.Record.TurnNumber)
	}
	if result.Record.NPCName != "Officer Vance" {
		t.Errorf("Expected Officer Vance, got %q", result.Record.NPCName)
	}
	if result.Record.OutcomeType != state.OutcomeFailure {
		t.Errorf("Expected Failure outcome, got %q", result.Record.OutcomeType)
	}
	if result.NextProblem != "Find another way past Officer Vance." {
		t.Errorf("Expected problem to advance, got %q", result.NextProblem)
	}
	if result.NPC.Resistance != 7 {
		t.Errorf("Expected resistance to rise to 7, got %d", result.NPC.Resistance)
	}
	if gs.TotalFailures != 1 {
		t.Errorf("Expected 1 failure tallied, got %d", gs.TotalFailures)
	}
	if e.HasRetry() {
		t.Error("Expected no retained retry after a successful turn")
	}
}

func TestPlayTurn_RequiresSetup(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.PlayTurn(context.Background(), "Hello?")
	if err == nil {
		t.Fatal("Expected error before setup")
	}
	if !strings.Contains(err.Error(), "game state is not initialized") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPlayTurn_RejectsEmptyMessage(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)
	mock.Reset()

	_, err := e.PlayTurn(context.Background(), "   ")
	if err == nil {
		t.Fatal("Expected error for blank message")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("Unexpected error: %v", err)
	}

	// Rejected before any model call, and nothing retained to retry
	if calls := len(mock.GetCalls()); calls != 0 {
		t.Errorf("Expected no chat calls, got %d", calls)
	}
	if e.HasRetry() {
		t.Error("Expected no retained retry for an invalid message")
	}
}

func TestPlayTurn_RetriesInvalidReply(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	// First attempt returns prose, second a valid resolution
	mock.QueueReply("Vance waves you off without a word.")
	mock.QueueReply(turnReply)

	result, err := e.PlayTurn(context.Background(), "I ask about his shift.")
	if err != nil {
		t.Fatalf("PlayTurn failed after retry: %v", err)
	}
	if result.Record.NPCName != "Officer Vance" {
		t.Errorf("Expected resolved turn from the retry, got %q", result.Record.NPCName)
	}

	// One world call plus two resolution attempts
	if calls := len(mock.GetCalls()); calls != 3 {
		t.Errorf("Expected 3 chat calls, got %d", calls)
	}
}

func TestPlayTurn_ExhaustsRetries(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)
	mock.Reset()
	mock.SetChatError(errors.New("connection refused"))

	_, err := e.PlayTurn(context.Background(), "I plead my case.")
	if err == nil {
		t.Fatal("Expected error when every attempt fails")
	}
	if !strings.Contains(err.Error(), "model response failed validation") {
		t.Errorf("Expected validation wrap, got: %v", err)
	}
	if !strings.Contains(err.Error(), "LLM request failed") {
		t.Errorf("Expected transport cause in chain, got: %v", err)
	}

	// Each resolution attempt burns its own transport retries
	if calls := len(mock.GetCalls()); calls != maxResolutionAttempts*maxTransportAttempts {
		t.Errorf("Expected %d chat calls, got %d", maxResolutionAttempts*maxTransportAttempts, calls)
	}
	if !e.HasRetry() {
		t.Error("Expected failed message to be retained for retry")
	}
}

func TestPlayTurn_ClampsLongResponse(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	longReply := strings.Replace(turnReply,
		"Vance looks up from the ledger. He taps the seal on your manifest. Coin alone will not move me tonight.",
		"One. Two! Three? Four. Five. Six.", 1)
	mock.QueueReply(longReply)

	result, err := e.PlayTurn(context.Background(), "I keep talking.")
	if err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}
	if result.Record.NPCResponse != "One. Two! Three? Four." {
		t.Errorf("Expected response clamped to four sentences, got %q", result.Record.NPCResponse)
	}
}

func TestPlayTurn_GameOver(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	endingReply := strings.Replace(turnReply,
		`"next_problem": "Find another way past Officer Vance.",`,
		`"next_problem": "", "is_game_over": true, "ending_summary": "The cargo rots on the dock as you sail home empty-handed.",`, 1)
	mock.QueueReply(endingReply)

	result, err := e.PlayTurn(context.Background(), "I give up and turn away.")
	if err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}
	if !result.IsGameOver {
		t.Error("Expected game over")
	}
	if result.EndingSummary == "" {
		t.Error("Expected an ending summary")
	}
}

func TestPlayTurn_SoftensDialogue(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	e.WithContentFilter(textfilter.NewSoftener())
	setupTestWorld(t, e, mock)

	roughReply := strings.Replace(turnReply,
		"Coin alone will not move me tonight.",
		"Your damn coin will not move me tonight.", 1)
	mock.QueueReply(roughReply)

	result, err := e.PlayTurn(context.Background(), "I slide a purse across the desk.")
	if err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}
	if strings.Contains(result.Record.NPCResponse, "damn") {
		t.Errorf("Expected softened response, got %q", result.Record.NPCResponse)
	}
	if !strings.Contains(result.Record.NPCResponse, "dang coin") {
		t.Errorf("Expected softened stand-in, got %q", result.Record.NPCResponse)
	}
}

func TestRetryLastTurn(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	// Fail the turn so the message is retained
	mock.SetChatError(errors.New("gateway timeout"))
	if _, err := e.PlayTurn(context.Background(), "I offer a trade."); err == nil {
		t.Fatal("Expected turn to fail")
	}
	if !e.HasRetry() {
		t.Fatal("Expected retained retry message")
	}

	// A failed retry keeps the message retained
	if _, err := e.RetryLastTurn(context.Background()); err == nil {
		t.Fatal("Expected retry to fail while the backend is down")
	}
	if !e.HasRetry() {
		t.Error("Expected retry message retained after failed retry")
	}

	// A successful retry clears it
	mock.Reset()
	mock.QueueReply(turnReply)
	result, err := e.RetryLastTurn(context.Background())
	if err != nil {
		t.Fatalf("RetryLastTurn failed: %v", err)
	}
	if result.Record.PlayerMessage != "I offer a trade." {
		t.Errorf("Expected the original message to be replayed, got %q", result.Record.PlayerMessage)
	}
	if e.HasRetry() {
		t.Error("Expected retry message cleared after success")
	}
}

func TestRetryLastTurn_NothingRetained(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	_, err := e.RetryLastTurn(context.Background())
	if err == nil {
		t.Fatal("Expected error with nothing to retry")
	}
	if !strings.Contains(err.Error(), "no turn available to retry") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPlayTurn_ClearsStaleRetry(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)

	mock.SetChatError(errors.New("gateway timeout"))
	if _, err := e.PlayTurn(context.Background(), "First message."); err == nil {
		t.Fatal("Expected turn to fail")
	}

	// Typing a fresh message abandons the old retry
	mock.Reset()
	mock.QueueReply(turnReply)
	if _, err := e.PlayTurn(context.Background(), "Second message."); err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}
	if e.HasRetry() {
		t.Error("Expected stale retry cleared by a fresh successful turn")
	}
}

func TestResume(t *testing.T) {
	e, mock, store := newTestEngine(t)
	gs := setupTestWorld(t, e, mock)

	// A second engine sharing the store picks the session back up
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e2 := New(services.NewMockLLMAPI(), store, journal.NewExporter(t.TempDir()), logger)
	resumed, err := e2.Resume(context.Background(), gs.ID)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed == nil {
		t.Fatal("Expected resumed game state")
	}
	if resumed.WorldSetting != gs.WorldSetting {
		t.Errorf("Expected setting %q, got %q", gs.WorldSetting, resumed.WorldSetting)
	}
	if e2.GameState() == nil {
		t.Error("Expected engine to hold the resumed state")
	}
}

func TestResume_UnknownSession(t *testing.T) {
	e, _, _ := newTestEngine(t)

	resumed, err := e.Resume(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed != nil {
		t.Error("Expected clean miss for unknown session")
	}
}

func TestExportJournal(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	setupTestWorld(t, e, mock)
	mock.QueueReply(turnReply)
	if _, err := e.PlayTurn(context.Background(), "I slide a purse of silver across the counter."); err != nil {
		t.Fatalf("PlayTurn failed: %v", err)
	}

	path, err := e.ExportJournal()
	if err != nil {
		t.Fatalf("ExportJournal failed: %v", err)
	}

	j, err := journal.Load(path)
	if err != nil {
		t.Fatalf("Exported journal failed to load: %v", err)
	}
	if len(j.Turns) != 1 {
		t.Errorf("Expected 1 turn in journal, got %d", len(j.Turns))
	}
}

func TestExportJournal_RequiresSetup(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if _, err := e.ExportJournal(); err == nil {
		t.Fatal("Expected error before setup")
	}
}

func TestComplete_RetriesTransportErrors(t *testing.T) {
	e, mock, _ := newTestEngine(t)

	// Two failures then a success
	calls := 0
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "steady now", nil
	}

	content, err := e.complete(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if content != "steady now" {
		t.Errorf("Unexpected content: %q", content)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestComplete_CancelledContext(t *testing.T) {
	e, mock, _ := newTestEngine(t)
	mock.SetChatError(errors.New("connection reset"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.complete(ctx, []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("Expected error with cancelled context")
	}

	// No retries once the context is gone
	if calls := len(mock.GetCalls()); calls != 1 {
		t.Errorf("Expected 1 chat call, got %d", calls)
	}
}
