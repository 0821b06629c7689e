package state

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewGameState(t *testing.T) {
	setup := &WorldSetup{
		OpeningScene:   "Rain hammers the tin roofs of the smuggler port.",
		InitialProblem: "Convince the harbor master to open the gates.",
		NPCs: []NPCSeed{
			{Name: "Mira", Personality: "stern"},
			{Name: "Tobias", Personality: "greedy"},
		},
	}

	gs := NewGameState("a smuggler port at night", setup)

	if gs.ID == uuid.Nil {
		t.Error("Expected a session ID to be assigned")
	}
	if gs.WorldSetting != "a smuggler port at night" {
		t.Errorf("Expected world setting to be kept, got %q", gs.WorldSetting)
	}
	if gs.CurrentProblem != setup.InitialProblem {
		t.Errorf("Expected current problem %q, got %q", setup.InitialProblem, gs.CurrentProblem)
	}
	if len(gs.NPCs) != 2 {
		t.Errorf("Expected 2 NPCs, got %d", len(gs.NPCs))
	}
	if gs.NPCs["Mira"].Resistance != DefaultResistance {
		t.Errorf("Expected default resistance %d, got %d", DefaultResistance, gs.NPCs["Mira"].Resistance)
	}
	if gs.CreatedAt.IsZero() || gs.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewGameState_DefaultProblem(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})
	if gs.CurrentProblem != DefaultInitialProblem {
		t.Errorf("Expected default problem %q, got %q", DefaultInitialProblem, gs.CurrentProblem)
	}
}

func TestGameState_RecordTurn(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})

	first := gs.RecordTurn(TurnRecord{
		NPCName:     "Mira",
		OutcomeType: OutcomeSuccess,
		Branches:    []Branch{{Title: "Press on"}},
	})
	if first.TurnNumber != 1 {
		t.Errorf("Expected turn number 1, got %d", first.TurnNumber)
	}

	second := gs.RecordTurn(TurnRecord{
		NPCName:     "Tobias",
		OutcomeType: OutcomeFailure,
		Branches:    []Branch{{Title: "Retreat"}, {Title: "Bribe"}},
	})
	if second.TurnNumber != 2 {
		t.Errorf("Expected turn number 2, got %d", second.TurnNumber)
	}

	gs.RecordTurn(TurnRecord{NPCName: "Mira", OutcomeType: OutcomeAlternative})

	if gs.TotalSuccesses != 1 {
		t.Errorf("Expected 1 success, got %d", gs.TotalSuccesses)
	}
	if gs.TotalFailures != 1 {
		t.Errorf("Expected 1 failure, got %d", gs.TotalFailures)
	}
	if len(gs.TurnHistory) != 3 {
		t.Errorf("Expected 3 records, got %d", len(gs.TurnHistory))
	}
	if len(gs.PendingBranches) != 0 {
		t.Errorf("Expected pending branches to track the last turn, got %d", len(gs.PendingBranches))
	}
}

func TestGameState_RecentHistory(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})
	for i := 0; i < 7; i++ {
		gs.RecordTurn(TurnRecord{NPCName: "Mira", OutcomeType: OutcomeAlternative})
	}

	recent := gs.RecentHistory(5)
	if len(recent) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(recent))
	}
	if recent[0].TurnNumber != 3 {
		t.Errorf("Expected window to start at turn 3, got %d", recent[0].TurnNumber)
	}
	if recent[4].TurnNumber != 7 {
		t.Errorf("Expected window to end at turn 7, got %d", recent[4].TurnNumber)
	}

	if got := gs.RecentHistory(20); len(got) != 7 {
		t.Errorf("Expected whole history when limit exceeds it, got %d", len(got))
	}
}

func TestGameState_NarrativeContext(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})

	summary, recent := gs.NarrativeContext(3)
	if summary != "" || len(recent) != 0 {
		t.Errorf("Expected empty context before the first turn, got %q and %d records", summary, len(recent))
	}

	outcomes := []string{OutcomeSuccess, OutcomeFailure, OutcomeAlternative, OutcomeSuccess, OutcomeSuccess}
	for i, outcome := range outcomes {
		gs.RecordTurn(TurnRecord{
			NPCName:        "Mira",
			OutcomeType:    outcome,
			OutcomeSummary: fmt.Sprintf("beat %d", i+1),
		})
	}

	summary, recent = gs.NarrativeContext(3)
	if len(recent) != 3 {
		t.Fatalf("Expected 3 recent records, got %d", len(recent))
	}
	if recent[0].TurnNumber != 3 {
		t.Errorf("Expected recent window to start at turn 3, got %d", recent[0].TurnNumber)
	}

	want := "Turn 1: Mira -> Success; beat 1 | Turn 2: Mira -> Failure; beat 2"
	if summary != want {
		t.Errorf("Expected summary %q, got %q", want, summary)
	}
}

func TestGameState_NarrativeContext_TruncatesLongSummaries(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})
	long := strings.Repeat("x", 120)
	gs.RecordTurn(TurnRecord{NPCName: "Mira", OutcomeType: OutcomeFailure, OutcomeSummary: long})
	gs.RecordTurn(TurnRecord{NPCName: "Mira", OutcomeType: OutcomeSuccess})

	summary, _ := gs.NarrativeContext(1)
	want := "Turn 1: Mira -> Failure; " + strings.Repeat("x", 80)
	if summary != want {
		t.Errorf("Expected truncated summary %q, got %q", want, summary)
	}
}

func TestGameState_ConsecutiveNPCStreak(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{OpeningScene: "A scene."})

	if name, count := gs.ConsecutiveNPCStreak(); name != "" || count != 0 {
		t.Errorf("Expected no streak before the first turn, got %q/%d", name, count)
	}
	if gs.LastActiveNPC() != "" {
		t.Errorf("Expected no last NPC before the first turn, got %q", gs.LastActiveNPC())
	}

	for _, npc := range []string{"Mira", "Tobias", "Mira", "Mira"} {
		gs.RecordTurn(TurnRecord{NPCName: npc, OutcomeType: OutcomeAlternative})
	}

	name, count := gs.ConsecutiveNPCStreak()
	if name != "Mira" || count != 2 {
		t.Errorf("Expected streak Mira/2, got %s/%d", name, count)
	}
	if gs.LastActiveNPC() != "Mira" {
		t.Errorf("Expected last NPC Mira, got %q", gs.LastActiveNPC())
	}
}

func TestGameState_NPCSummary(t *testing.T) {
	gs := NewGameState("setting", &WorldSetup{
		OpeningScene: "A scene.",
		NPCs: []NPCSeed{
			{Name: "Tobias", Personality: "greedy"},
			{Name: "Mira", Personality: "stern"},
		},
	})

	summary := gs.NPCSummary()
	if len(summary) != 2 {
		t.Fatalf("Expected 2 summary rows, got %d", len(summary))
	}
	if summary[0].Name != "Mira" || summary[1].Name != "Tobias" {
		t.Errorf("Expected rows sorted by name, got %s then %s", summary[0].Name, summary[1].Name)
	}
	if summary[0].Resistance != "5" {
		t.Errorf("Expected stringified resistance \"5\", got %q", summary[0].Resistance)
	}
}
