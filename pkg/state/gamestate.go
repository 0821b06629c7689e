package state

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TurnRecord is the immutable log entry for one resolved turn. Shifts
// are the changes actually applied after clamping, not the model's
// proposals.
type TurnRecord struct {
	TurnNumber        int      `json:"turn_number"`
	NPCName           string   `json:"npc_name"`
	Dilemma           string   `json:"dilemma"` // the problem this turn was played against
	PlayerMessage     string   `json:"player_message"`
	NPCResponse       string   `json:"npc_response"`
	OutcomeType       string   `json:"outcome_type"`
	OutcomeSummary    string   `json:"outcome_summary"`
	ResistanceShift   int      `json:"resistance_shift"`
	RelationshipShift int      `json:"relationship_shift"`
	Branches          []Branch `json:"branches,omitempty"`
}

// GameState is the full state of one persuasion adventure session.
type GameState struct {
	ID              uuid.UUID    `json:"id"` // Unique ID per session
	WorldSetting    string       `json:"world_setting"`
	OpeningScene    string       `json:"opening_scene"`
	CurrentProblem  string       `json:"current_problem"`
	NPCs            NPCMap       `json:"npcs"`
	TurnHistory     []TurnRecord `json:"turn_history,omitempty"`
	TotalSuccesses  int          `json:"total_successes"`
	TotalFailures   int          `json:"total_failures"`
	PendingBranches []Branch     `json:"pending_branches,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewGameState builds a session from the player's setting and a
// validated world setup.
func NewGameState(setting string, setup *WorldSetup) *GameState {
	npcs := make(NPCMap, len(setup.NPCs))
	for _, seed := range setup.NPCs {
		npc := seed.ToNPC()
		npcs[npc.Name] = npc
	}
	problem := strings.TrimSpace(setup.InitialProblem)
	if problem == "" {
		problem = DefaultInitialProblem
	}
	now := time.Now().UTC()
	return &GameState{
		ID:             uuid.New(),
		WorldSetting:   setting,
		OpeningScene:   setup.OpeningScene,
		CurrentProblem: problem,
		NPCs:           npcs,
		TurnHistory:    make([]TurnRecord, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordTurn appends the record to history, assigning its 1-based turn
// number, and rolls the outcome tallies and pending branches forward.
func (gs *GameState) RecordTurn(record TurnRecord) TurnRecord {
	record.TurnNumber = len(gs.TurnHistory) + 1
	gs.TurnHistory = append(gs.TurnHistory, record)
	switch strings.ToLower(record.OutcomeType) {
	case "success":
		gs.TotalSuccesses++
	case "failure":
		gs.TotalFailures++
	}
	gs.PendingBranches = record.Branches
	return record
}

// NPCSummary returns the roster rows shared with the model each turn,
// sorted by name so prompt payloads stay deterministic.
func (gs *GameState) NPCSummary() []NPCSummaryEntry {
	names := make([]string, 0, len(gs.NPCs))
	for name := range gs.NPCs {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := make([]NPCSummaryEntry, 0, len(names))
	for _, name := range names {
		npc := gs.NPCs[name]
		summary = append(summary, NPCSummaryEntry{
			Name:         npc.Name,
			Personality:  npc.Personality,
			Resistance:   strconv.Itoa(npc.Resistance),
			Relationship: strconv.Itoa(npc.Relationship),
		})
	}
	return summary
}

// RecentHistory returns the most recent limit turn records.
func (gs *GameState) RecentHistory(limit int) []TurnRecord {
	if limit <= 0 || len(gs.TurnHistory) == 0 {
		return nil
	}
	if len(gs.TurnHistory) <= limit {
		return gs.TurnHistory
	}
	return gs.TurnHistory[len(gs.TurnHistory)-limit:]
}

// NarrativeContext splits history into a compressed summary of older
// turns and the last recentLimit full records. Older turns are reduced
// to one clause each so long sessions stay inside the prompt budget.
func (gs *GameState) NarrativeContext(recentLimit int) (string, []TurnRecord) {
	recent := gs.RecentHistory(recentLimit)

	older := gs.TurnHistory
	if recentLimit > 0 {
		if len(gs.TurnHistory) <= recentLimit {
			older = nil
		} else {
			older = gs.TurnHistory[:len(gs.TurnHistory)-recentLimit]
		}
	}
	if len(older) == 0 {
		return "", recent
	}

	snippets := make([]string, 0, len(older))
	for _, record := range older {
		snippets = append(snippets, fmt.Sprintf("Turn %d: %s -> %s; %s",
			record.TurnNumber, record.NPCName, record.OutcomeType,
			truncate(record.OutcomeSummary, 80)))
	}
	return strings.Join(snippets, " | "), recent
}

// LastActiveNPC returns the NPC name from the most recent turn, or an
// empty string before the first turn.
func (gs *GameState) LastActiveNPC() string {
	if len(gs.TurnHistory) == 0 {
		return ""
	}
	return gs.TurnHistory[len(gs.TurnHistory)-1].NPCName
}

// ConsecutiveNPCStreak returns the name from the most recent turn and
// how many consecutive trailing turns it has held the stage.
func (gs *GameState) ConsecutiveNPCStreak() (string, int) {
	if len(gs.TurnHistory) == 0 {
		return "", 0
	}
	last := gs.TurnHistory[len(gs.TurnHistory)-1].NPCName
	count := 0
	for i := len(gs.TurnHistory) - 1; i >= 0; i-- {
		if gs.TurnHistory[i].NPCName != last {
			break
		}
		count++
	}
	return last, count
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
