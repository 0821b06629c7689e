package prompts

import (
	"github.com/jwebster45206/parley-engine/pkg/state"
)

// RecentTurnWindow is how many full turns ride along in each prompt.
// Older turns are compressed into the history summary.
const RecentTurnWindow = 3

// TurnDigest is one turn of history condensed for the model.
type TurnDigest struct {
	Turn              int            `json:"turn"`
	NPC               string         `json:"npc"`
	Dilemma           string         `json:"dilemma"`
	PlayerMessage     string         `json:"player_message"`
	NPCResponse       string         `json:"npc_response"`
	Outcome           string         `json:"outcome"`
	OutcomeSummary    string         `json:"outcome_summary"`
	ResistanceShift   int            `json:"resistance_shift"`
	RelationshipShift int            `json:"relationship_shift"`
	Branches          []state.Branch `json:"branches"`
}

// PromptState is the reduced game state serialized into the turn
// prompt. It carries only what the model needs to resolve a turn;
// internal bookkeeping like the session ID and timestamps stays out.
type PromptState struct {
	WorldSetting      string                  `json:"world_setting"`
	OpeningScene      string                  `json:"opening_scene"`
	CurrentProblem    string                  `json:"current_problem"`
	NPCSummary        []state.NPCSummaryEntry `json:"npc_summary"`
	RecentHistory     []TurnDigest            `json:"recent_history"`
	HistorySummary    string                  `json:"history_summary"`
	PlayerMessage     string                  `json:"player_message"`
	AvailableBranches []state.Branch          `json:"available_branches"`
	LastActiveNPC     string                  `json:"last_active_npc"`
	NPCStreak         int                     `json:"npc_streak"`
}

// ToPromptState reduces a game state and the pending player message to
// the turn prompt payload. The last recentLimit turns are included in
// full; everything older arrives as the one-line-per-turn summary.
func ToPromptState(gs *state.GameState, playerMessage string, recentLimit int) *PromptState {
	summary, recent := gs.NarrativeContext(recentLimit)
	lastNPC, streak := gs.ConsecutiveNPCStreak()

	digests := make([]TurnDigest, 0, len(recent))
	for _, record := range recent {
		digests = append(digests, TurnDigest{
			Turn:              record.TurnNumber,
			NPC:               record.NPCName,
			Dilemma:           record.Dilemma,
			PlayerMessage:     record.PlayerMessage,
			NPCResponse:       record.NPCResponse,
			Outcome:           record.OutcomeType,
			OutcomeSummary:    record.OutcomeSummary,
			ResistanceShift:   record.ResistanceShift,
			RelationshipShift: record.RelationshipShift,
			Branches:          record.Branches,
		})
	}

	branches := gs.PendingBranches
	if branches == nil {
		branches = []state.Branch{}
	}

	return &PromptState{
		WorldSetting:      gs.WorldSetting,
		OpeningScene:      gs.OpeningScene,
		CurrentProblem:    gs.CurrentProblem,
		NPCSummary:        gs.NPCSummary(),
		RecentHistory:     digests,
		HistorySummary:    summary,
		PlayerMessage:     playerMessage,
		AvailableBranches: branches,
		LastActiveNPC:     lastNPC,
		NPCStreak:         streak,
	}
}
