package state

import (
	"fmt"
	"log/slog"
	"time"
)

// MaxBranches is the cap on narrative branches carried between turns.
const MaxBranches = 3

// DeltaWorker applies a validated turn resolution to game state,
// clamping the model's proposed counter changes by outcome category.
type DeltaWorker struct {
	gs     *GameState
	logger *slog.Logger
}

// NewDeltaWorker creates a worker bound to the given game state.
func NewDeltaWorker(gs *GameState) *DeltaWorker {
	return &DeltaWorker{gs: gs}
}

// WithLogger sets the logger for clamp diagnostics.
// Returns the DeltaWorker for method chaining.
func (dw *DeltaWorker) WithLogger(logger *slog.Logger) *DeltaWorker {
	dw.logger = logger
	return dw
}

// Apply resolves one turn against the game state: ensure the active
// NPC, clamp and apply the counter deltas, record the turn against the
// pre-advance dilemma, then advance the current problem. The returned
// record carries the shifts actually applied; the returned NPC is the
// post-adjustment roster entry.
func (dw *DeltaWorker) Apply(resolution *TurnResolution, playerMessage string) (TurnRecord, NPC, error) {
	if resolution == nil {
		return TurnRecord{}, NPC{}, fmt.Errorf("resolution is required")
	}
	if dw.gs.NPCs == nil {
		dw.gs.NPCs = make(NPCMap)
	}
	npc := dw.gs.NPCs.Ensure(resolution.ActiveNPC)

	prevResistance := npc.Resistance
	prevRelationship := npc.Relationship

	outcome := resolution.NormalizedOutcome()
	resistanceDelta, relationshipDelta := normalizeDeltas(outcome,
		resolution.ResistanceChange, resolution.RelationshipChange)
	if dw.logger != nil &&
		(resistanceDelta != resolution.ResistanceChange || relationshipDelta != resolution.RelationshipChange) {
		dw.logger.Warn("Clamped model deltas",
			"npc", npc.Name,
			"outcome", outcome,
			"proposed_resistance_change", resolution.ResistanceChange,
			"applied_resistance_change", resistanceDelta,
			"proposed_relationship_change", resolution.RelationshipChange,
			"applied_relationship_change", relationshipDelta)
	}

	npc.Adjust(resistanceDelta, relationshipDelta)
	dw.gs.NPCs[npc.Name] = npc // write back

	branches := resolution.Branches
	if len(branches) > MaxBranches {
		branches = branches[:MaxBranches]
	}

	record := dw.gs.RecordTurn(TurnRecord{
		NPCName:           npc.Name,
		Dilemma:           dw.gs.CurrentProblem,
		PlayerMessage:     playerMessage,
		NPCResponse:       resolution.NPCResponse,
		OutcomeType:       outcome,
		OutcomeSummary:    resolution.OutcomeSummary,
		ResistanceShift:   npc.Resistance - prevResistance,
		RelationshipShift: npc.Relationship - prevRelationship,
		Branches:          branches,
	})

	if resolution.NextProblem != "" {
		dw.gs.CurrentProblem = resolution.NextProblem
	}
	dw.gs.UpdatedAt = time.Now().UTC()

	return record, npc, nil
}
