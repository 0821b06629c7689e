package state

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outcome categories the model may assign to a turn. Anything the
// model invents outside this set is treated as Alternative.
const (
	OutcomeSuccess     = "Success"
	OutcomeFailure     = "Failure"
	OutcomeAlternative = "Alternative"
)

// DefaultResistance seeds new NPCs when the model omits a value.
const DefaultResistance = 5

// DefaultInitialProblem seeds the first dilemma when the model omits one.
const DefaultInitialProblem = "Convince someone to listen."

// NormalizeOutcome maps a raw outcome string onto a known category.
func NormalizeOutcome(outcome string) string {
	key := strings.ToLower(strings.TrimSpace(outcome))
	switch key {
	case "success", "failure", "alternative":
		return cases.Title(language.English).String(key)
	default:
		return OutcomeAlternative
	}
}

// NPCSeed is the wire form of an NPC as the model proposes it. Pointer
// counters distinguish an absent field from an explicit zero.
type NPCSeed struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Personality  string `json:"personality,omitempty"`
	Resistance   *int   `json:"resistance,omitempty"`
	Relationship *int   `json:"relationship,omitempty"`
}

func (s *NPCSeed) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("npc name is required")
	}
	if s.Resistance != nil && *s.Resistance < 0 {
		return fmt.Errorf("npc %q resistance cannot be negative", s.Name)
	}
	return nil
}

// ToNPC materializes the seed, filling in default counters.
func (s NPCSeed) ToNPC() NPC {
	resistance := DefaultResistance
	if s.Resistance != nil {
		resistance = *s.Resistance
	}
	relationship := 0
	if s.Relationship != nil {
		relationship = *s.Relationship
	}
	return NPC{
		Name:         s.Name,
		Description:  s.Description,
		Personality:  s.Personality,
		Resistance:   resistance,
		Relationship: relationship,
	}
}

// WorldSetup is the model's answer to the world generation prompt.
type WorldSetup struct {
	OpeningScene   string    `json:"opening_scene"`
	InitialProblem string    `json:"initial_problem,omitempty"`
	NPCs           []NPCSeed `json:"npcs,omitempty"`
}

func (w *WorldSetup) Validate() error {
	if strings.TrimSpace(w.OpeningScene) == "" {
		return fmt.Errorf("opening_scene is required")
	}
	for i := range w.NPCs {
		if err := w.NPCs[i].Validate(); err != nil {
			return fmt.Errorf("npcs[%d]: %w", i, err)
		}
	}
	return nil
}

// Branch is one narrative path the model offers for the next turn.
type Branch struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TurnResolution is the model's answer to the turn prompt. Counter
// changes are proposals; the DeltaWorker clamps them by outcome before
// they touch game state.
type TurnResolution struct {
	ActiveNPC          NPCSeed  `json:"active_npc"`
	NPCResponse        string   `json:"npc_response"`
	OutcomeType        string   `json:"outcome_type"`
	OutcomeSummary     string   `json:"outcome_summary"`
	ResistanceChange   int      `json:"npc_resistance_change"`
	RelationshipChange int      `json:"npc_relationship_change"`
	NextProblem        string   `json:"next_problem"`
	Branches           []Branch `json:"branches,omitempty"`
	IsGameOver         bool     `json:"is_game_over,omitempty"`
	EndingSummary      string   `json:"ending_summary,omitempty"`
}

// Validate checks the fields a turn cannot proceed without. An empty
// next_problem is tolerated; the current dilemma carries over.
func (tr *TurnResolution) Validate() error {
	if err := tr.ActiveNPC.Validate(); err != nil {
		return fmt.Errorf("active_npc: %w", err)
	}
	if strings.TrimSpace(tr.NPCResponse) == "" {
		return fmt.Errorf("npc_response is required")
	}
	if strings.TrimSpace(tr.OutcomeType) == "" {
		return fmt.Errorf("outcome_type is required")
	}
	return nil
}

// NormalizedOutcome returns the resolution's outcome mapped onto a
// known category.
func (tr *TurnResolution) NormalizedOutcome() string {
	return NormalizeOutcome(tr.OutcomeType)
}
