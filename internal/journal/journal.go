// Package journal exports a finished or in-progress session to a
// timestamped JSON file a player can keep, and reads those files back
// for validation.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/parley-engine/pkg/state"
)

// NPCEntry is the journal's snapshot of one NPC's final counters.
type NPCEntry struct {
	Description  string `json:"description"`
	Personality  string `json:"personality"`
	Resistance   int    `json:"resistance"`
	Relationship int    `json:"relationship"`
}

// Journal is the exported session document.
type Journal struct {
	WorldSetting   string              `json:"world_setting"`
	OpeningScene   string              `json:"opening_scene"`
	CurrentProblem string              `json:"current_problem"`
	TotalSuccesses int                 `json:"total_successes"`
	TotalFailures  int                 `json:"total_failures"`
	Turns          []state.TurnRecord  `json:"turns"`
	NPCs           map[string]NPCEntry `json:"npcs"`
}

// FromState builds the journal document for a session.
func FromState(gs *state.GameState) *Journal {
	npcs := make(map[string]NPCEntry, len(gs.NPCs))
	for name, npc := range gs.NPCs {
		npcs[name] = NPCEntry{
			Description:  npc.Description,
			Personality:  npc.Personality,
			Resistance:   npc.Resistance,
			Relationship: npc.Relationship,
		}
	}
	turns := gs.TurnHistory
	if turns == nil {
		turns = []state.TurnRecord{}
	}
	return &Journal{
		WorldSetting:   gs.WorldSetting,
		OpeningScene:   gs.OpeningScene,
		CurrentProblem: gs.CurrentProblem,
		TotalSuccesses: gs.TotalSuccesses,
		TotalFailures:  gs.TotalFailures,
		Turns:          turns,
		NPCs:           npcs,
	}
}

// Validate checks the structural rules a well-formed journal obeys.
func (j *Journal) Validate() error {
	if strings.TrimSpace(j.WorldSetting) == "" {
		return fmt.Errorf("world_setting is required")
	}
	if strings.TrimSpace(j.OpeningScene) == "" {
		return fmt.Errorf("opening_scene is required")
	}
	for i, record := range j.Turns {
		if record.TurnNumber != i+1 {
			return fmt.Errorf("turns[%d]: turn_number %d out of sequence (want %d)", i, record.TurnNumber, i+1)
		}
		if strings.TrimSpace(record.NPCName) == "" {
			return fmt.Errorf("turns[%d]: npc_name is required", i)
		}
		switch record.OutcomeType {
		case state.OutcomeSuccess, state.OutcomeFailure, state.OutcomeAlternative:
		default:
			return fmt.Errorf("turns[%d]: unknown outcome_type %q", i, record.OutcomeType)
		}
	}
	for name, npc := range j.NPCs {
		if npc.Resistance < 0 {
			return fmt.Errorf("npc %q: resistance cannot be negative", name)
		}
	}
	return nil
}

// Exporter writes journals into Dir, creating it as needed.
type Exporter struct {
	Dir string
}

// NewExporter creates an exporter for the given directory.
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "journals"
	}
	return &Exporter{Dir: dir}
}

// Export writes the session to journal_<UTC timestamp>.json and
// returns the written path.
func (e *Exporter) Export(gs *state.GameState) (string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(FromState(gs), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal journal: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102T150405") + "Z"
	path := filepath.Join(e.Dir, "journal_"+timestamp+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write journal: %w", err)
	}

	return path, nil
}

// Load reads and validates a journal file.
func Load(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal: %w", err)
	}

	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal: %w", err)
	}

	return &j, nil
}

// List returns the journal files in dir sorted by name, which is
// timestamp order given the export naming scheme. A missing directory
// is an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "journal_") || filepath.Ext(name) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
