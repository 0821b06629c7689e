package state

// NPC is a non-player character the player is trying to win over.
type NPC struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"` // short description or backstory
	Personality  string `json:"personality,omitempty"` // e.g. "proud", "wary", "easily flattered"
	Resistance   int    `json:"resistance"`            // how hard the NPC currently is to persuade
	Relationship int    `json:"relationship"`          // accumulated goodwill, may go negative
}

// Adjust applies counter deltas to the NPC. Resistance floors at zero;
// relationship is unbounded in both directions.
func (n *NPC) Adjust(resistanceDelta, relationshipDelta int) {
	n.Resistance += resistanceDelta
	if n.Resistance < 0 {
		n.Resistance = 0
	}
	n.Relationship += relationshipDelta
}

// NPCMap holds the NPC roster keyed by exact name.
type NPCMap map[string]NPC

// Ensure returns the NPC for the seed's name, creating it from the seed
// when the roster doesn't have it yet. Counters on the seed are only
// used for new NPCs; for known NPCs the engine applies deltas instead.
func (m NPCMap) Ensure(seed NPCSeed) NPC {
	if npc, ok := m[seed.Name]; ok {
		return npc
	}
	npc := seed.ToNPC()
	m[npc.Name] = npc
	return npc
}

// NPCSummaryEntry is one compact roster row shared with the model each
// turn. Counter values are rendered as strings for the prompt payload.
type NPCSummaryEntry struct {
	Name         string `json:"name"`
	Personality  string `json:"personality"`
	Resistance   string `json:"resistance"`
	Relationship string `json:"relationship"`
}
