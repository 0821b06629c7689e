package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/parley-engine/pkg/state"
)

const (
	minResponseSentences = 3
	maxResponseSentences = 4
)

// sentenceBoundary marks the gap after terminal punctuation. RE2 has
// no lookbehind, so the terminator is captured and restored during
// the split.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// splitSentences breaks prose on sentence-ending punctuation followed
// by whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	marked := sentenceBoundary.ReplaceAllString(trimmed, "$1\x1f")
	parts := strings.Split(marked, "\x1f")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// enforceConstraints applies the narrative rules a schema check can't
// express: the NPC reply is clamped to four sentences and rejected
// under three, and branch suggestions are deduplicated and capped.
// The resolution is modified in place.
func enforceConstraints(resolution *state.TurnResolution) error {
	sentences := splitSentences(resolution.NPCResponse)
	if len(sentences) > maxResponseSentences {
		resolution.NPCResponse = strings.Join(sentences[:maxResponseSentences], " ")
	} else if len(sentences) < minResponseSentences {
		return fmt.Errorf("NPC response too short; expected %d-%d sentences", minResponseSentences, maxResponseSentences)
	}

	seen := make(map[string]bool)
	branches := make([]state.Branch, 0, len(resolution.Branches))
	for _, branch := range resolution.Branches {
		key := strings.ToLower(strings.TrimSpace(branch.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		branches = append(branches, branch)
		if len(branches) == state.MaxBranches {
			break
		}
	}
	if len(branches) == 0 {
		return fmt.Errorf("no viable branches returned by model")
	}
	resolution.Branches = branches

	return nil
}
