// Package command interprets console input, separating game commands
// from free-form dialogue aimed at NPCs.
package command

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind classifies a parsed line of player input.
type Kind int

const (
	Dialogue   Kind = iota // free text spoken to NPCs
	Command                // an exact command match
	Suggestion             // a near miss; confirm before acting
	Unknown                // a slash command that matched nothing
)

// Def describes one console command and the words that trigger it.
type Def struct {
	Canonical string
	Aliases   []string
	SlashOnly bool // reachable only with a leading slash
	Help      string
}

// Result is the outcome of parsing one input line.
type Result struct {
	Kind     Kind
	Command  string // canonical name when Kind is Command or Suggestion
	Dialogue string // trimmed input when Kind is Dialogue
}

// Registry resolves input words to commands.
type Registry struct {
	defs    map[string]Def
	phrases map[string]string // alias or canonical word -> canonical
}

func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]Def),
		phrases: make(map[string]string),
	}
}

func (r *Registry) Register(def Def) {
	canonical := strings.ToLower(strings.TrimSpace(def.Canonical))
	if canonical == "" {
		return
	}
	def.Canonical = canonical
	r.defs[canonical] = def
	r.phrases[canonical] = canonical
	for _, alias := range def.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a != "" {
			r.phrases[a] = canonical
		}
	}
}

// Commands returns the registered definitions sorted by canonical name.
func (r *Registry) Commands() []Def {
	out := make([]Def, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// Parse classifies one line of input. Bare words only ever execute on
// an exact match; a close misspelling comes back as a Suggestion so
// the player can confirm, and anything with multiple words is treated
// as dialogue.
func (r *Registry) Parse(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Kind: Dialogue}
	}

	if strings.HasPrefix(trimmed, "/") {
		word := strings.ToLower(strings.TrimPrefix(trimmed, "/"))
		if canonical, ok := r.phrases[word]; ok {
			return Result{Kind: Command, Command: canonical}
		}
		if best, ok := r.nearest(word); ok {
			return Result{Kind: Suggestion, Command: best}
		}
		return Result{Kind: Unknown}
	}

	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) == 1 {
		word := fields[0]
		if canonical, ok := r.phrases[word]; ok && !r.defs[canonical].SlashOnly {
			return Result{Kind: Command, Command: canonical}
		}
		if best, ok := r.nearest(word); ok {
			return Result{Kind: Suggestion, Command: best}
		}
	}

	return Result{Kind: Dialogue, Dialogue: trimmed}
}

// nearest finds the closest registered word within the edit-distance
// limit. Very short inputs are never fuzzed; they are too cheap to
// mistype and too likely to be dialogue.
func (r *Registry) nearest(word string) (string, bool) {
	if len(word) < 3 {
		return "", false
	}
	bestCanonical := ""
	bestDist := -1
	for alias, canonical := range r.phrases {
		dist := levenshtein.ComputeDistance(word, alias)
		if dist > levenshteinLimit(len(alias)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && canonical < bestCanonical) {
			bestCanonical = canonical
			bestDist = dist
		}
	}
	if bestDist < 0 {
		return "", false
	}
	return bestCanonical, true
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// DefaultRegistry returns the console's built-in commands.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []Def{
		{Canonical: "quit", Aliases: []string{"exit"}, Help: "End the session."},
		{Canonical: "log", Aliases: []string{"journal"}, Help: "Write the session journal to disk."},
		{Canonical: "retry", Help: "Replay the last failed turn."},
		{Canonical: "help", Aliases: []string{"?", "commands"}, Help: "Show this command list."},
		{Canonical: "copy", SlashOnly: true, Help: "Copy the transcript to the clipboard."},
		{Canonical: "journals", SlashOnly: true, Help: "List saved journal files."},
	}
	for _, cmd := range commands {
		r.Register(cmd)
	}
	return r
}
