// Package textfilter softens NPC dialogue for family-friendly play.
// Models hold their register most of the time, but a heated persuasion
// scene can push them into language a G-rated table doesn't want.
package textfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements pairs each word with its softened stand-in. Order
// matters only for readability; the patterns are word-bounded so
// compounds never match their parts.
var replacements = []struct {
	word string
	soft string
}{
	{"fuck", "fudge"},
	{"motherfucker", "mother-trucker"},
	{"shit", "shoot"},
	{"bullshit", "baloney"},
	{"horseshit", "nonsense"},
	{"shithead", "jerk"},
	{"damn", "dang"},
	{"goddamn", "gosh-dang"},
	{"hell", "heck"},
	{"ass", "butt"},
	{"asshole", "jerk"},
	{"dumbass", "dummy"},
	{"jackass", "jerk"},
	{"bitch", "jerk"},
	{"bastard", "scoundrel"},
	{"crap", "crud"},
	{"piss", "tick"},
	{"prick", "jerk"},
	{"dick", "jerk"},
	{"dickhead", "jerk"},
	{"whore", "scoundrel"},
	{"slut", "scoundrel"},
}

type rule struct {
	word    string
	pattern *regexp.Regexp
	soft    string
}

// Softener replaces rough language in narrative text with softened
// stand-ins, preserving case and simple plurals.
type Softener struct {
	rules []rule
}

// NewSoftener compiles the replacement rules.
func NewSoftener() *Softener {
	s := &Softener{rules: make([]rule, 0, len(replacements))}
	for _, r := range replacements {
		// Word-bounded with an optional plural s, so "hells" softens
		// but "classical" survives.
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.word) + `s?\b`)
		s.rules = append(s.rules, rule{word: r.word, pattern: pattern, soft: r.soft})
	}
	return s
}

// Soften replaces each matched word with its stand-in.
func (s *Softener) Soften(text string) string {
	result := text
	for _, r := range s.rules {
		result = r.pattern.ReplaceAllStringFunc(result, func(match string) string {
			soft := r.soft
			if len(match) > len(r.word) {
				soft += "s"
			}
			return matchCase(match, soft)
		})
	}
	return result
}

// NeedsSoftening reports whether the text contains any replaceable
// word.
func (s *Softener) NeedsSoftening(text string) bool {
	for _, r := range s.rules {
		if r.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Enabled reports whether the content rating calls for softened
// dialogue.
func Enabled(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// matchCase applies the case pattern of the matched word to its
// stand-in.
func matchCase(match, soft string) string {
	if len(match) > 1 && match == strings.ToUpper(match) {
		return strings.ToUpper(soft)
	}
	caser := cases.Title(language.English)
	if match == caser.String(strings.ToLower(match)) {
		return caser.String(soft)
	}
	return soft
}
