// Package jsontext recovers JSON payloads from free-form model output.
// Models asked for strict JSON still wrap it in code fences, lead with
// prose, or append commentary; these helpers dig the object back out.
package jsontext

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// objectPattern is the last-resort recovery: the widest brace span.
var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// StripFences removes a wrapping markdown code fence, including any
// language tag on the opening fence line. Text that is not fully
// fenced is returned trimmed but otherwise untouched.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractObject scans text for the first balanced top-level JSON object
// that actually parses, tracking brace depth so nested objects stay
// intact. A broken candidate does not stop the scan; later balanced
// spans are still tried. When no candidate parses, the widest brace
// span is returned as a last resort so the caller gets a parse error
// instead of a silent miss.
func ExtractObject(text string) (string, bool) {
	depth := 0
	start := -1
	for i, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
			}
		}
	}

	if match := objectPattern.FindString(text); match != "" {
		return match, true
	}
	return "", false
}

// DecodeObject decodes a JSON object from raw model text into v,
// stripping code fences and recovering an embedded object when the
// text as a whole does not parse.
func DecodeObject(text string, v any) error {
	cleaned := StripFences(text)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	candidate, ok := ExtractObject(cleaned)
	if !ok {
		return fmt.Errorf("no recoverable JSON object in model output")
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("recovered JSON object does not parse: %w", err)
	}
	return nil
}
