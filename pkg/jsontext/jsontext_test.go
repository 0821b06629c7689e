package jsontext

import (
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "fence with language tag",
			input:    "```json\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "unfenced text unchanged",
			input:    "  {\"a\": 1}  ",
			expected: "{\"a\": 1}",
		},
		{
			name:     "opening fence only is left alone",
			input:    "```json\n{\"a\": 1}",
			expected: "```json\n{\"a\": 1}",
		},
		{
			name:     "multiline payload survives",
			input:    "```json\n{\n  \"a\": 1\n}\n```",
			expected: "{\n  \"a\": 1\n}",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripFences(tt.input)
			if result != tt.expected {
				t.Errorf("StripFences() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{
			name:     "bare object",
			input:    "{\"a\": 1}",
			expected: "{\"a\": 1}",
			found:    true,
		},
		{
			name:     "object wrapped in prose",
			input:    "Sure, here is the result: {\"a\": 1} Hope that helps!",
			expected: "{\"a\": 1}",
			found:    true,
		},
		{
			name:     "nested object kept intact",
			input:    "prefix {\"outer\": {\"inner\": 2}} suffix",
			expected: "{\"outer\": {\"inner\": 2}}",
			found:    true,
		},
		{
			name:     "broken object followed by valid one",
			input:    "{\"broken\": } then {\"ok\": true}",
			expected: "{\"ok\": true}",
			found:    true,
		},
		{
			name:     "stray closing brace before object",
			input:    "} noise {\"a\": 1}",
			expected: "{\"a\": 1}",
			found:    true,
		},
		{
			name:  "no object at all",
			input: "the model wrote plain prose",
			found: false,
		},
		{
			name:  "empty string",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ExtractObject(tt.input)
			if ok != tt.found {
				t.Fatalf("ExtractObject() found = %v, want %v", ok, tt.found)
			}
			if ok && result != tt.expected {
				t.Errorf("ExtractObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}

// A brace inside a string value throws off the depth counter, so the
// scanner rejects the unbalanced candidate and the regex fallback
// recovers the full span instead.
func TestExtractObject_BraceInsideString(t *testing.T) {
	input := "note: {\"quote\": \"use } sparingly\", \"n\": 1} done"
	expected := "{\"quote\": \"use } sparingly\", \"n\": 1}"

	result, ok := ExtractObject(input)
	if !ok {
		t.Fatalf("ExtractObject() found no object")
	}
	if result != expected {
		t.Errorf("ExtractObject() = %q, want %q", result, expected)
	}
}

func TestDecodeObject(t *testing.T) {
	type payload struct {
		Outcome string `json:"outcome"`
		Shift   int    `json:"shift"`
	}

	tests := []struct {
		name    string
		input   string
		want    payload
		wantErr bool
	}{
		{
			name:  "strict JSON",
			input: "{\"outcome\": \"Success\", \"shift\": -1}",
			want:  payload{Outcome: "Success", Shift: -1},
		},
		{
			name:  "fenced JSON with language tag",
			input: "```json\n{\"outcome\": \"Failure\", \"shift\": 0}\n```",
			want:  payload{Outcome: "Failure", Shift: 0},
		},
		{
			name:  "prose before and after",
			input: "Here you go!\n{\"outcome\": \"Alternative\", \"shift\": 2}\nLet me know if you need more.",
			want:  payload{Outcome: "Alternative", Shift: 2},
		},
		{
			name:  "fenced with trailing commentary inside fence",
			input: "```\n{\"outcome\": \"Success\", \"shift\": 1}\nThat concludes the turn.\n```",
			want:  payload{Outcome: "Success", Shift: 1},
		},
		{
			name:    "no JSON anywhere",
			input:   "I refuse to answer in JSON today.",
			wantErr: true,
		},
		{
			name:    "only malformed JSON",
			input:   "{\"outcome\": \"Success\", \"shift\": }",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := DecodeObject(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeObject() expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeObject() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeObject() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeObject_ModelTurnPayload(t *testing.T) {
	// A realistic model reply: fenced, commented, and slightly chatty.
	raw := "Here is the resolution you asked for:\n```json\n{\n  \"active_npc\": {\"name\": \"Mira\"},\n  \"outcome_type\": \"success\",\n  \"npc_resistance_change\": -2\n}\n```\nGood luck out there!"

	var got struct {
		ActiveNPC struct {
			Name string `json:"name"`
		} `json:"active_npc"`
		OutcomeType      string `json:"outcome_type"`
		ResistanceChange int    `json:"npc_resistance_change"`
	}
	if err := DecodeObject(raw, &got); err != nil {
		t.Fatalf("DecodeObject() unexpected error: %v", err)
	}
	if got.ActiveNPC.Name != "Mira" {
		t.Errorf("Expected active NPC Mira, got %q", got.ActiveNPC.Name)
	}
	if got.OutcomeType != "success" {
		t.Errorf("Expected outcome_type success, got %q", got.OutcomeType)
	}
	if got.ResistanceChange != -2 {
		t.Errorf("Expected resistance change -2, got %d", got.ResistanceChange)
	}
}
