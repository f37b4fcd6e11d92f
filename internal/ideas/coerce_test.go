package ideas

import (
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `[{"title":"x"}]`, `[{"title":"x"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"leading whitespace", "  \n```json\n{}\n```  ", "{}"},
		{"fence without close", "```json\n[1]", "[1]"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseIdeas(t *testing.T) {
	raw := "```json\n[\n" +
		`{"title":"A","description":"d","tech_stack":["Go"],"difficulty":"Advanced","estimated_time":"2 weeks"},` +
		`{"title":"B","description":"d","tech_stack":"Rust, Tokio","estimated_time":"1 month"}` +
		"\n]\n```"

	list, err := ParseIdeas(raw)
	if err != nil {
		t.Fatalf("ParseIdeas: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d ideas, want 2", len(list))
	}

	if list[0].Difficulty != "Advanced" {
		t.Errorf("ideas[0].Difficulty = %q", list[0].Difficulty)
	}
	// Missing difficulty defaults to Medium.
	if list[1].Difficulty != "Medium" {
		t.Errorf("ideas[1].Difficulty = %q, want Medium default", list[1].Difficulty)
	}
	if len(list[1].TechStack) != 2 || list[1].TechStack[0] != "Rust" {
		t.Errorf("ideas[1].TechStack = %v", list[1].TechStack)
	}
}

func TestParseIdeasCapsAtFive(t *testing.T) {
	raw := `[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"},{"title":"5"},{"title":"6"},{"title":"7"}]`

	list, err := ParseIdeas(raw)
	if err != nil {
		t.Fatalf("ParseIdeas: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("got %d ideas, want cap of 5", len(list))
	}
	if list[4].Title != "5" {
		t.Errorf("last kept idea = %q, want the first five in order", list[4].Title)
	}
}

func TestParseIdeasInvalidJSON(t *testing.T) {
	_, err := ParseIdeas("Sure! Here are some ideas for you.")
	if err == nil {
		t.Fatal("expected error for non-JSON output")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if parseErr.Raw == "" {
		t.Error("ParseError should carry the raw output")
	}
}
