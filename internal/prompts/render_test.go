package prompts

import (
	"strings"
	"testing"
)

func TestRender_SubstitutesKnownPlaceholders(t *testing.T) {
	body := "Mission {{mission_id}} flown by {{pilot}} on {{date}}."
	out := Render(body, map[string]any{
		"mission_id": "M-204",
		"pilot":      "jordan",
		"date":       "2026-08-30",
	})
	want := "Mission M-204 flown by jordan on 2026-08-30."
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestRender_LeavesUnknownPlaceholdersIntact(t *testing.T) {
	body := "Report {{report_id}} with {{unbound}} left alone."
	out := Render(body, map[string]any{"report_id": "R-1"})
	if !strings.Contains(out, "{{unbound}}") {
		t.Fatalf("expected unknown placeholder preserved, got %q", out)
	}
	if strings.Contains(out, "{{report_id}}") {
		t.Fatalf("expected report_id substituted, got %q", out)
	}
}

func TestRender_StringifiesNonStringValues(t *testing.T) {
	out := Render("count={{n}} ok={{ok}} none={{nothing}}", map[string]any{
		"n":       42,
		"ok":      true,
		"nothing": nil,
	})
	if out != "count=42 ok=true none=" {
		t.Fatalf("got %q", out)
	}
}

func TestRender_EmptyVariablesReturnsBodyUnchanged(t *testing.T) {
	body := "Nothing to do for {{anything}} here."
	if out := Render(body, nil); out != body {
		t.Fatalf("got %q want %q", out, body)
	}
}

func TestRender_ValueContainingPlaceholderIsNotReScanned(t *testing.T) {
	vars := map[string]any{
		"a": "{{b}}",
		"b": "X",
	}
	want := "{{b}} X"
	for i := 0; i < 200; i++ {
		if out := Render("{{a}} {{b}}", vars); out != want {
			t.Fatalf("iteration %d: got %q want %q", i, out, want)
		}
	}
}

func TestRender_NotesWithTemplateSyntaxPassThroughVerbatim(t *testing.T) {
	out := Render("Notes: {{notes}}", map[string]any{
		"notes": "operator wrote {{input}} in the field log",
		"input": "SHOULD NOT APPEAR",
	})
	if out != "Notes: operator wrote {{input}} in the field log" {
		t.Fatalf("got %q", out)
	}
}

func TestRender_UnterminatedPlaceholderLeftAlone(t *testing.T) {
	body := "Open brace {{date without close"
	if out := Render(body, map[string]any{"date": "2026-08-30"}); out != body {
		t.Fatalf("got %q want %q", out, body)
	}
}

func TestRender_RepeatedPlaceholderSubstitutedEverywhere(t *testing.T) {
	out := Render("{{id}} and again {{id}}", map[string]any{"id": "X"})
	if out != "X and again X" {
		t.Fatalf("got %q", out)
	}
}

func TestSeeds_CoverAllKnownPrompts(t *testing.T) {
	seeds := Seeds()
	byName := map[PromptName]bool{}
	for _, s := range seeds {
		if s.Body == "" {
			t.Fatalf("seed %s has empty body", s.Name)
		}
		byName[s.Name] = true
	}
	for _, name := range All() {
		if !byName[name] {
			t.Fatalf("no seed body for prompt %s", name)
		}
	}
}
