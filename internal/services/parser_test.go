package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
)

func TestParseModelOutput_BareJSON(t *testing.T) {
	out, err := ParseModelOutput(`{"severity":"LOW","riskScore":10}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["severity"] != "LOW" {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestParseModelOutput_JSONFencedBlock(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"ready\": true, \"score\": 92}\n```\nLet me know if you need more."
	out, err := ParseModelOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["ready"] != true {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestParseModelOutput_PlainFencedBlock(t *testing.T) {
	raw := "```\n{\"summary\": \"quiet day\"}\n```"
	out, err := ParseModelOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["summary"] != "quiet day" {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestParseModelOutput_FenceWithoutNewline(t *testing.T) {
	out, err := ParseModelOutput("```json{\"a\":1}```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out["a"]; !ok {
		t.Fatalf("unexpected payload: %v", out)
	}
}

func TestParseModelOutput_UnterminatedFenceFallsBackToRaw(t *testing.T) {
	_, err := ParseModelOutput("```json\n{\"a\":1}")
	if err == nil {
		t.Fatalf("expected error for unterminated fence wrapping")
	}
}

func TestParseModelOutput_MalformedReturnsTypedErrorWithPreview(t *testing.T) {
	long := "I could not produce JSON because " + strings.Repeat("the telemetry was noisy ", 20)
	_, err := ParseModelOutput(long)
	if err == nil {
		t.Fatalf("expected error")
	}
	var moe *aierr.MalformedOutputError
	if !errors.As(err, &moe) {
		t.Fatalf("expected MalformedOutputError, got %T", err)
	}
	if len(moe.Preview) > 203 {
		t.Fatalf("preview not truncated: %d chars", len(moe.Preview))
	}
}

func TestParseModelOutput_NonObjectJSONIsMalformed(t *testing.T) {
	_, err := ParseModelOutput(`[1, 2, 3]`)
	var moe *aierr.MalformedOutputError
	if !errors.As(err, &moe) {
		t.Fatalf("expected MalformedOutputError for non-object payload, got %v", err)
	}
}
