package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
)

func testAnalysis() model.Analysis {
	return model.Analysis{
		ID:        "a1",
		Timestamp: time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC),
		Text:      model.Estimate{Label: model.Happy, Confidence: 0.9},
		Final:     model.Estimate{Label: model.Happy, Confidence: 0.9},
		Rule:      "confidence",
		Recommendation: model.Recommendation{
			Emotion: model.Happy, Confidence: 0.9, Level: model.LevelHigh,
			Tasks: []string{"Take on challenging projects"},
		},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(output.Standard, false)
		out.Write(context.Background(), testAnalysis())
	})

	// Should be single line (NDJSON).
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	rec, ok := m["recommendation"].(map[string]any)
	if !ok {
		t.Fatalf("missing recommendation object: %v", m)
	}
	if rec["recommendation_level"] != "high" {
		t.Fatalf("expected recommendation_level=high, got %v", rec["recommendation_level"])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := newWriter(&buf, output.Standard, true)
	if err := out.Write(context.Background(), testAnalysis()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	result := buf.String()
	if !strings.Contains(result, "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

func TestOutputMinimalOmitsDetails(t *testing.T) {
	var buf bytes.Buffer
	out := newWriter(&buf, output.Minimal, false)
	out.Write(context.Background(), testAnalysis())

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["text"]; ok {
		t.Error("minimal output should omit text estimate")
	}
	if _, ok := m["fusion_rule"]; ok {
		t.Error("minimal output should omit fusion_rule")
	}
	if _, ok := m["final"]; !ok {
		t.Error("minimal output should keep final")
	}
}
