package engine

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/aide/pkg/models"
)

func TestFormatString(t *testing.T) {
	task := &models.Task{}
	task.SetVariable("city", "Lisbon")

	res := formatString(map[string]string{
		"template": "Weather in {city} at {hour}:00",
		"hour":     "12",
	}, task)
	if !res.Success {
		t.Fatalf("format failed: %s", res.Error)
	}
	if res.Fields["result"] != "Weather in Lisbon at 12:00" {
		t.Errorf("unexpected result: %q", res.Fields["result"])
	}
}

func TestFormatString_MissingTemplate(t *testing.T) {
	if res := formatString(map[string]string{}, &models.Task{}); res.Success {
		t.Error("expected failure without template")
	}
}

func TestFormatString_MessageArray(t *testing.T) {
	task := &models.Task{}
	messages := `[{"text":"running late","from":"ana","date":"2026-03-01"},{"text":"omw","from":"bo","date":"2026-03-01"}]`

	res := formatString(map[string]string{
		"template": "New replies:\n{messages}",
		"messages": messages,
	}, task)
	if !res.Success {
		t.Fatalf("format failed: %s", res.Error)
	}
	out := res.Fields["result"]
	if !strings.Contains(out, "- [2026-03-01] ana: running late") {
		t.Errorf("missing readable rendering: %q", out)
	}
	if !strings.Contains(out, "bo: omw") {
		t.Errorf("missing second message: %q", out)
	}
	if strings.Contains(out, "{messages}") {
		t.Errorf("placeholder left behind: %q", out)
	}
}

func TestRenderValue_PassThrough(t *testing.T) {
	// Non-JSON and non-message arrays pass through untouched.
	for _, raw := range []string{"plain text", `["a","b"]`, `[1,2]`, `[]`, `{"x":1}`} {
		if got := renderValue(raw); got != raw {
			t.Errorf("renderValue(%q) = %q, want unchanged", raw, got)
		}
	}
}
