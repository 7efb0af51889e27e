package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleTools() []Tool {
	return []Tool{
		{
			Name:        "send_email",
			Description: "Send an email to a recipient.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"to":      {Type: "string", Description: "Recipient address"},
					"subject": {Type: "string", Description: "Subject line"},
					"body":    {Type: "string", Description: "Message body"},
				},
				Required: []string{"to", "body"},
			},
		},
		{
			Name:        "create_calendar_event",
			Description: "Create a calendar event.",
			InputSchema: InputSchema{Type: "object"},
		},
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog(sampleTools())

	if !c.Has("send_email") {
		t.Error("expected send_email to exist")
	}
	if c.Has("delete_everything") {
		t.Error("unexpected tool")
	}

	tool, ok := c.Get("send_email")
	if !ok || tool.Description == "" {
		t.Errorf("unexpected lookup result: %+v (%v)", tool, ok)
	}

	names := c.Names()
	if len(names) != 2 || names[0] != "send_email" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestCatalog_Merge(t *testing.T) {
	c := NewCatalog(sampleTools())
	merged := c.Merge([]Tool{{Name: "save_variable", Description: "Save a variable."}})
	if !merged.Has("save_variable") || !merged.Has("send_email") {
		t.Errorf("merge lost tools: %v", merged.Names())
	}
	// Original catalog unchanged.
	if c.Has("save_variable") {
		t.Error("merge mutated the receiver")
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"send_email", "Email"},
		{"create_calendar_event", "Calendar"},
		{"send_chat_message", "Messaging"},
		{"browser_navigate", "Web"},
		{"launch_rocket", "General"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCategorySummary(t *testing.T) {
	c := NewCatalog(sampleTools())
	summary := c.CategorySummary()
	if !strings.Contains(summary, "Email: send_email") {
		t.Errorf("summary missing email line: %q", summary)
	}
	if !strings.Contains(summary, "Calendar: create_calendar_event") {
		t.Errorf("summary missing calendar line: %q", summary)
	}
}

func TestSchemaSummary(t *testing.T) {
	c := NewCatalog(sampleTools())
	summary := c.SchemaSummary()
	if !strings.Contains(summary, "## send_email") {
		t.Errorf("summary missing tool header: %q", summary)
	}
	if !strings.Contains(summary, "to: string (required)") {
		t.Errorf("summary missing required marker: %q", summary)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `tools:
  - name: send_email
    description: Send an email.
    input_schema:
      type: object
      properties:
        to:
          type: string
          description: Recipient
      required: [to]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "send_email" {
		t.Fatalf("unexpected tools: %+v", loaded)
	}
	if loaded[0].InputSchema.Required[0] != "to" {
		t.Errorf("lost required list: %+v", loaded[0].InputSchema)
	}
}

func TestLoadFile_BadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	doc := `tools:
  - name: broken
    description: Bad schema type.
    input_schema:
      type: array
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected non-object schema to fail")
	}
}

func TestLoadDir_Missing(t *testing.T) {
	loaded, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no tools, got %d", len(loaded))
	}
}
