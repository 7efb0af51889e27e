// Package tools defines the tool catalog the planner grounds plans against.
// A catalog entry mirrors the wire shape used by LLM tool definitions:
// name, description, and a JSON-schema-shaped input description.
package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Property describes one input schema property.
type Property struct {
	// Type is the JSON schema type of the property.
	Type string `json:"type" yaml:"type"`
	// Description explains the property to the model.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// InputSchema is the object-typed schema of a tool's input.
type InputSchema struct {
	// Type is always "object" for valid tools.
	Type string `json:"type" yaml:"type"`
	// Properties maps argument names to their schemas.
	Properties map[string]Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	// Required lists mandatory argument names.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`
}

// Tool is one catalog entry the planner may reference.
type Tool struct {
	// Name is the unique tool identifier.
	Name string `json:"name" yaml:"name"`
	// Description explains what the tool does.
	Description string `json:"description" yaml:"description"`
	// InputSchema describes the tool's arguments.
	InputSchema InputSchema `json:"input_schema" yaml:"input_schema"`
}

// Catalog is an enumerable, name-indexed set of tools.
type Catalog struct {
	tools  []Tool
	byName map[string]Tool
}

// NewCatalog builds a catalog from the given tools. Later duplicates
// override earlier entries.
func NewCatalog(tools []Tool) *Catalog {
	c := &Catalog{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := c.byName[t.Name]; !exists {
			c.tools = append(c.tools, t)
		}
		c.byName[t.Name] = t
	}
	return c
}

// Has reports whether a tool with the given name exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Get returns the named tool.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// All returns the tools in registration order.
func (c *Catalog) All() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Names returns all tool names in registration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

// Merge returns a new catalog containing this catalog's tools plus the
// given extras.
func (c *Catalog) Merge(extra []Tool) *Catalog {
	return NewCatalog(append(c.All(), extra...))
}

// categoryKeywords maps coarse category labels to tool name substrings.
// This is deliberately crude: the category only compacts the architect
// prompt and never affects execution.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Email", []string{"email", "mail", "inbox"}},
	{"Calendar", []string{"calendar", "event", "meeting", "schedule"}},
	{"Messaging", []string{"chat", "message", "slack", "discord", "sms", "whatsapp", "reply"}},
	{"Web", []string{"browser", "web", "search", "url", "page"}},
	{"Files", []string{"file", "document", "note", "folder"}},
	{"Time", []string{"time", "reminder", "timer", "clock", "day"}},
	{"Variables", []string{"variable", "counter", "condition", "step", "task", "format"}},
}

// Categorize derives a coarse category label from a tool name.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return "General"
}

// CategorySummary renders a compact category -> tool listing for prompts,
// one line per category, categories sorted alphabetically.
func (c *Catalog) CategorySummary() string {
	grouped := make(map[string][]string)
	for _, t := range c.tools {
		cat := Categorize(t.Name)
		grouped[cat] = append(grouped[cat], t.Name)
	}

	cats := make([]string, 0, len(grouped))
	for cat := range grouped {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", cat, strings.Join(grouped[cat], ", ")))
	}
	return sb.String()
}

// SchemaSummary renders full tool descriptions with argument schemas for
// the builder prompt.
func (c *Catalog) SchemaSummary() string {
	var sb strings.Builder
	for _, t := range c.tools {
		sb.WriteString(fmt.Sprintf("## %s\n%s\n", t.Name, t.Description))
		if len(t.InputSchema.Properties) > 0 {
			required := make(map[string]bool, len(t.InputSchema.Required))
			for _, r := range t.InputSchema.Required {
				required[r] = true
			}
			names := make([]string, 0, len(t.InputSchema.Properties))
			for name := range t.InputSchema.Properties {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				prop := t.InputSchema.Properties[name]
				marker := ""
				if required[name] {
					marker = " (required)"
				}
				sb.WriteString(fmt.Sprintf("- %s: %s%s - %s\n", name, prop.Type, marker, prop.Description))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
