package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/aide/pkg/models"
)

// formatString implements the format_string primitive: {placeholder}
// substitution over args["template"], pulling values from the remaining
// args and falling back to context memory.
func formatString(args map[string]string, task *models.Task) Result {
	template := args["template"]
	if template == "" {
		return fail("format_string requires a template")
	}

	out := template
	for key, value := range args {
		if key == "template" {
			continue
		}
		out = strings.ReplaceAll(out, "{"+key+"}", renderValue(value))
	}
	for key, value := range task.ContextMemory {
		placeholder := "{" + key + "}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, renderValue(value))
		}
	}

	return ok(map[string]string{"result": out})
}

// messageItem is the recognizable shape of one inbound message in a JSON
// array value: arrays of these get a readable rendering instead of raw JSON.
type messageItem struct {
	Text string `json:"text"`
	From string `json:"from"`
	Date string `json:"date"`
}

// renderValue renders a raw value for substitution. JSON arrays of objects
// carrying text/from/date fields become a readable bullet list.
func renderValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return raw
	}

	var items []messageItem
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return raw
	}
	if len(items) == 0 {
		return raw
	}
	usable := false
	for _, item := range items {
		if item.Text != "" || item.From != "" || item.Date != "" {
			usable = true
			break
		}
	}
	if !usable {
		return raw
	}

	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case item.From != "" && item.Date != "":
			sb.WriteString(fmt.Sprintf("- [%s] %s: %s", item.Date, item.From, item.Text))
		case item.From != "":
			sb.WriteString(fmt.Sprintf("- %s: %s", item.From, item.Text))
		default:
			sb.WriteString("- " + item.Text)
		}
	}
	return sb.String()
}
