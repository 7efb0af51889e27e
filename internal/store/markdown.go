package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

// The markdown form mirrors the structured record section for section so a
// task can be exported for reading or editing and imported back without
// loss. Parse(Serialize(t)) reproduces t field for field.

const timeLayout = time.RFC3339Nano

// Serialize renders a task record as markdown.
func Serialize(task *models.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", task.Title)

	sb.WriteString("## Metadata\n")
	fmt.Fprintf(&sb, "- ID: %s\n", task.ID)
	fmt.Fprintf(&sb, "- Status: %s\n", task.Status)
	fmt.Fprintf(&sb, "- Type: %s\n", task.TaskType)
	fmt.Fprintf(&sb, "- Created: %s\n", task.Created.Format(timeLayout))
	fmt.Fprintf(&sb, "- Last Updated: %s\n", task.LastUpdated.Format(timeLayout))
	if task.NextCheck != nil {
		fmt.Fprintf(&sb, "- Next Check: %s\n", task.NextCheck.Format(timeLayout))
	} else {
		sb.WriteString("- Next Check: none\n")
	}
	fmt.Fprintf(&sb, "- Poll Frequency: %s\n", task.PollFrequency.Encode())
	fmt.Fprintf(&sb, "- Hidden: %t\n", task.Hidden)
	fmt.Fprintf(&sb, "- Auto Send: %t\n", task.AutoSend)

	sb.WriteString("\n## Original Request\n")
	if task.OriginalRequest != "" {
		writeFreeText(&sb, task.OriginalRequest)
	}

	sb.WriteString("\n## Plan\n")
	for i, step := range task.Plan {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}

	if len(task.StructuredPlan) > 0 {
		sb.WriteString("\n## Structured Plan\n```json\n")
		raw, _ := json.MarshalIndent(task.StructuredPlan, "", "  ")
		sb.Write(raw)
		sb.WriteString("\n```\n")
	}

	sb.WriteString("\n## Current Step\n")
	fmt.Fprintf(&sb, "- Step: %d\n", task.CurrentStep.Step)
	if task.CurrentStep.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", task.CurrentStep.Description)
	}
	if task.CurrentStep.State != "" {
		fmt.Fprintf(&sb, "- State: %s\n", task.CurrentStep.State)
	}
	if task.CurrentStep.PollIntervalMS != 0 {
		fmt.Fprintf(&sb, "- Poll Interval MS: %d\n", task.CurrentStep.PollIntervalMS)
	}

	sb.WriteString("\n## Execution Log\n")
	for _, entry := range task.ExecutionLog {
		fmt.Fprintf(&sb, "- [%s] %s\n", entry.Timestamp.Format(timeLayout), entry.Message)
	}

	sb.WriteString("\n## Context Memory\n")
	for _, key := range sortedKeys(task.ContextMemory) {
		fmt.Fprintf(&sb, "- %s: %s\n", key, encodeValue(task.ContextMemory[key]))
	}

	sb.WriteString("\n## Pending Messages\n")
	for _, msg := range task.PendingMessages {
		fmt.Fprintf(&sb, "\n### %s\n", msg.ID)
		fmt.Fprintf(&sb, "- Tool: %s\n", msg.ToolName)
		if msg.Platform != "" {
			fmt.Fprintf(&sb, "- Platform: %s\n", msg.Platform)
		}
		if msg.Recipient != "" {
			fmt.Fprintf(&sb, "- Recipient: %s\n", msg.Recipient)
		}
		if msg.Subject != "" {
			fmt.Fprintf(&sb, "- Subject: %s\n", msg.Subject)
		}
		fmt.Fprintf(&sb, "- Created: %s\n", msg.Created.Format(timeLayout))
		if len(msg.ToolInput) > 0 {
			raw, _ := json.Marshal(msg.ToolInput)
			fmt.Fprintf(&sb, "- Tool Input: %s\n", raw)
		}
		sb.WriteString("\n")
		writeFreeText(&sb, msg.Message)
	}

	return sb.String()
}

// Parse reconstructs a task record from its markdown form.
func Parse(content string) (*models.Task, error) {
	task := &models.Task{}
	lines := strings.Split(content, "\n")

	section := ""
	var jsonBlock strings.Builder
	inFence := false
	var pending *models.PendingMessage
	var pendingBody []string
	pendingInBody := false

	flushPending := func() {
		if pending == nil {
			return
		}
		pending.Message = strings.TrimRight(strings.Join(pendingBody, "\n"), "\n")
		task.PendingMessages = append(task.PendingMessages, *pending)
		pending = nil
		pendingBody = nil
		pendingInBody = false
	}

	var requestLines []string

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			flushPending()
			section = strings.TrimPrefix(line, "## ")
			continue
		case strings.HasPrefix(line, "# ") && section == "":
			task.Title = strings.TrimPrefix(line, "# ")
			continue
		}

		switch section {
		case "Metadata":
			if err := parseMetadataLine(task, line); err != nil {
				return nil, err
			}

		case "Original Request":
			if line != "" || len(requestLines) > 0 {
				requestLines = append(requestLines, unescapeFreeText(line))
			}

		case "Plan":
			if text, ok := numberedItem(line); ok {
				task.Plan = append(task.Plan, text)
			}

		case "Structured Plan":
			if strings.HasPrefix(line, "```") {
				if inFence {
					if err := json.Unmarshal([]byte(jsonBlock.String()), &task.StructuredPlan); err != nil {
						return nil, fmt.Errorf("decode structured plan: %w", err)
					}
				}
				inFence = !inFence
				continue
			}
			if inFence {
				jsonBlock.WriteString(line)
				jsonBlock.WriteString("\n")
			}

		case "Current Step":
			if err := parseCurrentStepLine(task, line); err != nil {
				return nil, err
			}

		case "Execution Log":
			if entry, ok, err := parseLogLine(line); err != nil {
				return nil, err
			} else if ok {
				task.ExecutionLog = append(task.ExecutionLog, entry)
			}

		case "Context Memory":
			if key, value, ok := bulletField(line); ok {
				decoded, err := decodeValue(value)
				if err != nil {
					return nil, fmt.Errorf("decode context memory %q: %w", key, err)
				}
				task.SetVariable(key, decoded)
			}

		case "Pending Messages":
			if strings.HasPrefix(line, "### ") {
				flushPending()
				pending = &models.PendingMessage{ID: strings.TrimPrefix(line, "### ")}
				continue
			}
			if pending == nil {
				continue
			}
			if !pendingInBody {
				if key, value, ok := bulletField(line); ok {
					if err := parsePendingField(pending, key, value); err != nil {
						return nil, err
					}
					continue
				}
				// The first blank line ends the field list; everything
				// after it is the message body, bullets included.
				pendingInBody = true
				if line == "" {
					continue
				}
			}
			pendingBody = append(pendingBody, unescapeFreeText(line))
		}
	}
	flushPending()

	task.OriginalRequest = strings.TrimRight(strings.Join(requestLines, "\n"), "\n")
	return task, nil
}

// parseMetadataLine applies one "- Key: value" metadata bullet.
func parseMetadataLine(task *models.Task, line string) error {
	key, value, ok := bulletField(line)
	if !ok {
		return nil
	}
	var err error
	switch key {
	case "ID":
		task.ID = value
	case "Status":
		task.Status = models.TaskStatus(value)
		if !task.Status.Valid() {
			return fmt.Errorf("unknown status %q", value)
		}
	case "Type":
		task.TaskType = models.TaskType(value)
		if !task.TaskType.Valid() {
			return fmt.Errorf("unknown task type %q", value)
		}
	case "Created":
		if task.Created, err = time.Parse(timeLayout, value); err != nil {
			return fmt.Errorf("parse created: %w", err)
		}
	case "Last Updated":
		if task.LastUpdated, err = time.Parse(timeLayout, value); err != nil {
			return fmt.Errorf("parse last updated: %w", err)
		}
	case "Next Check":
		if value != "none" {
			t, err := time.Parse(timeLayout, value)
			if err != nil {
				return fmt.Errorf("parse next check: %w", err)
			}
			task.NextCheck = &t
		}
	case "Poll Frequency":
		if task.PollFrequency, err = models.ParsePollFrequency(value); err != nil {
			return err
		}
	case "Hidden":
		task.Hidden = value == "true"
	case "Auto Send":
		task.AutoSend = value == "true"
	}
	return nil
}

// parseCurrentStepLine applies one current-step bullet.
func parseCurrentStepLine(task *models.Task, line string) error {
	key, value, ok := bulletField(line)
	if !ok {
		return nil
	}
	switch key {
	case "Step":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse current step: %w", err)
		}
		task.CurrentStep.Step = n
	case "Description":
		task.CurrentStep.Description = value
	case "State":
		task.CurrentStep.State = value
	case "Poll Interval MS":
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("parse poll interval: %w", err)
		}
		task.CurrentStep.PollIntervalMS = ms
	}
	return nil
}

// parseLogLine decodes one "- [timestamp] message" bullet.
func parseLogLine(line string) (models.LogEntry, bool, error) {
	if !strings.HasPrefix(line, "- [") {
		return models.LogEntry{}, false, nil
	}
	rest := strings.TrimPrefix(line, "- [")
	end := strings.Index(rest, "] ")
	if end < 0 {
		return models.LogEntry{}, false, fmt.Errorf("malformed log line %q", line)
	}
	ts, err := time.Parse(timeLayout, rest[:end])
	if err != nil {
		return models.LogEntry{}, false, fmt.Errorf("parse log timestamp: %w", err)
	}
	return models.LogEntry{Timestamp: ts, Message: rest[end+2:]}, true, nil
}

// parsePendingField applies one pending-message bullet.
func parsePendingField(msg *models.PendingMessage, key, value string) error {
	switch key {
	case "Tool":
		msg.ToolName = value
	case "Platform":
		msg.Platform = value
	case "Recipient":
		msg.Recipient = value
	case "Subject":
		msg.Subject = value
	case "Created":
		t, err := time.Parse(timeLayout, value)
		if err != nil {
			return fmt.Errorf("parse pending message created: %w", err)
		}
		msg.Created = t
	case "Tool Input":
		if err := json.Unmarshal([]byte(value), &msg.ToolInput); err != nil {
			return fmt.Errorf("decode tool input: %w", err)
		}
	}
	return nil
}

// bulletField splits a "- Key: value" line. The value may be empty.
func bulletField(line string) (key, value string, ok bool) {
	if !strings.HasPrefix(line, "- ") {
		return "", "", false
	}
	rest := strings.TrimPrefix(line, "- ")
	idx := strings.Index(rest, ": ")
	if idx < 0 {
		if strings.HasSuffix(rest, ":") {
			return strings.TrimSuffix(rest, ":"), "", true
		}
		return "", "", false
	}
	return rest[:idx], rest[idx+2:], true
}

// numberedItem strips the "N. " prefix from a plan line.
func numberedItem(line string) (string, bool) {
	idx := strings.Index(line, ". ")
	if idx < 1 {
		return "", false
	}
	if _, err := strconv.Atoi(line[:idx]); err != nil {
		return "", false
	}
	return line[idx+2:], true
}

// writeFreeText emits free-form text line by line, escaping lines that would
// read back as section or message headers.
func writeFreeText(sb *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, `\`) {
			sb.WriteString(`\`)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// unescapeFreeText reverses writeFreeText's escaping on one line.
func unescapeFreeText(line string) string {
	if strings.HasPrefix(line, `\#`) || strings.HasPrefix(line, `\\`) {
		return line[1:]
	}
	return line
}

// encodeValue quotes context memory values that would break the bullet
// format (newlines, leading/trailing space, or a leading quote).
func encodeValue(v string) string {
	if strings.ContainsAny(v, "\n\r") || v != strings.TrimSpace(v) || strings.HasPrefix(v, `"`) {
		return strconv.Quote(v)
	}
	return v
}

// decodeValue reverses encodeValue.
func decodeValue(v string) (string, error) {
	if strings.HasPrefix(v, `"`) {
		return strconv.Unquote(v)
	}
	return v, nil
}

// sortedKeys returns map keys in stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
