package store

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

func fullTask() *models.Task {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	next := created.Add(3 * time.Hour)

	return &models.Task{
		ID:              "check-in-with-a1b2c3d4",
		Title:           "Check in with Ana",
		Status:          models.TaskStatusWaitingApproval,
		TaskType:        models.TaskTypeDiscrete,
		Created:         created,
		LastUpdated:     updated,
		NextCheck:       &next,
		PollFrequency:   models.PollFrequency{Type: models.PollInterval, IntervalMS: 300000, Label: "5m"},
		Hidden:          false,
		AutoSend:        false,
		OriginalRequest: "Ask Ana whether she can make\nthe 3pm sync tomorrow",
		Plan:            []string{"Draft the message", "Send it", "Wait for a reply"},
		StructuredPlan: []models.PlanStep{
			{StepID: 1, Tool: "send_chat_message", Description: "Send it",
				Args: map[string]any{"recipient": "ana", "message": "3pm sync?"}},
			{StepID: 2, Tool: "wait_for_reply", Description: "Wait",
				Args:      map[string]any{"platform": "slack", "contact": "ana", "success_criteria": "confirms or declines"},
				OutputVar: "reply", Dependencies: []int{1}},
		},
		CurrentStep: models.CurrentStep{Step: 2, Description: "Wait", State: "waiting", PollIntervalMS: 300000},
		ExecutionLog: []models.LogEntry{
			{Timestamp: created.Add(time.Minute), Message: "task started"},
			{Timestamp: created.Add(2 * time.Minute), Message: "step 1 (send_chat_message) executed"},
		},
		ContextMemory: map[string]string{
			"step_1.message":   "3pm sync?",
			"__wait.contact":   "ana",
			"multiline_value":  "line one\nline two",
			"padded":           "  keep the spaces  ",
			"quoted":           `"already quoted"`,
		},
		PendingMessages: []models.PendingMessage{
			{
				ID:        "ab12cd34",
				ToolName:  "send_chat_message",
				Platform:  "slack",
				Recipient: "ana",
				Created:   created.Add(time.Minute),
				Message:   "Can you make the 3pm sync?\n\n- yes\n- no",
				ToolInput: map[string]string{"recipient": "ana", "message": "Can you make the 3pm sync?"},
			},
		},
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	original := fullTask()

	serialized := Serialize(original)
	parsed, err := Parse(serialized)
	if err != nil {
		t.Fatalf("parse: %v\n---\n%s", err, serialized)
	}

	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch\noriginal: %+v\nparsed:   %+v\n---\n%s", original, parsed, serialized)
	}
}

func TestMarkdownRoundTrip_MinimalTask(t *testing.T) {
	original := &models.Task{
		ID:            "minimal-0a1b2c3d",
		Title:         "Minimal",
		Status:        models.TaskStatusPending,
		TaskType:      models.TaskTypeContinuous,
		Created:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		LastUpdated:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		PollFrequency: models.PollFrequency{Type: models.PollEvent, Label: models.EventOnLogin},
	}

	parsed, err := Parse(Serialize(original))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch\noriginal: %+v\nparsed:   %+v", original, parsed)
	}
	if parsed.NextCheck != nil {
		t.Error("event task should keep a nil next check")
	}
}

func TestMarkdownRoundTrip_HeaderLikeBodyLines(t *testing.T) {
	// Free text that looks like markdown structure must survive the round
	// trip without derailing section or message parsing.
	original := fullTask()
	original.OriginalRequest = "Send Ana the agenda:\n## Agenda\n- intros\n## Wrap-up"
	original.PendingMessages[0].Message = "Here is the agenda.\n\n## Agenda\n### First item\n\\ escaped already"

	serialized := Serialize(original)
	parsed, err := Parse(serialized)
	if err != nil {
		t.Fatalf("parse: %v\n---\n%s", err, serialized)
	}

	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch\noriginal: %+v\nparsed:   %+v\n---\n%s", original, parsed, serialized)
	}
	if len(parsed.PendingMessages) != 1 {
		t.Fatalf("body headers split the pending message: %d messages", len(parsed.PendingMessages))
	}
	if len(parsed.Plan) != 3 {
		t.Errorf("body headers derailed section parsing: %v", parsed.Plan)
	}
}

func TestSerialize_HumanReadable(t *testing.T) {
	out := Serialize(fullTask())

	for _, want := range []string{
		"# Check in with Ana",
		"## Metadata",
		"- Status: waiting_approval",
		"- Poll Frequency: interval:300000:5m",
		"## Original Request",
		"1. Draft the message",
		"## Execution Log",
		"### ab12cd34",
		"- Recipient: ana",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized form missing %q:\n%s", want, out)
		}
	}
}

func TestParse_RejectsBadMetadata(t *testing.T) {
	bad := `# Broken

## Metadata
- ID: x
- Status: sleeping
`
	if _, err := Parse(bad); err == nil {
		t.Error("unknown status should fail parsing")
	}
}

func TestEncodeDecodeValue(t *testing.T) {
	for _, v := range []string{
		"plain",
		"line one\nline two",
		"  padded  ",
		`"quoted"`,
		"",
	} {
		decoded, err := decodeValue(encodeValue(v))
		if err != nil {
			t.Errorf("decode(encode(%q)): %v", v, err)
			continue
		}
		if decoded != v {
			t.Errorf("round trip %q -> %q", v, decoded)
		}
	}
}
