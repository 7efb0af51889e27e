package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not yet ticked.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusActive indicates the task is progressing through its plan.
	TaskStatusActive TaskStatus = "active"
	// TaskStatusWaiting indicates the task is polling for an external reply.
	TaskStatusWaiting TaskStatus = "waiting"
	// TaskStatusWaitingApproval indicates a staged message needs human approval.
	TaskStatusWaitingApproval TaskStatus = "waiting_approval"
	// TaskStatusWaitingForInput indicates the task asked the user a question.
	TaskStatusWaitingForInput TaskStatus = "waiting_for_input"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed and will not be retried.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCancelled indicates the task was cancelled by the user.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusActive, TaskStatusWaiting,
		TaskStatusWaitingApproval, TaskStatusWaitingForInput,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further execution will occur for this status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// TaskType distinguishes one-shot tasks from recurring ones.
type TaskType string

const (
	// TaskTypeDiscrete is a task that runs to completion once.
	TaskTypeDiscrete TaskType = "discrete"
	// TaskTypeContinuous is a task that re-runs its plan on every poll.
	TaskTypeContinuous TaskType = "continuous"
)

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	return t == TaskTypeDiscrete || t == TaskTypeContinuous
}

// PollFrequencyType distinguishes interval polling from event-driven polling.
type PollFrequencyType string

const (
	// PollInterval means the task is re-evaluated on a fixed interval.
	PollInterval PollFrequencyType = "interval"
	// PollEvent means the task is only re-evaluated when a named event fires.
	PollEvent PollFrequencyType = "event"
)

// EventOnLogin is the event tag for tasks re-evaluated only at process start.
const EventOnLogin = "on_login"

// PollFrequency describes when the executor should revisit a task.
type PollFrequency struct {
	// Type is either PollInterval or PollEvent.
	Type PollFrequencyType `json:"type"`
	// IntervalMS is the poll interval in milliseconds (interval type only).
	IntervalMS int64 `json:"interval_ms,omitempty"`
	// Label is the human-readable form, e.g. "5m" or "on_login".
	Label string `json:"label"`
}

// DefaultPollFrequency returns the short fixed interval used for new
// continuous tasks (5 minutes).
func DefaultPollFrequency() PollFrequency {
	return PollFrequency{Type: PollInterval, IntervalMS: 5 * 60 * 1000, Label: "5m"}
}

// Interval returns the poll interval as a duration, or zero for event polling.
func (p PollFrequency) Interval() time.Duration {
	if p.Type != PollInterval {
		return 0
	}
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Encode renders the frequency in the persisted "type:value:label" form.
func (p PollFrequency) Encode() string {
	if p.Type == PollEvent {
		return fmt.Sprintf("%s:%s:%s", PollEvent, p.Label, p.Label)
	}
	return fmt.Sprintf("%s:%d:%s", PollInterval, p.IntervalMS, p.Label)
}

// ParsePollFrequency parses the "type:value:label" encoding.
func ParsePollFrequency(s string) (PollFrequency, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return PollFrequency{}, fmt.Errorf("malformed poll frequency %q", s)
	}
	switch PollFrequencyType(parts[0]) {
	case PollInterval:
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return PollFrequency{}, fmt.Errorf("parse poll interval %q: %w", parts[1], err)
		}
		return PollFrequency{Type: PollInterval, IntervalMS: ms, Label: parts[2]}, nil
	case PollEvent:
		return PollFrequency{Type: PollEvent, Label: parts[2]}, nil
	default:
		return PollFrequency{}, fmt.Errorf("unknown poll frequency type %q", parts[0])
	}
}

// LogEntry is one line in a task's append-only execution log.
type LogEntry struct {
	// Timestamp is when the entry was recorded.
	Timestamp time.Time `json:"timestamp"`
	// Message describes what happened.
	Message string `json:"message"`
}

// CurrentStep tracks where the executor is within the structured plan.
type CurrentStep struct {
	// Step is the 1-based step number currently due for execution.
	Step int `json:"step"`
	// Description is the display text of that step.
	Description string `json:"description"`
	// State is a short note about the step's condition (e.g. "waiting").
	State string `json:"state,omitempty"`
	// PollIntervalMS is the interval used when the step defers to a later poll.
	PollIntervalMS int64 `json:"poll_interval_ms,omitempty"`
}

// PendingMessage is a staged side-effecting communication awaiting approval.
type PendingMessage struct {
	// ID uniquely identifies this pending message.
	ID string `json:"id"`
	// ToolName is the communication tool that will fire on approval.
	ToolName string `json:"tool_name"`
	// Platform is the delivery channel (e.g. "email", "slack").
	Platform string `json:"platform,omitempty"`
	// Recipient is who the message is addressed to.
	Recipient string `json:"recipient,omitempty"`
	// Subject is the message subject, if the channel has one.
	Subject string `json:"subject,omitempty"`
	// Message is the body text. The user may edit it before approving.
	Message string `json:"message"`
	// Created is when the message was staged.
	Created time.Time `json:"created"`
	// ToolInput is the full argument set for the deferred tool call.
	ToolInput map[string]string `json:"tool_input,omitempty"`
}

// Task is the durable record of one user-requested unit of work.
// It is mutated only by the task executor and explicit user actions,
// and persists across process restarts.
type Task struct {
	// ID is the stable identifier, derived from the title plus a random suffix.
	ID string `json:"id"`
	// Title is the short display name of the task.
	Title string `json:"title"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// TaskType is discrete or continuous.
	TaskType TaskType `json:"task_type"`
	// Created is when the task was created.
	Created time.Time `json:"created"`
	// LastUpdated is bumped on every mutation.
	LastUpdated time.Time `json:"last_updated"`
	// NextCheck is when the executor should next act, nil if event-driven.
	NextCheck *time.Time `json:"next_check,omitempty"`
	// PollFrequency controls how often the task is revisited.
	PollFrequency PollFrequency `json:"poll_frequency"`
	// Hidden excludes the task from default listings. Soft state, never deleted.
	Hidden bool `json:"hidden,omitempty"`
	// AutoSend bypasses the approval gate for outbound messages.
	AutoSend bool `json:"auto_send,omitempty"`
	// OriginalRequest is the user's natural-language request verbatim.
	OriginalRequest string `json:"original_request"`
	// Plan is the display form of the plan, one description per step.
	Plan []string `json:"plan,omitempty"`
	// StructuredPlan is the grounded builder plan, nil for fallback-only tasks.
	StructuredPlan []PlanStep `json:"structured_plan,omitempty"`
	// CurrentStep tracks execution position within the structured plan.
	CurrentStep CurrentStep `json:"current_step"`
	// ExecutionLog is the append-only history of executed steps.
	ExecutionLog []LogEntry `json:"execution_log,omitempty"`
	// ContextMemory is the task's persistent key-value variable store.
	ContextMemory map[string]string `json:"context_memory,omitempty"`
	// PendingMessages are staged communications awaiting approval.
	PendingMessages []PendingMessage `json:"pending_messages,omitempty"`
}

// NewTaskID derives a stable task ID from the title plus a random suffix.
func NewTaskID(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "task"
	}
	return slug + "-" + uuid.New().String()[:8]
}

// Slugify lowercases the title and keeps the first three words, joined
// with hyphens, stripped to alphanumerics.
func Slugify(title string) string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) > 3 {
		words = words[:3]
	}
	kept := make([]string, 0, len(words))
	for _, w := range words {
		var b strings.Builder
		for _, r := range w {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			kept = append(kept, b.String())
		}
	}
	return strings.Join(kept, "-")
}

// AppendLog appends a timestamped entry to the execution log and bumps
// LastUpdated.
func (t *Task) AppendLog(now time.Time, message string) {
	t.ExecutionLog = append(t.ExecutionLog, LogEntry{Timestamp: now, Message: message})
	t.LastUpdated = now
}

// SetVariable writes a context memory entry, allocating the map if needed.
func (t *Task) SetVariable(key, value string) {
	if t.ContextMemory == nil {
		t.ContextMemory = make(map[string]string)
	}
	t.ContextMemory[key] = value
}

// Variable reads a context memory entry.
func (t *Task) Variable(key string) (string, bool) {
	v, ok := t.ContextMemory[key]
	return v, ok
}

// FindPendingMessage returns the pending message with the given ID, or nil.
func (t *Task) FindPendingMessage(id string) *PendingMessage {
	for i := range t.PendingMessages {
		if t.PendingMessages[i].ID == id {
			return &t.PendingMessages[i]
		}
	}
	return nil
}

// RemovePendingMessage removes the pending message with the given ID.
// Returns false if no such message exists.
func (t *Task) RemovePendingMessage(id string) bool {
	for i := range t.PendingMessages {
		if t.PendingMessages[i].ID == id {
			t.PendingMessages = append(t.PendingMessages[:i], t.PendingMessages[i+1:]...)
			return true
		}
	}
	return false
}

// IsDue reports whether the task should be ticked at the given time.
// Event-driven tasks are only due when forced (e.g. the login tick).
func (t *Task) IsDue(now time.Time, force bool) bool {
	if t.Status.IsTerminal() {
		return false
	}
	if t.PollFrequency.Type == PollEvent {
		return force
	}
	if force || t.NextCheck == nil {
		return true
	}
	return !now.Before(*t.NextCheck)
}
