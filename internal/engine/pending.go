package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/aide/pkg/models"
)

// stagePendingMessage appends a staged message to the task. The underlying
// tool does not fire until the user approves; this is the first phase of the
// two-phase commit around irreversible external actions.
func (e *Executor) stagePendingMessage(task *models.Task, tool string, fields map[string]string, now time.Time) *models.PendingMessage {
	msg := models.PendingMessage{
		ID:        uuid.New().String()[:8],
		ToolName:  tool,
		Platform:  fields["platform"],
		Recipient: fields["recipient"],
		Subject:   fields["subject"],
		Message:   fields["message"],
		Created:   now,
		ToolInput: copyFields(fields),
	}
	task.PendingMessages = append(task.PendingMessages, msg)
	return &task.PendingMessages[len(task.PendingMessages)-1]
}

// ApprovePendingMessage dispatches a staged message. A non-empty editedBody
// replaces the message body before sending. When no staged messages remain
// the task resumes active and is due immediately.
func (e *Executor) ApprovePendingMessage(ctx context.Context, task *models.Task, msgID, editedBody string) error {
	msg := task.FindPendingMessage(msgID)
	if msg == nil {
		return fmt.Errorf("no pending message %q on task %s", msgID, task.ID)
	}
	if e.messenger == nil {
		return fmt.Errorf("no messenger configured")
	}

	body := msg.Message
	if editedBody != "" {
		body = editedBody
	}

	if err := e.messenger.Send(ctx, msg.Platform, msg.Recipient, msg.Subject, body); err != nil {
		return fmt.Errorf("dispatch approved message: %w", err)
	}

	now := e.clock()
	task.RemovePendingMessage(msgID)
	task.AppendLog(now, fmt.Sprintf("message %s approved and sent to %s", msgID, msg.Recipient))
	e.resumeIfClear(task, now)
	return nil
}

// RejectPendingMessage discards a staged message without side effects.
func (e *Executor) RejectPendingMessage(task *models.Task, msgID string) error {
	msg := task.FindPendingMessage(msgID)
	if msg == nil {
		return fmt.Errorf("no pending message %q on task %s", msgID, task.ID)
	}

	now := e.clock()
	task.RemovePendingMessage(msgID)
	task.AppendLog(now, fmt.Sprintf("message %s rejected", msgID))
	e.resumeIfClear(task, now)
	return nil
}

// resumeIfClear reactivates a task once its approval queue is empty.
func (e *Executor) resumeIfClear(task *models.Task, now time.Time) {
	if task.Status == models.TaskStatusWaitingApproval && len(task.PendingMessages) == 0 {
		task.Status = models.TaskStatusActive
		task.NextCheck = &now
	}
}

// ProvideUserInput answers a waiting_for_input task. The answer populates
// the variable recorded when the question was asked, and the task resumes.
func (e *Executor) ProvideUserInput(task *models.Task, answer string) error {
	if task.Status != models.TaskStatusWaitingForInput {
		return fmt.Errorf("task %s is not waiting for input (status %s)", task.ID, task.Status)
	}

	now := e.clock()
	target, _ := task.Variable(inputAnswerVar)
	if target == "" {
		target = "user_answer"
	}
	task.SetVariable(target, answer)
	delete(task.ContextMemory, inputAnswerVar)
	if task.CurrentStep.State == "waiting" {
		// The answer stands in for the reply the wait never got; move past
		// the wait step so it does not restart.
		e.setStep(task, task.CurrentStep.Step+1)
	}
	clearWait(task)

	task.Status = models.TaskStatusActive
	task.NextCheck = &now
	task.AppendLog(now, fmt.Sprintf("user input received into %q", target))
	return nil
}

// Cancel cooperatively cancels a task. The status takes effect immediately
// on the record; a concurrently scheduled tick sees it on next load.
func (e *Executor) Cancel(task *models.Task) {
	if task.Status.IsTerminal() {
		return
	}
	task.Status = models.TaskStatusCancelled
	task.AppendLog(e.clock(), "task cancelled")
}

// copyFields clones a field map for storage on the pending message.
func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
