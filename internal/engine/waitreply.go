package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

// Wait-for-reply state lives in context memory under reserved __wait. keys
// so a wait survives process restarts like everything else in the record.
const (
	waitKeyPrefix       = "__wait."
	waitKeyPlatform     = "__wait.platform"
	waitKeyContact      = "__wait.contact"
	waitKeyConversation = "__wait.conversation_id"
	waitKeyCriteria     = "__wait.success_criteria"
	waitKeyRequest      = "__wait.original_request"
	waitKeyOutputVar    = "__wait.output_var"
	waitKeyStep         = "__wait.step"
	waitKeyStarted      = "__wait.started"
	waitKeyLastSeen     = "__wait.last_seen"
	waitKeyLastFollowup = "__wait.last_followup"
	waitKeyFollowups    = "__wait.followups"
	waitKeyPollMinutes  = "__wait.poll_minutes"
	waitKeyFollowupHrs  = "__wait.followup_after_hours"
	waitKeyMaxFollowups = "__wait.max_followups"
)

// Wait-for-reply defaults per the tool contract.
const (
	defaultWaitPollMinutes = 5
	defaultFollowupHours   = 24
	defaultMaxFollowups    = 3
)

// beginWait records wait-for-reply state from a successful primitive result.
// stepID is the plan step that initiated the wait; its output variable
// receives the satisfying reply. The step's own max_followups argument wins
// over the executor-wide default.
func (e *Executor) beginWait(task *models.Task, fields map[string]string, args map[string]string, stepID int, outputVar string, now time.Time) {
	task.SetVariable(waitKeyPlatform, fields["platform"])
	task.SetVariable(waitKeyContact, fields["contact"])
	task.SetVariable(waitKeyConversation, fields["conversation_id"])
	task.SetVariable(waitKeyCriteria, fields["success_criteria"])
	task.SetVariable(waitKeyRequest, fields["original_request"])
	task.SetVariable(waitKeyOutputVar, outputVar)
	task.SetVariable(waitKeyStep, strconv.Itoa(stepID))
	task.SetVariable(waitKeyStarted, now.Format(time.RFC3339))
	task.SetVariable(waitKeyLastSeen, now.Format(time.RFC3339))
	task.SetVariable(waitKeyFollowups, "0")
	task.SetVariable(waitKeyPollMinutes, intArg(args, "poll_interval_minutes", defaultWaitPollMinutes))
	task.SetVariable(waitKeyFollowupHrs, intArg(args, "followup_after_hours", defaultFollowupHours))
	task.SetVariable(waitKeyMaxFollowups, intArg(args, "max_followups", e.maxFollowups))
}

// intArg returns args[key] when it parses as a non-negative integer,
// otherwise the default, rendered back as a string.
func intArg(args map[string]string, key string, def int) string {
	if raw, present := args[key]; present && raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return strconv.Itoa(n)
		}
	}
	return strconv.Itoa(def)
}

// clearWait removes every reserved wait key.
func clearWait(task *models.Task) {
	for key := range task.ContextMemory {
		if strings.HasPrefix(key, waitKeyPrefix) {
			delete(task.ContextMemory, key)
		}
	}
}

// waitOutcome is the result of one wait poll.
type waitOutcome struct {
	// Resolved is true when a reply satisfied the success criteria.
	Resolved bool
	// Reply is the satisfying reply text.
	Reply string
	// StepID is the plan step that initiated the wait.
	StepID int
	// OutputVar names the variable that should receive the reply.
	OutputVar string
	// Attention is true when follow-ups are exhausted and a human must act.
	Attention bool
	// FollowupSent is true when this poll issued a follow-up message.
	FollowupSent bool
}

// checkWait runs one wait-for-reply poll: judge any new inbound messages
// against the success criteria, send a bounded follow-up when the reply is
// overdue, and surface the task for human attention once follow-ups are
// exhausted. Errors are returned for logging but never fail the task.
func (e *Executor) checkWait(ctx context.Context, task *models.Task, now time.Time) (waitOutcome, error) {
	var out waitOutcome
	out.StepID, _ = strconv.Atoi(task.ContextMemory[waitKeyStep])
	out.OutputVar = task.ContextMemory[waitKeyOutputVar]

	platform := task.ContextMemory[waitKeyPlatform]
	contact := task.ContextMemory[waitKeyContact]
	criteria := task.ContextMemory[waitKeyCriteria]
	if platform == "" || contact == "" || criteria == "" {
		return out, fmt.Errorf("wait state incomplete")
	}

	lastSeen, err := time.Parse(time.RFC3339, task.ContextMemory[waitKeyLastSeen])
	if err != nil {
		lastSeen = now
	}

	if e.reader != nil {
		messages, err := e.reader.FetchSince(ctx, platform, contact, task.ContextMemory[waitKeyConversation], lastSeen)
		if err != nil {
			return out, fmt.Errorf("fetch messages: %w", err)
		}
		task.SetVariable(waitKeyLastSeen, now.Format(time.RFC3339))

		for _, msg := range messages {
			satisfied, err := e.judgeReply(ctx, criteria, task.ContextMemory[waitKeyRequest], msg)
			if err != nil {
				return out, fmt.Errorf("judge reply: %w", err)
			}
			if satisfied {
				out.Resolved = true
				out.Reply = msg.Text
				return out, nil
			}
		}
	}

	// No satisfying reply yet; decide whether a follow-up is due.
	followupHours, _ := strconv.Atoi(task.ContextMemory[waitKeyFollowupHrs])
	maxFollowups, _ := strconv.Atoi(task.ContextMemory[waitKeyMaxFollowups])
	followups, _ := strconv.Atoi(task.ContextMemory[waitKeyFollowups])

	anchor := task.ContextMemory[waitKeyLastFollowup]
	if anchor == "" {
		anchor = task.ContextMemory[waitKeyStarted]
	}
	anchorTime, err := time.Parse(time.RFC3339, anchor)
	if err != nil {
		anchorTime = now
	}

	if now.Sub(anchorTime) < time.Duration(followupHours)*time.Hour {
		return out, nil
	}

	if followups >= maxFollowups {
		out.Attention = true
		return out, nil
	}

	body := followupBody(task.ContextMemory[waitKeyRequest], followups+1)
	if e.messenger != nil {
		if err := e.messenger.Send(ctx, platform, contact, "", body); err != nil {
			return out, fmt.Errorf("send follow-up: %w", err)
		}
	}
	task.SetVariable(waitKeyFollowups, strconv.Itoa(followups+1))
	task.SetVariable(waitKeyLastFollowup, now.Format(time.RFC3339))
	out.FollowupSent = true
	return out, nil
}

// followupBody renders the nth follow-up message.
func followupBody(request string, n int) string {
	if request == "" {
		return "Just following up on my earlier message - any update?"
	}
	return fmt.Sprintf("Just following up (reminder %d) on: %s", n, request)
}

// judgeReplyPrompt asks the generator whether a reply satisfies the criteria.
const judgeReplyPrompt = `A reply was received while waiting for a response to a request.

Original request: %s
Success criteria: %s

Reply from %s:
%s

Does this reply satisfy the success criteria? Answer with a single word: YES or NO.`

// judgeReply asks the generation capability whether msg satisfies criteria.
// Without a generator any reply counts as satisfying, so a missing provider
// degrades to "first reply wins" instead of waiting forever.
func (e *Executor) judgeReply(ctx context.Context, criteria, request string, msg InboundMessage) (bool, error) {
	if e.gen == nil {
		return true, nil
	}
	prompt := fmt.Sprintf(judgeReplyPrompt, request, criteria, msg.From, msg.Text)
	response, err := e.gen.Generate(ctx, prompt, "")
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(response)), "YES"), nil
}
