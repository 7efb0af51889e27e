// Package engine implements the polling task executor and the primitive
// toolset its plans are built from. A tick loads one due task, executes the
// steps due now, and returns the mutated record for persistence; all waiting
// is done by persisting state and returning, never by blocking.
package engine

import (
	"fmt"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

// PrimitiveKind identifies one primitive in the closed control-flow and
// variable vocabulary. The set is fixed; dispatch over it is exhaustive.
type PrimitiveKind int

const (
	// PrimSaveVariable stores a value in context memory.
	PrimSaveVariable PrimitiveKind = iota
	// PrimGetVariable reads a value from context memory.
	PrimGetVariable
	// PrimCheckVariable tests existence and optionally compares a variable.
	PrimCheckVariable
	// PrimIncrementCounter adds to a numeric variable, creating it at 0.
	PrimIncrementCounter
	// PrimParseTime parses a clock string into hour and minute.
	PrimParseTime
	// PrimCheckTimePassed tests whether a target time has passed today.
	PrimCheckTimePassed
	// PrimIsNewDay compares today against a stored ISO date.
	PrimIsNewDay
	// PrimEvaluateCondition compares two operands with a named operator.
	PrimEvaluateCondition
	// PrimGotoStep redirects execution to another step.
	PrimGotoStep
	// PrimCompleteTask finishes a discrete task.
	PrimCompleteTask
	// PrimFormatString substitutes {placeholder} values into a template.
	PrimFormatString
	// PrimSendReminder delivers a reminder notification to the user.
	PrimSendReminder
	// PrimNotifyUser delivers a notification, optionally as a blocking question.
	PrimNotifyUser
	// PrimSendChatMessage sends a message on an external channel (gated).
	PrimSendChatMessage
	// PrimAskUserQuestion asks the user a blocking question.
	PrimAskUserQuestion
	// PrimWaitForReply polls an external channel for a satisfying reply.
	PrimWaitForReply
)

// primitiveNames maps kinds to their wire names, indexed by PrimitiveKind.
var primitiveNames = [...]string{
	"save_variable",
	"get_variable",
	"check_variable",
	"increment_counter",
	"parse_time",
	"check_time_passed",
	"is_new_day",
	"evaluate_condition",
	"goto_step",
	"complete_task",
	"format_string",
	"send_reminder",
	"notify_user",
	"send_chat_message",
	"ask_user_question",
	"wait_for_reply",
}

// String returns the wire name of the primitive.
func (k PrimitiveKind) String() string {
	if int(k) < 0 || int(k) >= len(primitiveNames) {
		return fmt.Sprintf("primitive(%d)", int(k))
	}
	return primitiveNames[k]
}

// ParsePrimitive resolves a tool name to a primitive kind.
func ParsePrimitive(name string) (PrimitiveKind, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return PrimitiveKind(i), true
		}
	}
	return 0, false
}

// IsPrimitive reports whether the tool name belongs to the primitive set.
func IsPrimitive(name string) bool {
	_, ok := ParsePrimitive(name)
	return ok
}

// Action tells the executor what to do after a primitive ran. Primitives
// themselves never perform side effects beyond context memory; the executor
// interprets the action.
type Action int

const (
	// ActionNone advances to the next step.
	ActionNone Action = iota
	// ActionGoto jumps to Fields["target_step"].
	ActionGoto
	// ActionComplete finishes a discrete task.
	ActionComplete
	// ActionNotify delivers a direct, non-blocking notification.
	ActionNotify
	// ActionAskUser delivers a question and suspends for the answer.
	ActionAskUser
	// ActionSendMessage stages (or auto-sends) an outbound message.
	ActionSendMessage
	// ActionWaitReply suspends the task polling for an inbound reply.
	ActionWaitReply
)

// Result is the uniform outcome shape every primitive returns. A missing
// required input yields Success=false with a descriptive Error, never a panic.
type Result struct {
	// Success is false when the primitive could not do its job.
	Success bool
	// Fields are named outputs, recorded into context memory per step.
	Fields map[string]string
	// Action tells the executor how to proceed.
	Action Action
	// Error describes the failure when Success is false.
	Error string
}

// fail builds a failed result with a formatted error.
func fail(format string, args ...any) Result {
	return Result{Success: false, Fields: map[string]string{}, Error: fmt.Sprintf(format, args...)}
}

// ok builds a successful result with the given fields.
func ok(fields map[string]string) Result {
	if fields == nil {
		fields = map[string]string{}
	}
	return Result{Success: true, Fields: fields}
}

// ExecutePrimitive runs one primitive against the task's context memory.
// The task is mutated only through its context memory; all other effects are
// deferred to the executor via the returned Action.
func ExecutePrimitive(kind PrimitiveKind, args map[string]string, task *models.Task, now time.Time) Result {
	switch kind {
	case PrimSaveVariable:
		return saveVariable(args, task)
	case PrimGetVariable:
		return getVariable(args, task)
	case PrimCheckVariable:
		return checkVariable(args, task)
	case PrimIncrementCounter:
		return incrementCounter(args, task)
	case PrimParseTime:
		return parseTimePrimitive(args)
	case PrimCheckTimePassed:
		return checkTimePassed(args, now)
	case PrimIsNewDay:
		return isNewDay(args, now)
	case PrimEvaluateCondition:
		return evaluateCondition(args)
	case PrimGotoStep:
		return gotoStep(args)
	case PrimCompleteTask:
		return completeTask(args)
	case PrimFormatString:
		return formatString(args, task)
	case PrimSendReminder:
		return sendReminder(args)
	case PrimNotifyUser:
		return notifyUser(args)
	case PrimSendChatMessage:
		return sendChatMessage(args)
	case PrimAskUserQuestion:
		return askUserQuestion(args)
	case PrimWaitForReply:
		return waitForReplyPrimitive(args)
	default:
		return fail("unknown primitive kind %d", int(kind))
	}
}
