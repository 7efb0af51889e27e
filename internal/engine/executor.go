package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/notify"
	"github.com/ShayCichocki/aide/pkg/models"
)

// inputAnswerVar is the reserved context memory key naming the variable a
// pending user answer should populate.
const inputAnswerVar = "__input.answer_var"

// Logger receives debug lines from the executor.
type Logger interface {
	// Log writes one formatted debug line.
	Log(format string, args ...any)
}

// nopLogger discards all lines.
type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// Config wires an Executor's collaborators. Zero-value fields get safe
// defaults; a nil Generator or Reader only disables the features that need
// them, never crashes a tick.
type Config struct {
	// Generator is the text generation capability (reply judging).
	Generator llm.Generator
	// Messenger delivers approved and auto-sent outbound messages.
	Messenger Messenger
	// Reader polls external channels during wait_for_reply.
	Reader MessageReader
	// Invoker executes non-primitive catalog tools.
	Invoker ToolInvoker
	// Sink receives user-facing notifications.
	Sink notify.Sink
	// Logger receives debug lines.
	Logger Logger
	// MaxStepsPerTick caps step executions within one tick (default 25),
	// so a goto cycle in a malformed plan cannot spin forever.
	MaxStepsPerTick int
	// MaxFollowups is the default nudge budget for wait_for_reply steps
	// that do not set their own (default 3).
	MaxFollowups int
	// Clock supplies the current time; tests override it.
	Clock func() time.Time
}

// Executor is the polling state machine that advances task records. It is
// single-threaded per task: a tick runs one task's due steps to completion
// and returns the mutated record for persistence. Callers serialize access
// per task.
type Executor struct {
	gen             llm.Generator
	messenger       Messenger
	reader          MessageReader
	invoker         ToolInvoker
	sink            notify.Sink
	log             Logger
	maxStepsPerTick int
	maxFollowups    int
	clock           func() time.Time
}

// New creates an Executor from the given configuration.
func New(cfg Config) *Executor {
	e := &Executor{
		gen:             cfg.Generator,
		messenger:       cfg.Messenger,
		reader:          cfg.Reader,
		invoker:         cfg.Invoker,
		sink:            cfg.Sink,
		log:             cfg.Logger,
		maxStepsPerTick: cfg.MaxStepsPerTick,
		maxFollowups:    cfg.MaxFollowups,
		clock:           cfg.Clock,
	}
	if e.sink == nil {
		e.sink = notify.NopSink{}
	}
	if e.log == nil {
		e.log = nopLogger{}
	}
	if e.maxStepsPerTick <= 0 {
		e.maxStepsPerTick = 25
	}
	if e.maxFollowups <= 0 {
		e.maxFollowups = defaultMaxFollowups
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// ExecuteTick advances one task by one poll. It mutates the task in place
// and never returns an error for in-plan failures; those are logged to the
// execution log. force runs event-driven tasks (e.g. the login tick) and
// bypasses the next-check gate.
func (e *Executor) ExecuteTick(ctx context.Context, task *models.Task, force bool) error {
	now := e.clock()

	if task.Status.IsTerminal() {
		return nil
	}
	if !task.IsDue(now, force) {
		return nil
	}

	switch task.Status {
	case models.TaskStatusPending:
		task.Status = models.TaskStatusActive
		if task.CurrentStep.Step < 1 {
			e.setStep(task, 1)
		}
		task.AppendLog(now, "task started")
	case models.TaskStatusWaitingApproval, models.TaskStatusWaitingForInput:
		// Suspended on a human; nothing to do until they act.
		e.scheduleNext(task, now)
		return nil
	case models.TaskStatusWaiting:
		if !e.resumeFromWait(ctx, task, now) {
			e.scheduleNext(task, now)
			return nil
		}
	}

	e.runSteps(ctx, task, now)
	if !task.Status.IsTerminal() {
		e.scheduleNext(task, now)
	}
	return nil
}

// resumeFromWait runs one wait-for-reply poll. It returns true when the wait
// resolved and step execution should continue this tick.
func (e *Executor) resumeFromWait(ctx context.Context, task *models.Task, now time.Time) bool {
	outcome, err := e.checkWait(ctx, task, now)
	if err != nil {
		task.AppendLog(now, fmt.Sprintf("wait_for_reply poll error: %v", err))
		return false
	}

	switch {
	case outcome.Resolved:
		if outcome.OutputVar != "" {
			task.SetVariable(outcome.OutputVar, outcome.Reply)
		}
		if outcome.StepID > 0 {
			task.SetVariable(fmt.Sprintf("step_%d.reply", outcome.StepID), outcome.Reply)
		}
		clearWait(task)
		task.Status = models.TaskStatusActive
		task.AppendLog(now, "wait_for_reply satisfied, resuming")
		e.advance(task)
		return true
	case outcome.Attention:
		task.Status = models.TaskStatusWaitingForInput
		task.SetVariable(inputAnswerVar, outcome.OutputVar)
		task.AppendLog(now, "wait_for_reply exhausted follow-ups, needs attention")
		e.sink.Notify(notify.Notification{
			TaskID:    task.ID,
			Title:     task.Title,
			Message:   "No satisfying reply after maximum follow-ups. Intervention needed.",
			Kind:      notify.KindAttention,
			AnswerVar: outcome.OutputVar,
		})
		return false
	case outcome.FollowupSent:
		task.AppendLog(now, "wait_for_reply sent follow-up")
		return false
	default:
		return false
	}
}

// runSteps executes the steps due this tick, bounded by maxStepsPerTick.
func (e *Executor) runSteps(ctx context.Context, task *models.Task, now time.Time) {
	if len(task.StructuredPlan) == 0 {
		if task.TaskType == models.TaskTypeDiscrete {
			task.Status = models.TaskStatusCompleted
			task.AppendLog(now, "no structured plan; task completed")
		}
		return
	}

	for executed := 0; executed < e.maxStepsPerTick; executed++ {
		if task.Status != models.TaskStatusActive {
			return
		}
		if task.CurrentStep.Step < 1 {
			e.setStep(task, 1)
		}
		if task.CurrentStep.Step > len(task.StructuredPlan) {
			e.finishPlan(task, now)
			return
		}

		step := task.StructuredPlan[task.CurrentStep.Step-1]
		args := e.resolveArgs(step, task)

		if step.IsConditional && step.Condition != "" {
			pass, err := EvalExpression(e.resolveRefs(step.Condition, task))
			if err != nil {
				task.AppendLog(now, fmt.Sprintf("step %d condition error: %v (treated as false)", step.StepID, err))
				pass = false
			}
			if !pass {
				task.AppendLog(now, fmt.Sprintf("step %d skipped: condition not met", step.StepID))
				if e.advance(task) {
					e.finishPlan(task, now)
					return
				}
				continue
			}
		}

		res := e.executeStep(ctx, step, args, task, now)

		for field, value := range res.Fields {
			task.SetVariable(fmt.Sprintf("step_%d.%s", step.StepID, field), value)
		}
		if res.Success && step.OutputVar != "" {
			task.SetVariable(step.OutputVar, primaryField(res))
		}

		if !res.Success {
			// Primitive failures are logged, not fatal: the plan moves on.
			task.AppendLog(now, fmt.Sprintf("step %d (%s) failed: %s", step.StepID, step.Tool, res.Error))
			if e.advance(task) {
				e.finishPlan(task, now)
				return
			}
			continue
		}

		task.AppendLog(now, fmt.Sprintf("step %d (%s) executed", step.StepID, step.Tool))

		if done := e.applyAction(ctx, step, res, task, now); done {
			return
		}
	}

	e.log.Log("task %s hit the per-tick step budget, yielding until next poll", task.ID)
	task.AppendLog(now, "step budget for this poll exhausted, continuing next poll")
}

// applyAction interprets a successful result's action. It returns true when
// the tick should stop executing further steps.
func (e *Executor) applyAction(ctx context.Context, step models.PlanStep, res Result, task *models.Task, now time.Time) bool {
	switch res.Action {
	case ActionGoto:
		target, _ := strconv.Atoi(res.Fields["target_step"])
		if target < 1 || target > len(task.StructuredPlan) {
			task.AppendLog(now, fmt.Sprintf("step %d goto target %d out of range, advancing instead", step.StepID, target))
			if e.advance(task) {
				e.finishPlan(task, now)
				return true
			}
			return false
		}
		e.setStep(task, target)
		return false

	case ActionComplete:
		if task.TaskType == models.TaskTypeContinuous {
			task.AppendLog(now, fmt.Sprintf("step %d complete_task ignored: task is continuous", step.StepID))
			if e.advance(task) {
				e.finishPlan(task, now)
				return true
			}
			return false
		}
		task.Status = models.TaskStatusCompleted
		task.AppendLog(now, "task completed")
		return true

	case ActionNotify:
		kind := notify.KindInfo
		if step.Tool == PrimSendReminder.String() {
			kind = notify.KindReminder
		}
		e.sink.Notify(notify.Notification{
			TaskID:  task.ID,
			Title:   firstNonEmpty(res.Fields["title"], task.Title),
			Message: res.Fields["message"],
			Kind:    kind,
		})
		if e.advance(task) {
			e.finishPlan(task, now)
			return true
		}
		return false

	case ActionAskUser:
		task.Status = models.TaskStatusWaitingForInput
		task.SetVariable(inputAnswerVar, res.Fields["answer_var"])
		task.AppendLog(now, fmt.Sprintf("step %d waiting for user input", step.StepID))
		e.sink.Notify(notify.Notification{
			TaskID:    task.ID,
			Title:     task.Title,
			Message:   res.Fields["question"],
			Kind:      notify.KindQuestion,
			AnswerVar: res.Fields["answer_var"],
		})
		e.advance(task)
		return true

	case ActionSendMessage:
		return e.dispatchOrStage(ctx, step, step.Tool, res.Fields, task, now)

	case ActionWaitReply:
		e.beginWait(task, res.Fields, stringArgs(step.Args, task, e), step.StepID, step.OutputVar, now)
		task.Status = models.TaskStatusWaiting
		task.CurrentStep.State = "waiting"
		task.AppendLog(now, fmt.Sprintf("step %d waiting for reply from %s on %s", step.StepID, res.Fields["contact"], res.Fields["platform"]))
		return true

	default:
		if e.advance(task) {
			e.finishPlan(task, now)
			return true
		}
		return false
	}
}

// executeStep runs one plan step: a primitive, the ERROR sentinel, a gated
// communication tool, or an external catalog tool.
func (e *Executor) executeStep(ctx context.Context, step models.PlanStep, args map[string]string, task *models.Task, now time.Time) Result {
	if kind, isPrim := ParsePrimitive(step.Tool); isPrim {
		return ExecutePrimitive(kind, args, task, now)
	}

	if step.Tool == models.ToolError {
		return fail("step could not be grounded in a real tool")
	}

	if isSideEffectingTool(step.Tool) {
		r := ok(map[string]string{
			"message":   firstNonEmpty(args["message"], args["body"]),
			"recipient": firstNonEmpty(args["recipient"], args["to"], args["contact"]),
			"platform":  firstNonEmpty(args["platform"], platformFromTool(step.Tool)),
			"subject":   args["subject"],
		})
		r.Action = ActionSendMessage
		return r
	}

	if e.invoker == nil {
		return fail("no tool invoker configured for %q", step.Tool)
	}
	fields, err := e.invoker.Invoke(ctx, step.Tool, args)
	if err != nil {
		return fail("tool %s: %v", step.Tool, err)
	}
	return ok(fields)
}

// dispatchOrStage either auto-sends an outbound message or stages it behind
// the approval gate. Returns true when the tick should stop.
func (e *Executor) dispatchOrStage(ctx context.Context, step models.PlanStep, tool string, fields map[string]string, task *models.Task, now time.Time) bool {
	if task.AutoSend {
		if e.messenger == nil {
			task.AppendLog(now, fmt.Sprintf("step %d auto-send skipped: no messenger configured", step.StepID))
		} else if err := e.messenger.Send(ctx, fields["platform"], fields["recipient"], fields["subject"], fields["message"]); err != nil {
			task.AppendLog(now, fmt.Sprintf("step %d auto-send failed: %v", step.StepID, err))
		} else {
			task.AppendLog(now, fmt.Sprintf("step %d message auto-sent to %s", step.StepID, fields["recipient"]))
		}
		if e.advance(task) {
			e.finishPlan(task, now)
			return true
		}
		return false
	}

	msg := e.stagePendingMessage(task, tool, fields, now)
	task.Status = models.TaskStatusWaitingApproval
	task.AppendLog(now, fmt.Sprintf("step %d staged message %s for approval", step.StepID, msg.ID))
	e.sink.Notify(notify.Notification{
		TaskID:  task.ID,
		Title:   task.Title,
		Message: fmt.Sprintf("Message to %s awaiting approval", fields["recipient"]),
		Kind:    notify.KindAttention,
	})
	// The staging step is complete; approval only gates the dispatch.
	e.advance(task)
	return true
}

// resolveArgs flattens a step's args to strings with {{step_N.field}}
// references substituted from context memory.
func (e *Executor) resolveArgs(step models.PlanStep, task *models.Task) map[string]string {
	return stringArgs(step.Args, task, e)
}

// stringArgs renders arbitrary arg values as strings and resolves refs.
func stringArgs(args map[string]any, task *models.Task, e *Executor) map[string]string {
	out := make(map[string]string, len(args))
	for key, raw := range args {
		var s string
		switch v := raw.(type) {
		case string:
			s = v
		case bool:
			s = strconv.FormatBool(v)
		case float64:
			// JSON numbers decode as float64; keep integers clean.
			if v == float64(int64(v)) {
				s = strconv.FormatInt(int64(v), 10)
			} else {
				s = strconv.FormatFloat(v, 'f', -1, 64)
			}
		case nil:
			continue
		default:
			s = fmt.Sprint(v)
		}
		out[key] = e.resolveRefs(s, task)
	}
	return out
}

// resolveRefs substitutes {{step_N.field}} references from context memory.
func (e *Executor) resolveRefs(s string, task *models.Task) string {
	return models.ReplaceStepRefs(s, func(step int, field string) (string, bool) {
		return task.Variable(fmt.Sprintf("step_%d.%s", step, field))
	})
}

// advance moves the step pointer forward unconditionally. The pointer may
// land one past the plan end, so a task suspended on its final step resumes
// into finishPlan instead of re-running the step. Returns true when the plan
// end was passed.
func (e *Executor) advance(task *models.Task) bool {
	next := task.CurrentStep.Step + 1
	e.setStep(task, next)
	return next > len(task.StructuredPlan)
}

// setStep positions the current step pointer.
func (e *Executor) setStep(task *models.Task, step int) {
	task.CurrentStep.Step = step
	task.CurrentStep.State = ""
	if step >= 1 && step <= len(task.StructuredPlan) {
		task.CurrentStep.Description = task.StructuredPlan[step-1].Description
	} else {
		task.CurrentStep.Description = ""
	}
}

// finishPlan handles running past the last step: discrete tasks complete,
// continuous tasks wrap to step 1 and wait for the next poll.
func (e *Executor) finishPlan(task *models.Task, now time.Time) {
	if task.TaskType == models.TaskTypeDiscrete {
		task.Status = models.TaskStatusCompleted
		task.AppendLog(now, "task completed")
		return
	}
	e.setStep(task, 1)
	task.AppendLog(now, "plan finished, restarting on next poll")
}

// scheduleNext sets NextCheck from the poll frequency. Event-driven tasks
// keep a nil NextCheck and only run when forced.
func (e *Executor) scheduleNext(task *models.Task, now time.Time) {
	task.LastUpdated = now
	if task.PollFrequency.Type == models.PollEvent {
		task.NextCheck = nil
		return
	}
	if task.Status == models.TaskStatusWaiting {
		// A wait polls on its own cadence.
		if mins, err := strconv.Atoi(task.ContextMemory[waitKeyPollMinutes]); err == nil && mins > 0 {
			next := now.Add(time.Duration(mins) * time.Minute)
			task.NextCheck = &next
			task.CurrentStep.PollIntervalMS = int64(mins) * 60 * 1000
			return
		}
	}
	interval := task.PollFrequency.Interval()
	if interval <= 0 {
		interval = models.DefaultPollFrequency().Interval()
	}
	next := now.Add(interval)
	task.NextCheck = &next
	task.CurrentStep.PollIntervalMS = task.PollFrequency.IntervalMS
}

// primaryField picks the value an output_var captures from a result.
func primaryField(res Result) string {
	for _, key := range []string{"result", "value", "reply", "message"} {
		if v, present := res.Fields[key]; present && v != "" {
			return v
		}
	}
	return strconv.FormatBool(res.Success)
}

// sideEffectKeywords marks catalog tool names whose execution reaches an
// external party and therefore needs the approval gate.
var sideEffectKeywords = []string{"send", "email", "message", "post", "reply", "tweet", "publish"}

// isSideEffectingTool reports whether a catalog tool stages its output for
// approval instead of executing directly.
func isSideEffectingTool(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range sideEffectKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// platformFromTool guesses a platform label from a tool name.
func platformFromTool(name string) string {
	lower := strings.ToLower(name)
	for _, p := range []string{"email", "slack", "discord", "sms", "whatsapp"} {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return "chat"
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
