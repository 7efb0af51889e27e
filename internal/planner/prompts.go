package planner

// architectPrompt asks for tool-agnostic logical steps. Tools are summarized
// by category only to keep the prompt compact; schemas come later.
const architectPrompt = `Break this user request into an ordered list of logical steps for an autonomous assistant. Steps are plain-language descriptions of intent, not tool calls.

User request:
%s

Available capability categories:
%s

Return ONLY a JSON object with this exact structure (no other text):
{
  "title": "Short task title",
  "task_type": "discrete|continuous",
  "user_intent": "What the user actually wants, restated",
  "success_criteria": "How to know the task is done (omit for continuous tasks)",
  "logical_steps": ["step one", "step two"],
  "data_flow": {"2": ["1"]}
}

Guidelines:
- task_type is "continuous" for recurring or ongoing work (daily reminders, monitoring), "discrete" for one-shot work with a clear finish.
- Continuous tasks have no success_criteria; they run until cancelled.
- data_flow maps a step's index to the earlier step indices it consumes data from. Only reference earlier steps.
- Time-based work runs on a polling schedule that may wake late. Express timing as "check whether the target time has passed" plus a once-per-day guard, never as "fire at the exact moment".
- Keep steps small: one action or one check per step.`

// builderPrompt grounds logical steps in concrete tool invocations.
const builderPrompt = `Ground each logical step of this plan in exactly one tool invocation.

User request:
%s

Logical steps:
%s

Available tools with input schemas:
%s

Return ONLY a JSON object with this exact structure (no other text):
{
  "title": "Short task title",
  "task_type": "discrete|continuous",
  "success_criteria": "or omit for continuous tasks",
  "requires_task": true,
  "plan": [
    {
      "step_id": 1,
      "tool": "tool_name",
      "description": "What this step does",
      "args": {"name": "value"},
      "output_var": "variable_name or omit",
      "dependencies": [],
      "is_conditional": false,
      "condition": "expression or omit"
    }
  ]
}

Rules:
- step_id values are unique and ascending from 1.
- Use {{step_N.field}} inside arg values to reference an earlier step's output. N must be smaller than the referencing step_id.
- dependencies lists the earlier step_ids a step consumes data from.
- A step that should only run under a condition sets is_conditional=true and puts the expression in condition (operators: ==, !=, >, <, >=, <=, contains, starts_with, ends_with).
- If a logical step cannot be grounded in any available tool, keep the step and set its tool to "ERROR". Never silently drop a step.
- Set requires_task=false only when the request needs no durable task at all (for example a one-off question already answered).%s`

// builderFeedback is appended to the builder prompt on refinement rounds.
const builderFeedback = `

A previous version of this plan failed validation. Address every issue below.

Issues:
%s

Suggestions:
%s`

// validatorPrompt asks whether the plan actually satisfies the request.
const validatorPrompt = `Review whether executing this plan would actually satisfy the user's request.

User request:
%s

Plan:
%s

Consider:
1. Does the plan cover the whole request, not just part of it?
2. Are the tool arguments plausible for what each step claims to do?
3. Will the data flow between steps work ({{step_N.field}} references)?
4. For recurring work, does the plan avoid firing more than once per occurrence?

Return ONLY a JSON object with this exact structure (no other text):
{
  "isValid": true,
  "reasoning": "Why the plan does or does not satisfy the request",
  "issues": ["concrete problem"],
  "suggestions": ["actionable fix"]
}

Be strict but fair: isValid=true only when the plan truly satisfies the request.`
