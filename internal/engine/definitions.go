package engine

import "github.com/ShayCichocki/aide/internal/tools"

// Definitions returns the primitive toolset as catalog entries so the
// builder can ground plan steps against the same vocabulary the executor
// interprets.
func Definitions() []tools.Tool {
	str := func(desc string) tools.Property { return tools.Property{Type: "string", Description: desc} }
	num := func(desc string) tools.Property { return tools.Property{Type: "integer", Description: desc} }

	return []tools.Tool{
		{
			Name:        "save_variable",
			Description: "Save a value into the task's persistent context memory.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"name":  str("Variable name"),
				"value": str("Value to store"),
			}, Required: []string{"name", "value"}},
		},
		{
			Name:        "get_variable",
			Description: "Read a variable from context memory. Reports whether it exists.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"name": str("Variable name"),
			}, Required: []string{"name"}},
		},
		{
			Name:        "check_variable",
			Description: "Check a variable's existence, optionally comparing with equals or not_equals.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"name":       str("Variable name"),
				"equals":     str("Match only when the value equals this"),
				"not_equals": str("Match only when the value differs from this"),
			}, Required: []string{"name"}},
		},
		{
			Name:        "increment_counter",
			Description: "Add to a numeric variable, creating it at 0 when absent.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"name":   str("Counter variable name"),
				"amount": num("Amount to add (default 1)"),
			}, Required: []string{"name"}},
		},
		{
			Name:        "parse_time",
			Description: "Parse a clock string like '12pm', '2:30 PM' or '14:00' into 24-hour hour and minute.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"time": str("Clock string to parse"),
			}, Required: []string{"time"}},
		},
		{
			Name:        "check_time_passed",
			Description: "Check whether a target time has passed today, within a tolerance window. Use instead of exact-time checks; the process may wake late.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"target_hour":       num("Target hour, 0-23"),
				"target_minute":     num("Target minute, 0-59 (default 0)"),
				"tolerance_minutes": num("Grace window after the target (default 60)"),
			}, Required: []string{"target_hour"}},
		},
		{
			Name:        "is_new_day",
			Description: "Compare today against a stored YYYY-MM-DD date to reset daily flags.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"last_date": str("Previously stored ISO date"),
			}},
		},
		{
			Name:        "evaluate_condition",
			Description: "Compare two values with ==, !=, >, <, >=, <=, contains, starts_with or ends_with. Numeric comparison when both sides are numbers.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"left":     str("Left operand"),
				"operator": str("Comparison operator"),
				"right":    str("Right operand"),
			}, Required: []string{"left", "operator", "right"}},
		},
		{
			Name:        "goto_step",
			Description: "Jump execution to another plan step.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"target_step": num("Step number to jump to"),
			}, Required: []string{"target_step"}},
		},
		{
			Name:        "complete_task",
			Description: "Finish a discrete task. Not valid for continuous tasks.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"summary": str("Optional completion summary"),
			}},
		},
		{
			Name:        "format_string",
			Description: "Substitute {placeholder} values into a template. Arrays of messages render as a readable list.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"template": str("Template containing {placeholder} markers"),
			}, Required: []string{"template"}},
		},
		{
			Name:        "send_reminder",
			Description: "Deliver a reminder notification to the user. Direct, non-blocking.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"message": str("Reminder text"),
				"title":   str("Optional title"),
			}, Required: []string{"message"}},
		},
		{
			Name:        "notify_user",
			Description: "Notify the user. With type 'question' the task suspends until they answer.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"message":    str("Notification or question text"),
				"title":      str("Optional title"),
				"type":       str("'info' (default) or 'question'"),
				"answer_var": str("Variable receiving the answer (question type)"),
			}, Required: []string{"message"}},
		},
		{
			Name:        "send_chat_message",
			Description: "Send a message to someone on an external channel. Staged for approval unless the task auto-sends.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"platform":  str("Delivery channel, e.g. email or slack"),
				"recipient": str("Who to send to"),
				"subject":   str("Optional subject"),
				"message":   str("Message body"),
			}, Required: []string{"recipient", "message"}},
		},
		{
			Name:        "ask_user_question",
			Description: "Ask the user a question. The task suspends until they answer.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"question":   str("Question text"),
				"answer_var": str("Variable receiving the answer"),
			}, Required: []string{"question"}},
		},
		{
			Name:        "wait_for_reply",
			Description: "Wait for an inbound reply satisfying success criteria, with bounded follow-ups before surfacing for human attention.",
			InputSchema: tools.InputSchema{Type: "object", Properties: map[string]tools.Property{
				"platform":              str("Channel to poll"),
				"contact":               str("Who the reply is expected from"),
				"original_request":      str("What was asked of them"),
				"success_criteria":      str("What counts as a satisfying reply"),
				"conversation_id":       str("Optional conversation thread"),
				"poll_interval_minutes": num("Poll interval (default 5)"),
				"followup_after_hours":  num("Hours before a follow-up (default 24)"),
				"max_followups":         num("Maximum follow-ups (default 3)"),
			}, Required: []string{"platform", "contact", "success_criteria"}},
		},
	}
}
