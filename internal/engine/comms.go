package engine

// Communication primitives compute what should be delivered and hand the
// delivery decision to the executor via the result action: direct
// notifications go straight to the notification sink, questions suspend the
// task, and external messages are staged behind the approval gate.

// sendReminder implements send_reminder over args["message"].
func sendReminder(args map[string]string) Result {
	message := args["message"]
	if message == "" {
		return fail("send_reminder requires a message")
	}
	r := ok(map[string]string{
		"message": message,
		"title":   args["title"],
	})
	r.Action = ActionNotify
	return r
}

// notifyUser implements notify_user. With type "question" it behaves like
// ask_user_question and suspends the task for input.
func notifyUser(args map[string]string) Result {
	message := args["message"]
	if message == "" {
		return fail("notify_user requires a message")
	}

	if args["type"] == "question" {
		r := ok(map[string]string{
			"question":   message,
			"answer_var": answerVar(args),
		})
		r.Action = ActionAskUser
		return r
	}

	r := ok(map[string]string{
		"message": message,
		"title":   args["title"],
	})
	r.Action = ActionNotify
	return r
}

// askUserQuestion implements ask_user_question over args["question"].
func askUserQuestion(args map[string]string) Result {
	question := args["question"]
	if question == "" {
		question = args["message"]
	}
	if question == "" {
		return fail("ask_user_question requires a question")
	}
	r := ok(map[string]string{
		"question":   question,
		"answer_var": answerVar(args),
	})
	r.Action = ActionAskUser
	return r
}

// answerVar picks the variable the eventual reply should populate.
func answerVar(args map[string]string) string {
	if v := args["answer_var"]; v != "" {
		return v
	}
	if v := args["output_var"]; v != "" {
		return v
	}
	return "user_answer"
}

// sendChatMessage implements send_chat_message. The message is side-effecting
// so it is staged for approval unless the task has autoSend set.
func sendChatMessage(args map[string]string) Result {
	message := args["message"]
	if message == "" {
		return fail("send_chat_message requires a message")
	}
	recipient := args["recipient"]
	if recipient == "" {
		recipient = args["contact"]
	}
	if recipient == "" {
		return fail("send_chat_message requires a recipient")
	}

	r := ok(map[string]string{
		"message":   message,
		"recipient": recipient,
		"platform":  args["platform"],
		"subject":   args["subject"],
	})
	r.Action = ActionSendMessage
	return r
}

// waitForReplyPrimitive implements wait_for_reply argument validation; the
// executor owns the actual wait-state bookkeeping.
func waitForReplyPrimitive(args map[string]string) Result {
	platform := args["platform"]
	contact := args["contact"]
	if platform == "" || contact == "" {
		return fail("wait_for_reply requires platform and contact")
	}
	if args["success_criteria"] == "" {
		return fail("wait_for_reply requires success_criteria")
	}

	fields := map[string]string{
		"platform":         platform,
		"contact":          contact,
		"success_criteria": args["success_criteria"],
		"original_request": args["original_request"],
		"conversation_id":  args["conversation_id"],
	}
	r := ok(fields)
	r.Action = ActionWaitReply
	return r
}
