package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// conditionOperators lists the recognized operators, longest first so that
// ">=" is never split as ">".
var conditionOperators = []string{
	">=", "<=", "==", "!=", "starts_with", "ends_with", "contains", ">", "<",
}

// Compare evaluates left <op> right. When both operands parse as numbers the
// comparison is numeric; otherwise it falls back to string semantics.
func Compare(left, operator, right string) (bool, error) {
	lf, lerr := strconv.ParseFloat(strings.TrimSpace(left), 64)
	rf, rerr := strconv.ParseFloat(strings.TrimSpace(right), 64)
	numeric := lerr == nil && rerr == nil

	switch operator {
	case "==":
		if numeric {
			return lf == rf, nil
		}
		return left == right, nil
	case "!=":
		if numeric {
			return lf != rf, nil
		}
		return left != right, nil
	case ">":
		if numeric {
			return lf > rf, nil
		}
		return left > right, nil
	case "<":
		if numeric {
			return lf < rf, nil
		}
		return left < right, nil
	case ">=":
		if numeric {
			return lf >= rf, nil
		}
		return left >= right, nil
	case "<=":
		if numeric {
			return lf <= rf, nil
		}
		return left <= right, nil
	case "contains":
		return strings.Contains(left, right), nil
	case "starts_with":
		return strings.HasPrefix(left, right), nil
	case "ends_with":
		return strings.HasSuffix(left, right), nil
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}

// EvalExpression evaluates a condition expression of the form
// "left operator right" after template resolution. A bare value with no
// operator is truthy when it reads as true/yes/1.
func EvalExpression(expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("empty condition")
	}

	for _, op := range conditionOperators {
		var idx int
		if op == "contains" || op == "starts_with" || op == "ends_with" {
			// Word operators must be whitespace-delimited to avoid matching
			// inside operand text.
			idx = strings.Index(expr, " "+op+" ")
			if idx < 0 {
				continue
			}
			left := strings.TrimSpace(expr[:idx])
			right := strings.TrimSpace(expr[idx+len(op)+2:])
			return Compare(unquote(left), op, unquote(right))
		}
		idx = strings.Index(expr, op)
		if idx < 0 {
			continue
		}
		// Skip "<" or ">" if they are really part of "<=" / ">=" found later.
		left := strings.TrimSpace(expr[:idx])
		right := strings.TrimSpace(expr[idx+len(op):])
		if left == "" || right == "" {
			return false, fmt.Errorf("malformed condition %q", expr)
		}
		return Compare(unquote(left), op, unquote(right))
	}

	return isTruthy(unquote(expr)), nil
}

// unquote strips one layer of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// isTruthy interprets a bare value as a boolean.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// evaluateCondition implements the evaluate_condition primitive over
// args left, operator, right.
func evaluateCondition(args map[string]string) Result {
	operator := args["operator"]
	if operator == "" {
		return fail("evaluate_condition requires an operator")
	}
	left, leftPresent := args["left"]
	right, rightPresent := args["right"]
	if !leftPresent || !rightPresent {
		return fail("evaluate_condition requires left and right operands")
	}

	result, err := Compare(left, operator, right)
	if err != nil {
		return fail("evaluate_condition: %v", err)
	}
	return ok(map[string]string{"result": strconv.FormatBool(result)})
}

// gotoStep implements the goto_step primitive over args["target_step"].
func gotoStep(args map[string]string) Result {
	raw := args["target_step"]
	if raw == "" {
		raw = args["step"]
	}
	if raw == "" {
		return fail("goto_step requires a target_step")
	}
	target, err := strconv.Atoi(raw)
	if err != nil || target < 1 {
		return fail("goto_step: invalid target_step %q", raw)
	}
	r := ok(map[string]string{"target_step": strconv.Itoa(target)})
	r.Action = ActionGoto
	return r
}

// completeTask implements the complete_task primitive.
func completeTask(args map[string]string) Result {
	r := ok(map[string]string{"summary": args["summary"]})
	r.Action = ActionComplete
	return r
}
