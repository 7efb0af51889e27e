package engine

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		left, op, right string
		want            bool
	}{
		// Numeric path: "10" > "9" numerically even though "10" < "9" as strings.
		{"10", ">", "9", true},
		{"9", ">", "10", false},
		{"3.5", ">=", "3.5", true},
		{"2", "<", "10", true},
		{"5", "==", "5.0", true},
		{"5", "!=", "6", true},
		// String path.
		{"apple", "contains", "ppl", true},
		{"apple", "contains", "xyz", false},
		{"apple", "starts_with", "app", true},
		{"apple", "ends_with", "le", true},
		{"banana", "==", "banana", true},
		{"banana", "!=", "banana", false},
		// Mixed operands fall back to lexicographic comparison.
		{"abc", "<", "abd", true},
	}
	for _, tt := range tests {
		got, err := Compare(tt.left, tt.op, tt.right)
		if err != nil {
			t.Errorf("Compare(%q, %q, %q) error: %v", tt.left, tt.op, tt.right, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Compare(%q, %q, %q) = %v, want %v", tt.left, tt.op, tt.right, got, tt.want)
		}
	}
}

func TestCompare_UnknownOperator(t *testing.T) {
	if _, err := Compare("a", "~=", "b"); err == nil {
		t.Error("expected error for unknown operator")
	}
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"10 > 9", true},
		{"true == true", true},
		{"done != pending", true},
		{"5 >= 6", false},
		{"hello contains ell", true},
		{"hello starts_with he", true},
		{"'quoted value' == quoted value", true},
		{"true", true},
		{"false", false},
		{"yes", true},
		{"0", false},
	}
	for _, tt := range tests {
		got, err := EvalExpression(tt.expr)
		if err != nil {
			t.Errorf("EvalExpression(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("EvalExpression(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvalExpression_Empty(t *testing.T) {
	if _, err := EvalExpression("  "); err == nil {
		t.Error("expected error for empty condition")
	}
}

func TestEvaluateConditionPrimitive(t *testing.T) {
	res := evaluateCondition(map[string]string{"left": "10", "operator": ">", "right": "9"})
	if !res.Success || res.Fields["result"] != "true" {
		t.Errorf("numeric comparison: %+v", res)
	}

	res = evaluateCondition(map[string]string{"left": "apple", "operator": "contains", "right": "ppl"})
	if !res.Success || res.Fields["result"] != "true" {
		t.Errorf("string comparison: %+v", res)
	}

	res = evaluateCondition(map[string]string{"operator": ">"})
	if res.Success {
		t.Error("expected failure for missing operands")
	}
}

func TestGotoStepPrimitive(t *testing.T) {
	res := gotoStep(map[string]string{"target_step": "3"})
	if !res.Success || res.Action != ActionGoto || res.Fields["target_step"] != "3" {
		t.Errorf("unexpected result: %+v", res)
	}

	res = gotoStep(map[string]string{"target_step": "zero"})
	if res.Success {
		t.Error("expected failure for non-numeric target")
	}

	res = gotoStep(map[string]string{})
	if res.Success {
		t.Error("expected failure for missing target")
	}
}

func TestCompleteTaskPrimitive(t *testing.T) {
	res := completeTask(map[string]string{"summary": "done"})
	if !res.Success || res.Action != ActionComplete || res.Fields["summary"] != "done" {
		t.Errorf("unexpected result: %+v", res)
	}
}
