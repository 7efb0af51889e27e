package planner

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around", "Sure! Here is the plan:\n{\"a\":1}\nLet me know.", `{"a":1}`},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"open { brace"}`, `{"a":"open { brace"}`},
		{"escaped quote", `{"a":"say \"hi\" {now}"}`, `{"a":"say \"hi\" {now}"}`},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
		{"no object", "no json here", ""},
		{"unbalanced", `{"a":1`, ""},
	}
	for _, tt := range tests {
		if got := ExtractJSONObject(tt.input); got != tt.want {
			t.Errorf("%s: ExtractJSONObject(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}
