package engine

import (
	"strconv"

	"github.com/ShayCichocki/aide/pkg/models"
)

// saveVariable stores args["value"] under args["name"] in context memory.
func saveVariable(args map[string]string, task *models.Task) Result {
	name := args["name"]
	if name == "" {
		return fail("save_variable requires a name")
	}
	value, present := args["value"]
	if !present {
		return fail("save_variable requires a value for %q", name)
	}
	task.SetVariable(name, value)
	return ok(map[string]string{"name": name, "value": value})
}

// getVariable reads args["name"] from context memory. A missing variable is
// a normal outcome, reported through the exists field.
func getVariable(args map[string]string, task *models.Task) Result {
	name := args["name"]
	if name == "" {
		return fail("get_variable requires a name")
	}
	value, exists := task.Variable(name)
	return ok(map[string]string{
		"name":   name,
		"value":  value,
		"exists": strconv.FormatBool(exists),
	})
}

// checkVariable tests existence and, when args carry "equals" or
// "not_equals", compares the stored value.
func checkVariable(args map[string]string, task *models.Task) Result {
	name := args["name"]
	if name == "" {
		return fail("check_variable requires a name")
	}
	value, exists := task.Variable(name)

	fields := map[string]string{
		"name":   name,
		"value":  value,
		"exists": strconv.FormatBool(exists),
	}

	if want, present := args["equals"]; present {
		fields["matches"] = strconv.FormatBool(exists && value == want)
	} else if want, present := args["not_equals"]; present {
		fields["matches"] = strconv.FormatBool(!exists || value != want)
	}

	return ok(fields)
}

// incrementCounter adds args["amount"] (default 1) to a numeric variable,
// creating it at 0 when absent.
func incrementCounter(args map[string]string, task *models.Task) Result {
	name := args["name"]
	if name == "" {
		return fail("increment_counter requires a name")
	}

	amount := int64(1)
	if raw, present := args["amount"]; present && raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail("increment_counter amount %q is not numeric", raw)
		}
		amount = parsed
	}

	current := int64(0)
	if raw, exists := task.Variable(name); exists {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail("increment_counter: variable %q holds non-numeric value %q", name, raw)
		}
		current = parsed
	}

	next := current + amount
	task.SetVariable(name, strconv.FormatInt(next, 10))
	return ok(map[string]string{
		"name":  name,
		"value": strconv.FormatInt(next, 10),
	})
}
