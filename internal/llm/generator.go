// Package llm provides the text generation capability consumed by the
// planner and the task executor. The transport is opaque to callers:
// a prompt (plus optional system prompt) goes in, text comes out.
package llm

import "context"

// Generator produces text from a prompt. Implementations must be safe for
// concurrent use.
type Generator interface {
	// Generate returns the model's text response for the given prompt.
	// A non-empty system prompt is passed through when the transport
	// supports one.
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt, system string) (string, error)

// Generate calls the wrapped function.
func (f GeneratorFunc) Generate(ctx context.Context, prompt, system string) (string, error) {
	return f(ctx, prompt, system)
}
