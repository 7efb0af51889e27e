// Package scheduler drives the task executor: it polls the store for due
// tasks on a fixed interval, serializes access per task, runs the login tick
// for event-driven tasks, and watches a drop directory for markdown task
// imports.
package scheduler

import (
	"sync/atomic"
	"time"
)

// EventType identifies what happened during a scheduler cycle.
type EventType string

const (
	// EventTaskTicked fires after a task ran a poll tick.
	EventTaskTicked EventType = "task_ticked"
	// EventTaskCompleted fires when a task reached a terminal success state.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskSuspended fires when a task entered a waiting state.
	EventTaskSuspended EventType = "task_suspended"
	// EventTickError fires when a tick or its persistence failed.
	EventTickError EventType = "tick_error"
	// EventTaskImported fires when a markdown drop file became a task.
	EventTaskImported EventType = "task_imported"
)

// Event is one scheduler observation, consumed by the CLI and TUI.
type Event struct {
	// Type identifies the event.
	Type EventType `json:"type"`
	// TaskID is the affected task, when one applies.
	TaskID string `json:"task_id,omitempty"`
	// Status is the task's status after the event, when one applies.
	Status string `json:"status,omitempty"`
	// Message carries human-readable detail.
	Message string `json:"message,omitempty"`
	// Time is when the event was observed.
	Time time.Time `json:"time"`
}

// Emitter fans scheduler events out to one subscriber over a buffered
// channel. Emission never blocks the scheduling loop: when the buffer is
// full the event is dropped and counted.
type Emitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEmitter creates an Emitter with the given buffer size.
func NewEmitter(bufferSize int) *Emitter {
	return &Emitter{events: make(chan Event, bufferSize)}
}

// Emit sends an event, dropping it if the subscriber is not keeping up.
func (e *Emitter) Emit(event Event) {
	select {
	case e.events <- event:
	default:
		e.droppedCount.Add(1)
	}
}

// DroppedCount returns the total number of dropped events.
func (e *Emitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the read-only subscriber channel.
func (e *Emitter) Events() <-chan Event {
	return e.events
}

// Close closes the subscriber channel. Call only after the scheduling loop
// has stopped.
func (e *Emitter) Close() {
	close(e.events)
}
