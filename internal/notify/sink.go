// Package notify carries user-facing notifications from the task executor
// to whatever surface presents them. The sink is passed in explicitly and
// owned by the process lifecycle; there is no module-level queue.
package notify

import "sync/atomic"

// Kind classifies a notification.
type Kind string

const (
	// KindInfo is a plain informational update.
	KindInfo Kind = "info"
	// KindReminder is a user-requested reminder firing.
	KindReminder Kind = "reminder"
	// KindQuestion is a blocking question that expects an answer.
	KindQuestion Kind = "question"
	// KindAttention flags a task that needs human intervention.
	KindAttention Kind = "attention"
)

// Notification is one user-facing message emitted by a task.
type Notification struct {
	// TaskID identifies the originating task.
	TaskID string
	// Title is the short display line.
	Title string
	// Message is the body text.
	Message string
	// Kind classifies the notification.
	Kind Kind
	// AnswerVar names the variable a question's answer should populate.
	AnswerVar string
}

// Sink receives notifications. Implementations must not block the caller.
type Sink interface {
	// Notify delivers one notification.
	Notify(n Notification)
}

// ChannelSink buffers notifications on a channel for a consumer to drain.
// When the buffer is full the notification is dropped and counted rather
// than blocking the executor.
type ChannelSink struct {
	ch      chan Notification
	dropped atomic.Uint64
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{ch: make(chan Notification, bufferSize)}
}

// Notify enqueues the notification, dropping it if the buffer is full.
func (s *ChannelSink) Notify(n Notification) {
	select {
	case s.ch <- n:
	default:
		s.dropped.Add(1)
	}
}

// Notifications returns the read side of the sink.
func (s *ChannelSink) Notifications() <-chan Notification {
	return s.ch
}

// Dropped returns how many notifications were dropped due to a full buffer.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close closes the channel. Call only after the executor has stopped.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// NopSink discards all notifications.
type NopSink struct{}

// Notify discards the notification.
func (NopSink) Notify(Notification) {}
