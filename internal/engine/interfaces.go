package engine

import (
	"context"
	"time"
)

// Messenger delivers outbound messages on external channels. It fires only
// for approved pending messages, auto-send tasks, and wait-for-reply
// follow-ups; everything else stays behind the approval gate.
type Messenger interface {
	// Send delivers one message on the named platform.
	Send(ctx context.Context, platform, recipient, subject, body string) error
}

// InboundMessage is one message received on an external channel.
type InboundMessage struct {
	// From identifies the sender.
	From string `json:"from"`
	// Text is the message body.
	Text string `json:"text"`
	// Received is when the message arrived.
	Received time.Time `json:"received"`
	// ConversationID threads the message, when the platform supports it.
	ConversationID string `json:"conversation_id,omitempty"`
}

// MessageReader polls external channels for inbound messages.
type MessageReader interface {
	// FetchSince returns messages from the contact newer than since.
	FetchSince(ctx context.Context, platform, contact, conversationID string, since time.Time) ([]InboundMessage, error)
}

// ToolInvoker executes non-primitive catalog tools. The concrete
// integrations (browser automation, email transport, credential handling)
// live behind this interface.
type ToolInvoker interface {
	// Invoke runs the named tool and returns its output fields.
	Invoke(ctx context.Context, name string, args map[string]string) (map[string]string, error)
}
