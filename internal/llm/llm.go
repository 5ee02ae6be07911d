package llm

import (
	"context"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleTool marks confirmations emitted by reconcilers after an action was
	// dispatched. Tool messages stay in the history so the model sees what it
	// already saved.
	RoleTool Role = "tool"
)

// Message is one turn of conversation. Name optionally tags the speaker in
// simulated interviews ("expert" for the analyst, "candidate" for the user's
// stand-in).
type Message struct {
	Role    Role   `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// UpdateAction is the single structured action a routing decision may carry.
// The agent binds exactly one memory-update tool, so a decision holds at most
// one of these by construction.
type UpdateAction struct {
	UpdateType string `json:"update_type"`
}

// Decision is the outcome of one router-facing model call: a conversational
// reply, plus an optional memory-update request.
type Decision struct {
	Reply  string
	Action *UpdateAction
}

// Client is the inference collaborator. Complete produces a free-form reply;
// Decide additionally exposes the memory-update tool and surfaces at most one
// action; CompleteStructured constrains the output to a JSON object decoded
// into out.
type Client interface {
	Complete(ctx context.Context, system string, msgs []Message) (Message, error)
	Decide(ctx context.Context, system string, msgs []Message) (Decision, error)
	CompleteStructured(ctx context.Context, system string, msgs []Message, name string, out any) error
}

// Transcript flattens a message sequence into one readable string, one
// speaker-prefixed paragraph per message.
func Transcript(msgs []Message) string {
	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		speaker := msg.Name
		if speaker == "" {
			speaker = string(msg.Role)
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}
