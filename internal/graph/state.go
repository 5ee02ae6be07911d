package graph

import (
	"time"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/schema"
)

// Phase is the position of the agent in its top-level state machine.
type Phase string

const (
	// PhaseIdle accepts conversational turns and routes memory updates.
	PhaseIdle Phase = "idle"
	// PhaseAwaitingFeedback is the human gate: an interview has been prepared
	// and the proposed analysts await approval or editorial feedback.
	PhaseAwaitingFeedback Phase = "awaiting_feedback"
)

// State is the resumable agent state. It is persisted as a checkpoint
// whenever the agent parks at the human gate, so a restarted process picks
// the gate conversation back up instead of losing the prepared interview.
type State struct {
	UserID    string           `json:"user_id"`
	Phase     Phase            `json:"phase"`
	Messages  []llm.Message    `json:"messages"`
	Analysts  []schema.Analyst `json:"analysts,omitempty"`
	Job       string           `json:"job,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s State) clone() State {
	out := s
	out.Messages = append([]llm.Message(nil), s.Messages...)
	out.Analysts = append([]schema.Analyst(nil), s.Analysts...)
	return out
}
