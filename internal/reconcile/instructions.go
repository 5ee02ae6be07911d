package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
	"github.com/seekwell/seekwell/internal/store"
)

// InstructionsKey is the fixed id of the single instructions memo per user.
const InstructionsKey = "user_instructions"

// InstructionsReconciler rewrites the user's update-preferences memo. Unlike
// the collection kinds there is no insert/update distinction: the model reads
// the prior memo plus the conversation and produces one replacement memo that
// overwrites the stored key.
type InstructionsReconciler struct {
	store  store.Store
	client llm.Client
}

// NewInstructionsReconciler wires the instructions reconciler.
func NewInstructionsReconciler(s store.Store, client llm.Client) *InstructionsReconciler {
	return &InstructionsReconciler{store: s, client: client}
}

// Kind identifies the namespace this reconciler owns.
func (r *InstructionsReconciler) Kind() store.Kind { return store.KindInstructions }

// Reconcile produces a fresh memo from the prior memo and the conversation
// and overwrites the single stored record.
func (r *InstructionsReconciler) Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error) {
	ns := store.Namespace{Kind: store.KindInstructions, UserID: userID}
	current := ""
	entry, err := r.store.Get(ns, InstructionsKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return Outcome{}, err
	default:
		var memo schema.Instructions
		if err := json.Unmarshal(entry.Value, &memo); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: decode instructions: %w", err)
		}
		current = memo.Memory
	}

	msgs := append(append([]llm.Message{}, conversation...), llm.Message{
		Role:    llm.RoleUser,
		Content: "Please update the instructions based on the conversation",
	})
	reply, err := r.client.Complete(ctx, prompts.RewriteInstructions(current), msgs)
	if err != nil {
		return Outcome{}, &ExtractionError{Kind: store.KindInstructions, Err: err}
	}

	value, err := json.Marshal(schema.Instructions{Memory: reply.Content})
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: encode instructions: %w", err)
	}
	out, err := commit(r.store, ns, []write{{id: InstructionsKey, value: value, inserted: current == ""}})
	if err != nil {
		return Outcome{}, err
	}
	out.Summary = "updated instructions"
	return out, nil
}
