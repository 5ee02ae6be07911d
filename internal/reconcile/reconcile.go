// Package reconcile merges new conversational information into the structured
// record store, one record kind per pass. Collection kinds insert or update by
// identity and never delete; the instructions kind overwrites its single memo.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/store"
)

// ExistingRecord is one stored record handed to the extraction collaborator.
type ExistingRecord struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// ExtractRequest asks the extraction collaborator to reconcile the
// conversation against the existing records of one kind.
type ExtractRequest struct {
	Kind       store.Kind
	SchemaName string
	// Existing may be empty; the extractor must then produce pure insertions.
	Existing []ExistingRecord
	// Conversation is the history minus the trailing routing decision.
	Conversation []llm.Message
	// Instruction is the system prompt framing the extraction.
	Instruction string
}

// ExtractedRecord is one insert or update produced by the extractor. An empty
// ID marks an insertion; a non-empty ID must refer to an existing record.
type ExtractedRecord struct {
	ID    string          `json:"id,omitempty"`
	Value json.RawMessage `json:"value"`
}

// ExtractResult carries the extractor's output.
type ExtractResult struct {
	Records []ExtractedRecord `json:"records"`
}

// Extractor is the schema-constrained extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

// ExtractionError wraps a collaborator failure so callers can distinguish it
// from routing or store errors. The store is never touched when extraction
// fails.
type ExtractionError struct {
	Kind store.Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("reconcile: extraction for %s failed: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Outcome reports what one reconciliation pass wrote. Exactly one Summary is
// produced per invocation, derived from the ids actually written.
type Outcome struct {
	Inserted []string
	Updated  []string
	Summary  string
}

// Reconciler merges conversation content into one record kind for one user.
type Reconciler interface {
	Kind() store.Kind
	Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error)
}

// write is a staged store mutation. Writes are staged only after the whole
// extraction pass validated, so an extraction failure never reaches the store.
type write struct {
	id       string
	value    json.RawMessage
	inserted bool
}

func commit(s store.Store, ns store.Namespace, writes []write) (Outcome, error) {
	var out Outcome
	for _, w := range writes {
		if err := s.Put(ns, w.id, w.value); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: commit %s/%s: %w", ns, w.id, err)
		}
		if w.inserted {
			out.Inserted = append(out.Inserted, w.id)
		} else {
			out.Updated = append(out.Updated, w.id)
		}
	}
	return out, nil
}

func countNoun(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
