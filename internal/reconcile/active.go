package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
	"github.com/seekwell/seekwell/internal/store"
)

// ActiveApplicationKey is the fixed id of the single active-application
// record per user.
const ActiveApplicationKey = "active"

// ActiveApplicationReconciler sets or refreshes the application currently
// under interview. There is one record per user; starting a new interview
// merges the extracted posting into whatever was active before.
type ActiveApplicationReconciler struct {
	store     store.Store
	extractor Extractor
	clock     func() time.Time
}

// NewActiveApplicationReconciler wires the active-application reconciler.
func NewActiveApplicationReconciler(s store.Store, extractor Extractor) *ActiveApplicationReconciler {
	return &ActiveApplicationReconciler{store: s, extractor: extractor, clock: time.Now}
}

// Kind identifies the namespace this reconciler owns.
func (r *ActiveApplicationReconciler) Kind() store.Kind { return store.KindActiveApplication }

// Reconcile extracts the application under discussion and merges it into the
// active-application record.
func (r *ActiveApplicationReconciler) Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error) {
	ns := store.Namespace{Kind: store.KindActiveApplication, UserID: userID}
	entries, err := r.store.Search(ns)
	if err != nil {
		return Outcome{}, err
	}

	result, err := r.extractor.Extract(ctx, ExtractRequest{
		Kind:         store.KindActiveApplication,
		SchemaName:   "Application",
		Existing:     toExistingRecords(entries),
		Conversation: conversation,
		Instruction:  prompts.Extraction(r.clock()),
	})
	if err != nil {
		return Outcome{}, &ExtractionError{Kind: store.KindActiveApplication, Err: err}
	}
	if len(result.Records) == 0 {
		return Outcome{Summary: "no active application changes"}, nil
	}

	var current schema.Application
	id := ActiveApplicationKey
	inserted := len(entries) == 0
	if !inserted {
		id = entries[0].ID
		if err := json.Unmarshal(entries[0].Value, &current); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: decode active application: %w", err)
		}
	}
	for _, record := range result.Records {
		var patch schema.Application
		if err := json.Unmarshal(record.Value, &patch); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindActiveApplication, Err: fmt.Errorf("decode application patch: %w", err)}
		}
		if err := patch.Validate(); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindActiveApplication, Err: err}
		}
		current = current.Merge(patch)
	}

	value, err := json.Marshal(current)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: encode active application: %w", err)
	}
	out, err := commit(r.store, ns, []write{{id: id, value: value, inserted: inserted}})
	if err != nil {
		return Outcome{}, err
	}
	out.Summary = "updated active application"
	return out, nil
}
