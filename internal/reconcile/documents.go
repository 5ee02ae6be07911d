package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
	"github.com/seekwell/seekwell/internal/store"
)

// DocumentsReconciler maintains the per-user document collection with the
// same insert-or-update discipline as applications: identity is matched on
// title plus source, and documents are never deleted.
type DocumentsReconciler struct {
	store     store.Store
	extractor Extractor
	matcher   Matcher
	clock     func() time.Time
}

// NewDocumentsReconciler wires the documents reconciler with the default
// entity-matching policy.
func NewDocumentsReconciler(s store.Store, extractor Extractor) *DocumentsReconciler {
	return &DocumentsReconciler{store: s, extractor: extractor, matcher: HeuristicMatcher{}, clock: time.Now}
}

// Kind identifies the namespace this reconciler owns.
func (r *DocumentsReconciler) Kind() store.Kind { return store.KindDocuments }

// Reconcile extracts document changes from the conversation and applies them
// insert-or-update by identity.
func (r *DocumentsReconciler) Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error) {
	ns := store.Namespace{Kind: store.KindDocuments, UserID: userID}
	entries, err := r.store.Search(ns)
	if err != nil {
		return Outcome{}, err
	}
	known := make(map[string]schema.Document, len(entries))
	for _, entry := range entries {
		var doc schema.Document
		if err := json.Unmarshal(entry.Value, &doc); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: decode stored document %s: %w", entry.ID, err)
		}
		known[entry.ID] = doc
	}

	result, err := r.extractor.Extract(ctx, ExtractRequest{
		Kind:         store.KindDocuments,
		SchemaName:   "Document",
		Existing:     toExistingRecords(entries),
		Conversation: conversation,
		Instruction:  prompts.Extraction(r.clock()),
	})
	if err != nil {
		return Outcome{}, &ExtractionError{Kind: store.KindDocuments, Err: err}
	}

	st := newStaging()
	for _, record := range result.Records {
		var patch schema.Document
		if err := json.Unmarshal(record.Value, &patch); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindDocuments, Err: fmt.Errorf("decode document patch: %w", err)}
		}
		id := record.ID
		switch {
		case id != "":
			if _, ok := known[id]; !ok {
				return Outcome{}, &ExtractionError{Kind: store.KindDocuments, Err: fmt.Errorf("update refers to unknown id %s", id)}
			}
		default:
			if matched, ok := r.matcher.MatchDocument(known, patch); ok {
				id = matched
			}
		}
		inserted := id == ""
		if inserted {
			id = uuid.NewString()
		}
		merged := known[id].Merge(patch)
		known[id] = merged
		value, err := json.Marshal(merged)
		if err != nil {
			return Outcome{}, fmt.Errorf("reconcile: encode document: %w", err)
		}
		st.put(id, value, inserted)
	}

	out, err := commit(r.store, ns, st.list())
	if err != nil {
		return Outcome{}, err
	}
	out.Summary = collectionSummary("document", out)
	return out, nil
}
