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

// ResumeReconciler maintains the single annotated-resume record per user.
// Every pass merges the extracted patch into the prior resume; categories the
// patch does not mention keep their stored values.
type ResumeReconciler struct {
	store     store.Store
	extractor Extractor
	clock     func() time.Time
}

// NewResumeReconciler wires the resume reconciler.
func NewResumeReconciler(s store.Store, extractor Extractor) *ResumeReconciler {
	return &ResumeReconciler{store: s, extractor: extractor, clock: time.Now}
}

// Kind identifies the namespace this reconciler owns.
func (r *ResumeReconciler) Kind() store.Kind { return store.KindResume }

// Reconcile extracts resume information from the conversation and merges it
// into the stored resume.
func (r *ResumeReconciler) Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error) {
	ns := store.Namespace{Kind: store.KindResume, UserID: userID}
	entries, err := r.store.Search(ns)
	if err != nil {
		return Outcome{}, err
	}

	result, err := r.extractor.Extract(ctx, ExtractRequest{
		Kind:         store.KindResume,
		SchemaName:   "AnnotatedResume",
		Existing:     toExistingRecords(entries),
		Conversation: conversation,
		Instruction:  prompts.Extraction(r.clock()),
	})
	if err != nil {
		return Outcome{}, &ExtractionError{Kind: store.KindResume, Err: err}
	}
	if len(result.Records) == 0 {
		return Outcome{Summary: "no resume changes"}, nil
	}

	var current schema.AnnotatedResume
	id := ""
	if len(entries) > 0 {
		id = entries[0].ID
		if err := json.Unmarshal(entries[0].Value, &current); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: decode stored resume: %w", err)
		}
	}
	for _, record := range result.Records {
		var patch schema.AnnotatedResume
		if err := json.Unmarshal(record.Value, &patch); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindResume, Err: fmt.Errorf("decode resume patch: %w", err)}
		}
		current = current.Merge(patch)
	}

	inserted := id == ""
	if inserted {
		id = uuid.NewString()
	}
	value, err := json.Marshal(current)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: encode resume: %w", err)
	}
	out, err := commit(r.store, ns, []write{{id: id, value: value, inserted: inserted}})
	if err != nil {
		return Outcome{}, err
	}
	if inserted {
		out.Summary = "created annotated resume"
	} else {
		out.Summary = "updated annotated resume"
	}
	return out, nil
}

func toExistingRecords(entries []store.Entry) []ExistingRecord {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ExistingRecord, len(entries))
	for i, entry := range entries {
		out[i] = ExistingRecord{ID: entry.ID, Value: entry.Value}
	}
	return out
}
