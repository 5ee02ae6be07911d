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

// ApplicationsReconciler maintains the per-user job application collection.
// One pass may insert new applications and update existing ones together;
// applications not mentioned in the conversation are left untouched, and
// nothing is ever deleted.
type ApplicationsReconciler struct {
	store     store.Store
	extractor Extractor
	matcher   Matcher
	clock     func() time.Time
}

// NewApplicationsReconciler wires the applications reconciler with the
// default entity-matching policy.
func NewApplicationsReconciler(s store.Store, extractor Extractor) *ApplicationsReconciler {
	return &ApplicationsReconciler{store: s, extractor: extractor, matcher: HeuristicMatcher{}, clock: time.Now}
}

// Kind identifies the namespace this reconciler owns.
func (r *ApplicationsReconciler) Kind() store.Kind { return store.KindApplications }

// Reconcile extracts application changes from the conversation and applies
// them insert-or-update by identity.
func (r *ApplicationsReconciler) Reconcile(ctx context.Context, userID string, conversation []llm.Message) (Outcome, error) {
	ns := store.Namespace{Kind: store.KindApplications, UserID: userID}
	entries, err := r.store.Search(ns)
	if err != nil {
		return Outcome{}, err
	}
	known := make(map[string]schema.Application, len(entries))
	for _, entry := range entries {
		var app schema.Application
		if err := json.Unmarshal(entry.Value, &app); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: decode stored application %s: %w", entry.ID, err)
		}
		known[entry.ID] = app
	}

	result, err := r.extractor.Extract(ctx, ExtractRequest{
		Kind:         store.KindApplications,
		SchemaName:   "JobApplication",
		Existing:     toExistingRecords(entries),
		Conversation: conversation,
		Instruction:  prompts.Extraction(r.clock()),
	})
	if err != nil {
		return Outcome{}, &ExtractionError{Kind: store.KindApplications, Err: err}
	}

	st := newStaging()
	for _, record := range result.Records {
		var patch schema.Application
		if err := json.Unmarshal(record.Value, &patch); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindApplications, Err: fmt.Errorf("decode application patch: %w", err)}
		}
		if err := patch.Validate(); err != nil {
			return Outcome{}, &ExtractionError{Kind: store.KindApplications, Err: err}
		}
		id := record.ID
		switch {
		case id != "":
			if _, ok := known[id]; !ok {
				return Outcome{}, &ExtractionError{Kind: store.KindApplications, Err: fmt.Errorf("update refers to unknown id %s", id)}
			}
		default:
			if matched, ok := r.matcher.MatchApplication(known, patch); ok {
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
			return Outcome{}, fmt.Errorf("reconcile: encode application: %w", err)
		}
		st.put(id, value, inserted)
	}

	out, err := commit(r.store, ns, st.list())
	if err != nil {
		return Outcome{}, err
	}
	out.Summary = collectionSummary("application", out)
	return out, nil
}

// staging dedupes writes by id so a record touched twice in one pass commits
// once, with the latest value.
type staging struct {
	order []string
	byID  map[string]write
}

func newStaging() *staging {
	return &staging{byID: make(map[string]write)}
}

func (st *staging) put(id string, value json.RawMessage, inserted bool) {
	if existing, ok := st.byID[id]; ok {
		existing.value = value
		st.byID[id] = existing
		return
	}
	st.order = append(st.order, id)
	st.byID[id] = write{id: id, value: value, inserted: inserted}
}

func (st *staging) list() []write {
	out := make([]write, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.byID[id])
	}
	return out
}

func collectionSummary(noun string, out Outcome) string {
	switch {
	case len(out.Inserted) > 0 && len(out.Updated) > 0:
		return fmt.Sprintf("added %s; updated %s", countNoun(len(out.Inserted), "new "+noun), countNoun(len(out.Updated), "existing "+noun))
	case len(out.Inserted) > 0:
		return fmt.Sprintf("added %s", countNoun(len(out.Inserted), "new "+noun))
	case len(out.Updated) > 0:
		return fmt.Sprintf("updated %s", countNoun(len(out.Updated), "existing "+noun))
	default:
		return fmt.Sprintf("no %s changes", noun)
	}
}
