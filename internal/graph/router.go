package graph

import (
	"fmt"

	"github.com/seekwell/seekwell/internal/store"
)

// UpdateType is the closed set of memory-update targets a routing decision
// may name. Anything outside the set is a RoutingError, never a silent no-op.
type UpdateType string

const (
	UpdateResume            UpdateType = "annotated_resume"
	UpdateApplication       UpdateType = "application"
	UpdateDocument          UpdateType = "document"
	UpdateInstructions      UpdateType = "instructions"
	UpdateActiveApplication UpdateType = "active_application"
)

// RoutingError reports a decision that named an update type outside the
// closed set.
type RoutingError struct {
	UpdateType string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("graph: routing decision named unknown update type %q", e.UpdateType)
}

// ParseUpdateType validates a raw update type from a routing decision.
func ParseUpdateType(raw string) (UpdateType, error) {
	switch t := UpdateType(raw); t {
	case UpdateResume, UpdateApplication, UpdateDocument, UpdateInstructions, UpdateActiveApplication:
		return t, nil
	}
	return "", &RoutingError{UpdateType: raw}
}

// Kind maps the update type to the record namespace it mutates.
func (t UpdateType) Kind() store.Kind {
	switch t {
	case UpdateResume:
		return store.KindResume
	case UpdateApplication:
		return store.KindApplications
	case UpdateDocument:
		return store.KindDocuments
	case UpdateInstructions:
		return store.KindInstructions
	case UpdateActiveApplication:
		return store.KindActiveApplication
	}
	return ""
}
