package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind names one of the persisted record categories. Kinds partition the
// store together with the user id: every reconciliation pass touches exactly
// one (kind, user) namespace.
type Kind string

const (
	KindResume            Kind = "annotated_resume"
	KindApplications      Kind = "applications"
	KindDocuments         Kind = "documents"
	KindInstructions      Kind = "instructions"
	KindActiveApplication Kind = "active_application"
)

// ErrNotFound is returned by Get when no record exists under the id.
var ErrNotFound = errors.New("store: record not found")

// Namespace scopes records to one kind for one user. Records are never shared
// across users.
type Namespace struct {
	Kind   Kind
	UserID string
}

// Validate ensures the namespace is addressable.
func (n Namespace) Validate() error {
	if n.Kind == "" {
		return fmt.Errorf("store: namespace kind is required")
	}
	if n.UserID == "" {
		return fmt.Errorf("store: namespace user id is required")
	}
	return nil
}

func (n Namespace) String() string {
	return string(n.Kind) + "/" + n.UserID
}

// Entry is one stored record: an opaque JSON value under a stable id.
type Entry struct {
	ID        string
	Value     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the structured record store contract. Put is an idempotent upsert
// by id; Search returns entries in insertion order. Implementations are
// durable until a value is explicitly overwritten.
type Store interface {
	Search(ns Namespace) ([]Entry, error)
	Get(ns Namespace, id string) (Entry, error)
	Put(ns Namespace, id string, value json.RawMessage) error
}
