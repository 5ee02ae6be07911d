package reconcile

import (
	"strings"

	"github.com/seekwell/seekwell/internal/schema"
)

// Matcher decides whether an extracted record refers to an already stored
// entity. The update-vs-insert choice for collection kinds hinges on this
// policy, so it is pluggable and tested on its own.
type Matcher interface {
	// MatchApplication returns the id of the existing application the patch
	// refers to, if any.
	MatchApplication(existing map[string]schema.Application, patch schema.Application) (string, bool)
	// MatchDocument returns the id of the existing document the patch refers
	// to, if any.
	MatchDocument(existing map[string]schema.Document, patch schema.Document) (string, bool)
}

// HeuristicMatcher matches applications on company plus title and documents
// on title plus source, case- and whitespace-insensitively. A patch missing
// its identity fields never matches.
type HeuristicMatcher struct{}

func (HeuristicMatcher) MatchApplication(existing map[string]schema.Application, patch schema.Application) (string, bool) {
	title := fold(patch.Posting.JobTitle)
	company := fold(patch.Posting.Company.Name)
	if title == "" || company == "" {
		return "", false
	}
	for id, app := range existing {
		if fold(app.Posting.JobTitle) == title && fold(app.Posting.Company.Name) == company {
			return id, true
		}
	}
	return "", false
}

func (HeuristicMatcher) MatchDocument(existing map[string]schema.Document, patch schema.Document) (string, bool) {
	title := fold(patch.Title)
	if title == "" {
		return "", false
	}
	source := fold(patch.Source)
	for id, doc := range existing {
		if fold(doc.Title) == title && fold(doc.Source) == source {
			return id, true
		}
	}
	return "", false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
