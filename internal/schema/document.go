package schema

// Document is one fine-grain source about the user's career, such as a project
// report or a detailed write-up of a work experience. Source labels where the
// content came from and doubles as part of the document's identity.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// Merge folds a patch into the document. Empty patch fields keep the prior
// values so a partial update never erases content.
func (d Document) Merge(patch Document) Document {
	merged := d
	if patch.Title != "" {
		merged.Title = patch.Title
	}
	if patch.Content != "" {
		merged.Content = patch.Content
	}
	if patch.Source != "" {
		merged.Source = patch.Source
	}
	return merged
}

// Instructions is the single free-text memo describing how the user wants
// their memory maintained. Unlike the collection kinds it is replaced
// wholesale on every update.
type Instructions struct {
	Memory string `json:"memory"`
}
