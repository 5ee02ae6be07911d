package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seekwell/seekwell/internal/llm"
)

// LLMExtractor implements the extraction collaborator on top of the inference
// client's structured-output mode. It shows the model the existing records
// with their ids and asks for an insert/update envelope; the merge discipline
// stays with the reconcilers.
type LLMExtractor struct {
	client llm.Client
}

// NewLLMExtractor wires an extractor to the inference client.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// Extract reconciles the conversation against the existing records of one
// kind.
func (e *LLMExtractor) Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	system, err := buildExtractionSystem(req)
	if err != nil {
		return ExtractResult{}, err
	}
	var result ExtractResult
	if err := e.client.CompleteStructured(ctx, system, req.Conversation, req.SchemaName, &result); err != nil {
		return ExtractResult{}, fmt.Errorf("reconcile: extract %s: %w", req.Kind, err)
	}
	for i, record := range result.Records {
		if len(record.Value) == 0 {
			return ExtractResult{}, fmt.Errorf("reconcile: extract %s: record %d has no value", req.Kind, i)
		}
	}
	return result, nil
}

func buildExtractionSystem(req ExtractRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString(req.Instruction)
	sb.WriteString("\n\nTarget schema: ")
	sb.WriteString(req.SchemaName)
	sb.WriteString("\n\nExisting records (may be empty):\n")
	if len(req.Existing) == 0 {
		sb.WriteString("(none)\n")
	} else {
		encoded, err := json.MarshalIndent(req.Existing, "", "  ")
		if err != nil {
			return "", fmt.Errorf("reconcile: encode existing records: %w", err)
		}
		sb.Write(encoded)
		sb.WriteString("\n")
	}
	sb.WriteString(`
Produce a JSON envelope of the form {"records": [{"id": "...", "value": {...}}]}.
- To update an existing record, set "id" to that record's id exactly as shown above.
- To insert a new record, omit "id" entirely.
- "value" holds the record content matching the target schema; include only fields the conversation supports.
- Return an empty records list when the conversation adds nothing for this schema.`)
	return sb.String(), nil
}
