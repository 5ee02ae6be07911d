package interview

import (
	"context"
	"fmt"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
)

// Generator produces the analyst personas that will interview the candidate
// for one job posting. Regeneration with editorial feedback replaces the
// previous set wholesale.
type Generator struct {
	client      llm.Client
	maxAnalysts int
}

// NewGenerator wires a persona generator. maxAnalysts bounds the set size.
func NewGenerator(client llm.Client, maxAnalysts int) *Generator {
	return &Generator{client: client, maxAnalysts: maxAnalysts}
}

// Create asks the model for a fresh set of analysts for the posting. feedback
// is optional editorial guidance from the human gate; pass it empty on the
// first generation.
func (g *Generator) Create(ctx context.Context, job, feedback string) ([]schema.Analyst, error) {
	system := prompts.Analysts(job, feedback, g.maxAnalysts)
	msgs := []llm.Message{{Role: llm.RoleUser, Content: "Generate the set of analysts."}}

	var perspectives schema.Perspectives
	if err := g.client.CompleteStructured(ctx, system, msgs, "Perspectives", &perspectives); err != nil {
		return nil, fmt.Errorf("interview: create analysts: %w", err)
	}
	analysts := perspectives.Analysts
	if len(analysts) == 0 {
		return nil, fmt.Errorf("interview: create analysts: model returned no personas")
	}
	if len(analysts) > g.maxAnalysts {
		analysts = analysts[:g.maxAnalysts]
	}
	for i, a := range analysts {
		if a.Name == "" {
			return nil, fmt.Errorf("interview: create analysts: persona %d has no name", i)
		}
	}
	return analysts, nil
}
