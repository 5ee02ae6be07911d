// Package interview runs the multi-persona interview flow: persona
// generation, parallel question-and-answer sessions against a simulated
// candidate, and synthesis of the per-analyst sections into one report.
package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/logging"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
)

// Orchestrator fans interview sessions out across analysts and reduces their
// sections into the final report.
type Orchestrator struct {
	client   llm.Client
	logger   *logging.Logger
	maxTurns int
}

// NewOrchestrator wires the interview orchestrator. maxTurns bounds the
// answered questions per session.
func NewOrchestrator(client llm.Client, logger *logging.Logger, maxTurns int) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{client: client, logger: logger, maxTurns: maxTurns}
}

// Run interviews the candidate with every analyst concurrently and returns
// the synthesized report. Sections are joined in analyst launch order no
// matter which session finishes first. An empty analyst set is a no-op and
// yields an empty report.
func (o *Orchestrator) Run(ctx context.Context, analysts []schema.Analyst, resume, documents string) (string, error) {
	if len(analysts) == 0 {
		o.logger.Warn("no analysts to interview")
		return "", nil
	}

	sections := make([]string, len(analysts))
	g, gctx := errgroup.WithContext(ctx)
	for i, analyst := range analysts {
		i, analyst := i, analyst
		g.Go(func() error {
			o.logger.Info("interview session started", logrus.Fields{"analyst": analyst.Name})
			s := &session{
				client:    o.client,
				analyst:   analyst,
				resume:    resume,
				documents: documents,
				maxTurns:  o.maxTurns,
			}
			result, err := s.run(gctx)
			if err != nil {
				return err
			}
			sections[i] = result.Section
			o.logger.Info("interview session finished", logrus.Fields{"analyst": analyst.Name})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return o.finalize(ctx, sections)
}

func (o *Orchestrator) finalize(ctx context.Context, sections []string) (string, error) {
	system := prompts.Finalize(strings.Join(sections, "\n\n"))
	msgs := []llm.Message{{Role: llm.RoleUser, Content: "Write the final report."}}
	report, err := o.client.Complete(ctx, system, msgs)
	if err != nil {
		return "", fmt.Errorf("interview: finalize report: %w", err)
	}
	return report.Content, nil
}
