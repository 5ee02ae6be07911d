// Package graph is the agent's orchestration core: the routing loop over
// conversational turns, the per-kind memory reconcilers behind it, and the
// top-level state machine that parks at a human gate before interview runs.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seekwell/seekwell/internal/config"
	"github.com/seekwell/seekwell/internal/interview"
	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/logging"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/reconcile"
	"github.com/seekwell/seekwell/internal/schema"
	"github.com/seekwell/seekwell/internal/store"
)

// maxRouterPasses bounds chained memory updates in one turn. Each pass
// performs at most one update, so the bound also caps store mutations per
// turn.
const maxRouterPasses = 5

// analystGenerator produces interview personas.
type analystGenerator interface {
	Create(ctx context.Context, job, feedback string) ([]schema.Analyst, error)
}

// interviewRunner runs the interview sessions and reduces them to a report.
type interviewRunner interface {
	Run(ctx context.Context, analysts []schema.Analyst, resume, documents string) (string, error)
}

// Agent is the conversational assistant. It is not safe for concurrent use;
// drive it from a single conversation loop.
type Agent struct {
	userID      string
	store       store.Store
	client      llm.Client
	reconcilers map[UpdateType]reconcile.Reconciler
	generator   analystGenerator
	interviews  interviewRunner
	checkpoints *CheckpointStore
	logger      *logging.Logger
	clock       func() time.Time

	state State
}

// Option customizes an Agent.
type Option func(*Agent)

// WithLogger sets the agent logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(a *Agent) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithGenerator overrides the persona generator.
func WithGenerator(g analystGenerator) Option {
	return func(a *Agent) {
		if g != nil {
			a.generator = g
		}
	}
}

// WithInterviewRunner overrides the interview orchestrator.
func WithInterviewRunner(r interviewRunner) Option {
	return func(a *Agent) {
		if r != nil {
			a.interviews = r
		}
	}
}

// WithReconcilers overrides the per-kind reconcilers.
func WithReconcilers(reconcilers map[UpdateType]reconcile.Reconciler) Option {
	return func(a *Agent) {
		if reconcilers != nil {
			a.reconcilers = reconcilers
		}
	}
}

// WithCheckpointStore overrides the checkpoint location.
func WithCheckpointStore(c *CheckpointStore) Option {
	return func(a *Agent) {
		if c != nil {
			a.checkpoints = c
		}
	}
}

// New wires the agent from its collaborators. The default reconcilers,
// persona generator, and interview orchestrator all run on the given
// inference client.
func New(cfg config.Config, s store.Store, client llm.Client, opts ...Option) *Agent {
	a := &Agent{
		userID:      cfg.UserID,
		store:       s,
		client:      client,
		checkpoints: NewCheckpointStore(cfg.CheckpointPath()),
		logger:      logging.Discard(),
		clock:       time.Now,
		state:       State{UserID: cfg.UserID, Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.generator == nil {
		a.generator = interview.NewGenerator(client, cfg.MaxAnalysts)
	}
	if a.interviews == nil {
		a.interviews = interview.NewOrchestrator(client, a.logger, cfg.MaxInterviewTurns)
	}
	if a.reconcilers == nil {
		extractor := reconcile.NewLLMExtractor(client)
		a.reconcilers = map[UpdateType]reconcile.Reconciler{
			UpdateResume:            reconcile.NewResumeReconciler(s, extractor),
			UpdateApplication:       reconcile.NewApplicationsReconciler(s, extractor),
			UpdateDocument:          reconcile.NewDocumentsReconciler(s, extractor),
			UpdateInstructions:      reconcile.NewInstructionsReconciler(s, client),
			UpdateActiveApplication: reconcile.NewActiveApplicationReconciler(s, extractor),
		}
	}
	return a
}

// Phase reports where the agent is in its state machine.
func (a *Agent) Phase() Phase { return a.state.Phase }

// Analysts returns the panel currently awaiting feedback, if any.
func (a *Agent) Analysts() []schema.Analyst {
	return append([]schema.Analyst(nil), a.state.Analysts...)
}

// Resume restores a persisted gate conversation, if one exists. It reports
// whether the agent woke up at the human gate.
func (a *Agent) Resume() (bool, error) {
	state, err := a.checkpoints.Load()
	switch {
	case errors.Is(err, ErrCheckpointNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	if state.UserID != a.userID {
		a.logger.Warn("ignoring checkpoint for different user", logrus.Fields{"checkpoint_user": state.UserID})
		return false, nil
	}
	a.state = state
	a.logger.Info("resumed from checkpoint", logrus.Fields{"phase": state.Phase})
	return state.Phase == PhaseAwaitingFeedback, nil
}

// HandleMessage processes one user turn. At the human gate the message is
// treated as interview feedback; otherwise it goes through the routing loop,
// which dispatches at most one memory update per pass and replies once no
// further update is requested.
func (a *Agent) HandleMessage(ctx context.Context, text string) (string, error) {
	if a.state.Phase == PhaseAwaitingFeedback {
		return a.SubmitFeedback(ctx, text)
	}
	a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleUser, Content: text})

	for pass := 0; pass < maxRouterPasses; pass++ {
		system, err := a.systemPrompt()
		if err != nil {
			return "", err
		}
		decision, err := a.client.Decide(ctx, system, a.state.Messages)
		if err != nil {
			return "", fmt.Errorf("graph: routing decision: %w", err)
		}
		if decision.Action == nil {
			a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleAssistant, Content: decision.Reply})
			a.persistTurn()
			return decision.Reply, nil
		}

		t, err := ParseUpdateType(decision.Action.UpdateType)
		if err != nil {
			return "", err
		}
		// Reconcilers get the history as it stood when the decision was
		// made; the decision's own reply is appended afterwards.
		conversation := a.state.Messages
		if decision.Reply != "" {
			a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleAssistant, Content: decision.Reply})
		}
		out, err := a.reconcilers[t].Reconcile(ctx, a.userID, conversation)
		if err != nil {
			return "", err
		}
		a.logger.Info("memory updated", logrus.Fields{"kind": t.Kind(), "summary": out.Summary})
		a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleTool, Name: string(t), Content: out.Summary})

		if t == UpdateActiveApplication {
			return a.prepareInterview(ctx)
		}
	}
	return "", fmt.Errorf("graph: routing did not settle after %d passes", maxRouterPasses)
}

// SubmitFeedback answers the human gate. Editorial feedback regenerates the
// analyst panel and parks again; approval runs the interviews and clears the
// gate.
func (a *Agent) SubmitFeedback(ctx context.Context, feedback string) (string, error) {
	if a.state.Phase != PhaseAwaitingFeedback {
		return "", fmt.Errorf("graph: no interview awaiting feedback")
	}
	trimmed := strings.TrimSpace(feedback)
	if trimmed != "" {
		a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleUser, Content: feedback})
	}
	if trimmed != "" && !isApproval(trimmed) {
		analysts, err := a.generator.Create(ctx, a.state.Job, trimmed)
		if err != nil {
			return "", err
		}
		a.state.Analysts = analysts
		return a.parkAtGate()
	}
	return a.runInterviews(ctx)
}

func (a *Agent) prepareInterview(ctx context.Context) (string, error) {
	job, err := a.activeJob()
	if err != nil {
		return "", err
	}
	analysts, err := a.generator.Create(ctx, job, "")
	if err != nil {
		return "", err
	}
	a.state.Job = job
	a.state.Analysts = analysts
	return a.parkAtGate()
}

// parkAtGate persists the prepared interview and presents the panel. The
// checkpoint is written before the reply so a crash after this point resumes
// at the gate instead of losing the panel.
func (a *Agent) parkAtGate() (string, error) {
	a.state.Phase = PhaseAwaitingFeedback
	a.state.UpdatedAt = a.clock()
	reply := presentAnalysts(a.state.Analysts)
	a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleAssistant, Content: reply})
	if err := a.checkpoints.Save(a.state.clone()); err != nil {
		return "", err
	}
	a.logger.Info("awaiting interview feedback", logrus.Fields{"analysts": len(a.state.Analysts)})
	return reply, nil
}

func (a *Agent) runInterviews(ctx context.Context) (string, error) {
	resume, err := a.renderKind(store.KindResume)
	if err != nil {
		return "", err
	}
	documents, err := a.renderKind(store.KindDocuments)
	if err != nil {
		return "", err
	}
	report, err := a.interviews.Run(ctx, a.state.Analysts, resume, documents)
	if err != nil {
		return "", err
	}
	if report != "" {
		if err := a.saveReport(report); err != nil {
			return "", err
		}
	}

	a.state.Phase = PhaseIdle
	a.state.Analysts = nil
	a.state.Job = ""

	reply := report
	if reply == "" {
		reply = "No analysts were available, so no interview was run."
	}
	a.state.Messages = append(a.state.Messages, llm.Message{Role: llm.RoleAssistant, Content: reply})
	a.persistTurn()
	return reply, nil
}

// persistTurn checkpoints the state after an ordinary turn. Unlike the gate
// save this is best effort: the reply already happened, so a checkpoint
// failure is logged instead of failing the turn.
func (a *Agent) persistTurn() {
	a.state.UpdatedAt = a.clock()
	if err := a.checkpoints.Save(a.state.clone()); err != nil {
		a.logger.Warn("checkpoint save failed", logrus.Fields{"error": err.Error()})
	}
}

// saveReport records the interview report on the active application.
func (a *Agent) saveReport(report string) error {
	ns := store.Namespace{Kind: store.KindActiveApplication, UserID: a.userID}
	entries, err := a.store.Search(ns)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.logger.Warn("no active application to attach the interview report to")
		return nil
	}
	var app schema.Application
	if err := json.Unmarshal(entries[0].Value, &app); err != nil {
		return fmt.Errorf("graph: decode active application: %w", err)
	}
	app.InterviewNotes = report
	value, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("graph: encode active application: %w", err)
	}
	return a.store.Put(ns, entries[0].ID, value)
}

// activeJob renders the active application's posting as context for persona
// generation.
func (a *Agent) activeJob() (string, error) {
	ns := store.Namespace{Kind: store.KindActiveApplication, UserID: a.userID}
	entries, err := a.store.Search(ns)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("graph: no active application recorded")
	}
	var app schema.Application
	if err := json.Unmarshal(entries[0].Value, &app); err != nil {
		return "", fmt.Errorf("graph: decode active application: %w", err)
	}
	rendered, err := json.MarshalIndent(app.Posting, "", "  ")
	if err != nil {
		return "", fmt.Errorf("graph: encode job posting: %w", err)
	}
	return string(rendered), nil
}

// systemPrompt renders the routing system context with the current memory
// embedded. It is rebuilt every pass so chained updates see their own
// writes.
func (a *Agent) systemPrompt() (string, error) {
	resume, err := a.renderKind(store.KindResume)
	if err != nil {
		return "", err
	}
	applications, err := a.renderKind(store.KindApplications)
	if err != nil {
		return "", err
	}
	documents, err := a.renderKind(store.KindDocuments)
	if err != nil {
		return "", err
	}
	instructions, err := a.renderInstructions()
	if err != nil {
		return "", err
	}
	return prompts.System(resume, applications, documents, instructions), nil
}

func (a *Agent) renderKind(kind store.Kind) (string, error) {
	entries, err := a.store.Search(store.Namespace{Kind: kind, UserID: a.userID})
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("[%s] %s", entry.ID, string(entry.Value)))
	}
	return strings.Join(parts, "\n"), nil
}

func (a *Agent) renderInstructions() (string, error) {
	ns := store.Namespace{Kind: store.KindInstructions, UserID: a.userID}
	entry, err := a.store.Get(ns, reconcile.InstructionsKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", nil
	case err != nil:
		return "", err
	}
	var memo schema.Instructions
	if err := json.Unmarshal(entry.Value, &memo); err != nil {
		return "", fmt.Errorf("graph: decode instructions: %w", err)
	}
	return memo.Memory, nil
}

func presentAnalysts(analysts []schema.Analyst) string {
	var sb strings.Builder
	sb.WriteString("I put together an interview panel for this application:\n")
	for _, a := range analysts {
		sb.WriteString(fmt.Sprintf("\n- %s (%s): %s", a.Name, a.Role, a.Description))
	}
	sb.WriteString("\n\nReply with feedback to revise the panel, or say \"approve\" to start the interviews.")
	return sb.String()
}

func isApproval(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "approve", "approved", "ok", "yes", "looks good", "lgtm", "go ahead":
		return true
	}
	return false
}
