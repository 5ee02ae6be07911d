package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/seekwell/seekwell/internal/config"
	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/reconcile"
	"github.com/seekwell/seekwell/internal/schema"
	"github.com/seekwell/seekwell/internal/store"
)

const testUser = "default-user"

// scriptedClient replays a queue of routing decisions.
type scriptedClient struct {
	decisions []llm.Decision
	decideErr error
	calls     int
}

func (c *scriptedClient) Decide(context.Context, string, []llm.Message) (llm.Decision, error) {
	if c.decideErr != nil {
		return llm.Decision{}, c.decideErr
	}
	if c.calls >= len(c.decisions) {
		return llm.Decision{}, fmt.Errorf("unexpected routing call %d", c.calls)
	}
	d := c.decisions[c.calls]
	c.calls++
	return d, nil
}

func (c *scriptedClient) Complete(context.Context, string, []llm.Message) (llm.Message, error) {
	return llm.Message{}, fmt.Errorf("not implemented")
}

func (c *scriptedClient) CompleteStructured(context.Context, string, []llm.Message, string, any) error {
	return fmt.Errorf("not implemented")
}

// fakeReconciler records invocations and optionally applies a store side
// effect, standing in for the extraction-backed reconcilers.
type fakeReconciler struct {
	kind    store.Kind
	outcome reconcile.Outcome
	apply   func() error
	calls   int
	got     []llm.Message
}

func (f *fakeReconciler) Kind() store.Kind { return f.kind }

func (f *fakeReconciler) Reconcile(_ context.Context, _ string, conversation []llm.Message) (reconcile.Outcome, error) {
	f.calls++
	f.got = append([]llm.Message(nil), conversation...)
	if f.apply != nil {
		if err := f.apply(); err != nil {
			return reconcile.Outcome{}, err
		}
	}
	return f.outcome, nil
}

type fakeGenerator struct {
	analysts     []schema.Analyst
	lastFeedback string
	calls        int
}

func (f *fakeGenerator) Create(_ context.Context, _, feedback string) ([]schema.Analyst, error) {
	f.calls++
	f.lastFeedback = feedback
	return f.analysts, nil
}

type fakeRunner struct {
	report string
	calls  int
	got    []schema.Analyst
}

func (f *fakeRunner) Run(_ context.Context, analysts []schema.Analyst, _, _ string) (string, error) {
	f.calls++
	f.got = analysts
	return f.report, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		UserID:            testUser,
		MaxAnalysts:       2,
		MaxInterviewTurns: 2,
		DataDir:           t.TempDir(),
	}
}

func noopReconcilers() map[UpdateType]reconcile.Reconciler {
	m := make(map[UpdateType]reconcile.Reconciler)
	for _, t := range []UpdateType{UpdateResume, UpdateApplication, UpdateDocument, UpdateInstructions, UpdateActiveApplication} {
		m[t] = &fakeReconciler{kind: t.Kind(), outcome: reconcile.Outcome{Summary: "noop"}}
	}
	return m
}

func putActiveApplication(t *testing.T, s store.Store) {
	t.Helper()
	app := schema.Application{
		Posting: schema.JobPosting{JobTitle: "Platform Engineer", Company: schema.Company{Name: "Hooli"}},
		Status:  schema.StatusInProgress,
	}
	value, err := json.Marshal(app)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ns := store.Namespace{Kind: store.KindActiveApplication, UserID: testUser}
	if err := s.Put(ns, reconcile.ActiveApplicationKey, value); err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestRoutingChainsUpdatesThenReplies(t *testing.T) {
	s := store.NewMemoryStore()
	client := &scriptedClient{decisions: []llm.Decision{
		{Reply: "Saving that.", Action: &llm.UpdateAction{UpdateType: "annotated_resume"}},
		{Reply: "I've updated your resume."},
	}}
	reconcilers := noopReconcilers()
	resume := &fakeReconciler{kind: store.KindResume, outcome: reconcile.Outcome{Summary: "updated annotated resume"}}
	reconcilers[UpdateResume] = resume

	agent := New(testConfig(t), s, client, WithReconcilers(reconcilers))
	reply, err := agent.HandleMessage(context.Background(), "I spent three years at Hooli running the build platform.")
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if reply != "I've updated your resume." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if resume.calls != 1 {
		t.Fatalf("resume reconciler called %d times", resume.calls)
	}
	var sawConfirmation bool
	for _, msg := range agent.state.Messages {
		if msg.Role == llm.RoleTool && msg.Content == "updated annotated resume" {
			sawConfirmation = true
		}
	}
	if !sawConfirmation {
		t.Fatal("tool confirmation missing from history")
	}
}

func TestReconcilerDoesNotSeeRoutingReply(t *testing.T) {
	s := store.NewMemoryStore()
	client := &scriptedClient{decisions: []llm.Decision{
		{Reply: "Saving that.", Action: &llm.UpdateAction{UpdateType: "annotated_resume"}},
		{Reply: "Done."},
	}}
	reconcilers := noopReconcilers()
	resume := &fakeReconciler{kind: store.KindResume, outcome: reconcile.Outcome{Summary: "updated annotated resume"}}
	reconcilers[UpdateResume] = resume

	agent := New(testConfig(t), s, client, WithReconcilers(reconcilers))
	if _, err := agent.HandleMessage(context.Background(), "I also know Rust."); err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if len(resume.got) == 0 {
		t.Fatal("reconciler received no conversation")
	}
	last := resume.got[len(resume.got)-1]
	if last.Role != llm.RoleUser || last.Content != "I also know Rust." {
		t.Fatalf("reconciler saw the routing reply: %+v", last)
	}
	// The reply still lands in the history for the next pass.
	var sawReply bool
	for _, msg := range agent.state.Messages {
		if msg.Role == llm.RoleAssistant && msg.Content == "Saving that." {
			sawReply = true
		}
	}
	if !sawReply {
		t.Fatal("routing reply missing from history")
	}
}

func TestRoutingRejectsUnknownUpdateType(t *testing.T) {
	s := store.NewMemoryStore()
	client := &scriptedClient{decisions: []llm.Decision{
		{Action: &llm.UpdateAction{UpdateType: "shopping_list"}},
	}}
	agent := New(testConfig(t), s, client, WithReconcilers(noopReconcilers()))

	_, err := agent.HandleMessage(context.Background(), "hello")
	var routingErr *RoutingError
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected RoutingError, got %v", err)
	}
	if routingErr.UpdateType != "shopping_list" {
		t.Fatalf("unexpected update type %q", routingErr.UpdateType)
	}
}

func TestInterviewGateFlow(t *testing.T) {
	s := store.NewMemoryStore()
	client := &scriptedClient{decisions: []llm.Decision{
		{Reply: "Starting an interview for that role.", Action: &llm.UpdateAction{UpdateType: "active_application"}},
	}}
	reconcilers := noopReconcilers()
	reconcilers[UpdateActiveApplication] = &fakeReconciler{
		kind:    store.KindActiveApplication,
		outcome: reconcile.Outcome{Summary: "updated active application"},
		apply: func() error {
			putActiveApplication(t, s)
			return nil
		},
	}
	generator := &fakeGenerator{analysts: []schema.Analyst{
		{Name: "Alice", Role: "Infra Lead", Description: "Asks about platform work"},
		{Name: "Bob", Role: "Hiring Manager", Description: "Asks about impact"},
	}}
	runner := &fakeRunner{report: "final report"}
	cfg := testConfig(t)
	agent := New(cfg, s, client,
		WithReconcilers(reconcilers),
		WithGenerator(generator),
		WithInterviewRunner(runner),
	)
	ctx := context.Background()

	reply, err := agent.HandleMessage(ctx, "Let's interview for the Hooli platform job.")
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if !strings.Contains(reply, "Alice") || !strings.Contains(reply, "Bob") {
		t.Fatalf("panel not presented: %q", reply)
	}
	if agent.Phase() != PhaseAwaitingFeedback {
		t.Fatalf("expected gate phase, got %s", agent.Phase())
	}
	if _, err := NewCheckpointStore(cfg.CheckpointPath()).Load(); err != nil {
		t.Fatalf("checkpoint missing at gate: %v", err)
	}

	// Editorial feedback regenerates the panel and stays parked.
	if _, err := agent.HandleMessage(ctx, "Make the panel more technical."); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if generator.calls != 2 || generator.lastFeedback != "Make the panel more technical." {
		t.Fatalf("feedback not forwarded: calls=%d feedback=%q", generator.calls, generator.lastFeedback)
	}
	if agent.Phase() != PhaseAwaitingFeedback {
		t.Fatalf("expected to stay at gate, got %s", agent.Phase())
	}

	// Approval runs the interviews and clears the gate.
	report, err := agent.HandleMessage(ctx, "approve")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if report != "final report" {
		t.Fatalf("unexpected report %q", report)
	}
	if runner.calls != 1 || len(runner.got) != 2 {
		t.Fatalf("runner calls=%d analysts=%d", runner.calls, len(runner.got))
	}
	if agent.Phase() != PhaseIdle {
		t.Fatalf("expected idle after interviews, got %s", agent.Phase())
	}
	saved, err := NewCheckpointStore(cfg.CheckpointPath()).Load()
	if err != nil {
		t.Fatalf("checkpoint missing after interviews: %v", err)
	}
	if saved.Phase != PhaseIdle || len(saved.Analysts) != 0 {
		t.Fatalf("gate state not cleared from checkpoint: %+v", saved)
	}

	ns := store.Namespace{Kind: store.KindActiveApplication, UserID: testUser}
	entry, err := s.Get(ns, reconcile.ActiveApplicationKey)
	if err != nil {
		t.Fatalf("get active application: %v", err)
	}
	var app schema.Application
	if err := json.Unmarshal(entry.Value, &app); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if app.InterviewNotes != "final report" {
		t.Fatalf("report not saved to active application: %q", app.InterviewNotes)
	}
}

func TestResumeRestoresGateConversation(t *testing.T) {
	s := store.NewMemoryStore()
	putActiveApplication(t, s)
	cfg := testConfig(t)
	analysts := []schema.Analyst{{Name: "Alice", Role: "Infra Lead", Description: "Asks about platform work"}}

	first := New(cfg, s, &scriptedClient{}, WithReconcilers(noopReconcilers()), WithGenerator(&fakeGenerator{analysts: analysts}))
	first.state.Job = "posting"
	first.state.Analysts = analysts
	if _, err := first.parkAtGate(); err != nil {
		t.Fatalf("park: %v", err)
	}

	runner := &fakeRunner{report: "resumed report"}
	second := New(cfg, s, &scriptedClient{}, WithReconcilers(noopReconcilers()), WithInterviewRunner(runner))
	atGate, err := second.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !atGate || second.Phase() != PhaseAwaitingFeedback {
		t.Fatalf("expected to resume at gate, got atGate=%v phase=%s", atGate, second.Phase())
	}
	if got := second.Analysts(); len(got) != 1 || got[0].Name != "Alice" {
		t.Fatalf("panel not restored: %+v", got)
	}

	report, err := second.SubmitFeedback(context.Background(), "")
	if err != nil {
		t.Fatalf("approve after resume: %v", err)
	}
	if report != "resumed report" {
		t.Fatalf("unexpected report %q", report)
	}
}

func TestApprovalWithoutActiveApplicationStillReturnsReport(t *testing.T) {
	s := store.NewMemoryStore()
	runner := &fakeRunner{report: "orphan report"}
	agent := New(testConfig(t), s, &scriptedClient{},
		WithReconcilers(noopReconcilers()),
		WithInterviewRunner(runner),
	)
	agent.state.Job = "posting"
	agent.state.Analysts = []schema.Analyst{{Name: "Alice", Role: "Infra Lead", Description: "Asks about platform work"}}
	if _, err := agent.parkAtGate(); err != nil {
		t.Fatalf("park: %v", err)
	}

	report, err := agent.SubmitFeedback(context.Background(), "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if report != "orphan report" {
		t.Fatalf("unexpected report %q", report)
	}
	if agent.Phase() != PhaseIdle {
		t.Fatalf("expected idle after interviews, got %s", agent.Phase())
	}
}

func TestResumeWithoutCheckpointStartsIdle(t *testing.T) {
	agent := New(testConfig(t), store.NewMemoryStore(), &scriptedClient{}, WithReconcilers(noopReconcilers()))
	atGate, err := agent.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if atGate || agent.Phase() != PhaseIdle {
		t.Fatalf("expected fresh idle agent, got atGate=%v phase=%s", atGate, agent.Phase())
	}
}

func TestSubmitFeedbackOutsideGateFails(t *testing.T) {
	agent := New(testConfig(t), store.NewMemoryStore(), &scriptedClient{}, WithReconcilers(noopReconcilers()))
	if _, err := agent.SubmitFeedback(context.Background(), "approve"); err == nil {
		t.Fatal("expected error outside the gate")
	}
}

func TestParseUpdateType(t *testing.T) {
	valid := map[string]store.Kind{
		"annotated_resume":   store.KindResume,
		"application":        store.KindApplications,
		"document":           store.KindDocuments,
		"instructions":       store.KindInstructions,
		"active_application": store.KindActiveApplication,
	}
	for raw, kind := range valid {
		t.Run(raw, func(t *testing.T) {
			parsed, err := ParseUpdateType(raw)
			if err != nil {
				t.Fatalf("parse %q: %v", raw, err)
			}
			if parsed.Kind() != kind {
				t.Fatalf("kind for %q = %s, want %s", raw, parsed.Kind(), kind)
			}
		})
	}
	if _, err := ParseUpdateType("resume"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cs := NewCheckpointStore(t.TempDir() + "/nested/checkpoint.json")
	if _, err := cs.Load(); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}
	state := State{
		UserID:   testUser,
		Phase:    PhaseAwaitingFeedback,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Analysts: []schema.Analyst{{Name: "Alice"}},
		Job:      "posting",
	}
	if err := cs.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := cs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Phase != state.Phase || len(loaded.Messages) != 1 || len(loaded.Analysts) != 1 || loaded.Job != "posting" {
		t.Fatalf("state not round-tripped: %+v", loaded)
	}
	if err := cs.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := cs.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := cs.Load(); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("checkpoint survived clear: %v", err)
	}
}
