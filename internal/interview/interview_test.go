package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
)

// fakeClient scripts the three model roles a session exercises: analyst
// questions, candidate answers, and report writing. It recognizes each role
// by its system prompt.
type fakeClient struct {
	mu sync.Mutex

	// stopOnQuestion makes the analyst emit the stop phrase in the question
	// with this ordinal. Zero means never.
	stopOnQuestion int
	// sleeps delays question generation per analyst name so completion order
	// can be forced to differ from launch order.
	sleeps map[string]time.Duration

	perspectives  schema.Perspectives
	structuredErr error

	finalizeSystem string
	completeCalls  int
}

func (f *fakeClient) Complete(_ context.Context, system string, msgs []llm.Message) (llm.Message, error) {
	f.mu.Lock()
	f.completeCalls++
	f.mu.Unlock()
	switch {
	case strings.Contains(system, "You are an analyst tasked with interviewing"):
		name := personaName(system)
		if d := f.sleeps[name]; d > 0 {
			time.Sleep(d)
		}
		ordinal := countSpeaker(msgs, speakerExpert) + 1
		content := fmt.Sprintf("Q%d from %s", ordinal, name)
		if f.stopOnQuestion > 0 && ordinal >= f.stopOnQuestion {
			content += " " + prompts.StopPhrase + "!"
		}
		return llm.Message{Role: llm.RoleAssistant, Content: content}, nil
	case strings.Contains(system, "You are a candidate being interviewed"):
		ordinal := countSpeaker(msgs, speakerCandidate)
		return llm.Message{Role: llm.RoleAssistant, Content: fmt.Sprintf("A%d", ordinal)}, nil
	case strings.Contains(system, "expert technical writer"):
		name := "unknown"
		if i := strings.Index(msgs[0].Content, "from "); i >= 0 {
			rest := msgs[0].Content[i+len("from "):]
			name = strings.FieldsFunc(rest, func(r rune) bool { return r == ' ' || r == '\n' })[0]
		}
		return llm.Message{Role: llm.RoleAssistant, Content: "section for " + name}, nil
	case strings.Contains(system, "writing a final report"):
		f.mu.Lock()
		f.finalizeSystem = system
		f.mu.Unlock()
		return llm.Message{Role: llm.RoleAssistant, Content: "final report"}, nil
	}
	return llm.Message{}, fmt.Errorf("unexpected system prompt: %.40s", system)
}

func (f *fakeClient) Decide(context.Context, string, []llm.Message) (llm.Decision, error) {
	return llm.Decision{}, fmt.Errorf("not implemented")
}

func (f *fakeClient) CompleteStructured(_ context.Context, _ string, _ []llm.Message, _ string, out any) error {
	if f.structuredErr != nil {
		return f.structuredErr
	}
	*(out.(*schema.Perspectives)) = f.perspectives
	return nil
}

// personaName pulls the analyst name back out of the question prompt.
func personaName(system string) string {
	i := strings.Index(system, "Name: ")
	if i < 0 {
		return "unknown"
	}
	rest := system[i+len("Name: "):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func countSpeaker(msgs []llm.Message, name string) int {
	n := 0
	for _, m := range msgs {
		if m.Name == name {
			n++
		}
	}
	return n
}

func analyst(name string) schema.Analyst {
	return schema.Analyst{Name: name, Role: "Analyst", Description: "Asks about " + name}
}

func TestSessionStopsAtMaxTurns(t *testing.T) {
	client := &fakeClient{}
	s := &session{client: client, analyst: analyst("Alice"), resume: "resume", maxTurns: 2}

	result, err := s.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Q1 from Alice", "A1", "Q2 from Alice", "A2"} {
		if !strings.Contains(result.Transcript, want) {
			t.Fatalf("transcript missing %q:\n%s", want, result.Transcript)
		}
	}
	if strings.Contains(result.Transcript, "Q3") || strings.Contains(result.Transcript, "A3") {
		t.Fatalf("session ran past max turns:\n%s", result.Transcript)
	}
	if result.Section != "section for Alice" {
		t.Fatalf("unexpected section %q", result.Section)
	}
}

func TestSessionStopsOnStopPhrase(t *testing.T) {
	client := &fakeClient{stopOnQuestion: 2}
	s := &session{client: client, analyst: analyst("Bob"), resume: "resume", maxTurns: 3}

	result, err := s.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Q2 from Bob", "A2"} {
		if !strings.Contains(result.Transcript, want) {
			t.Fatalf("transcript missing %q:\n%s", want, result.Transcript)
		}
	}
	if strings.Contains(result.Transcript, "Q3") {
		t.Fatalf("session continued past the closing question:\n%s", result.Transcript)
	}
}

func TestSessionStopPhraseInFirstQuestionEndsAfterOnePair(t *testing.T) {
	client := &fakeClient{stopOnQuestion: 1}
	s := &session{client: client, analyst: analyst("Carol"), resume: "resume", maxTurns: 3}

	result, err := s.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(result.Transcript, "A1") {
		t.Fatalf("closing question was not answered:\n%s", result.Transcript)
	}
	if strings.Contains(result.Transcript, "Q2") || strings.Contains(result.Transcript, "A2") {
		t.Fatalf("session continued past the terminating first pair:\n%s", result.Transcript)
	}
	if result.Section != "section for Carol" {
		t.Fatalf("section not written after early stop: %q", result.Section)
	}
}

func TestOrchestratorJoinsSectionsInLaunchOrder(t *testing.T) {
	client := &fakeClient{sleeps: map[string]time.Duration{
		"Alice": 30 * time.Millisecond,
		"Bob":   10 * time.Millisecond,
	}}
	o := NewOrchestrator(client, nil, 1)
	analysts := []schema.Analyst{analyst("Alice"), analyst("Bob"), analyst("Carol")}

	report, err := o.Run(context.Background(), analysts, "resume", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report != "final report" {
		t.Fatalf("unexpected report %q", report)
	}
	joined := "section for Alice\n\nsection for Bob\n\nsection for Carol"
	if !strings.Contains(client.finalizeSystem, joined) {
		t.Fatalf("sections out of launch order:\n%s", client.finalizeSystem)
	}
}

func TestOrchestratorNoAnalystsIsNoOp(t *testing.T) {
	client := &fakeClient{}
	o := NewOrchestrator(client, nil, 2)

	report, err := o.Run(context.Background(), nil, "resume", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report != "" {
		t.Fatalf("expected empty report, got %q", report)
	}
	if client.completeCalls != 0 {
		t.Fatalf("model was called %d times for an empty analyst set", client.completeCalls)
	}
}

func TestGeneratorTruncatesToMax(t *testing.T) {
	client := &fakeClient{perspectives: schema.Perspectives{Analysts: []schema.Analyst{
		analyst("Alice"), analyst("Bob"), analyst("Carol"),
	}}}
	g := NewGenerator(client, 2)

	analysts, err := g.Create(context.Background(), "job posting", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(analysts) != 2 || analysts[0].Name != "Alice" || analysts[1].Name != "Bob" {
		t.Fatalf("unexpected analyst set: %+v", analysts)
	}
}

func TestGeneratorRejectsEmptySet(t *testing.T) {
	client := &fakeClient{}
	g := NewGenerator(client, 2)

	if _, err := g.Create(context.Background(), "job posting", ""); err == nil {
		t.Fatal("expected error for empty persona set")
	}
}
