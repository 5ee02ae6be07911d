package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/prompts"
	"github.com/seekwell/seekwell/internal/schema"
)

// Speaker names used inside interview transcripts.
const (
	speakerExpert    = "expert"
	speakerCandidate = "candidate"
)

// Result is the outcome of one analyst's interview session.
type Result struct {
	Analyst    schema.Analyst
	Transcript string
	Section    string
}

// session runs one analyst's question-and-answer loop against the simulated
// candidate. Each session keeps its own isolated history; nothing from the
// outer conversation leaks in except the resume and document context.
type session struct {
	client    llm.Client
	analyst   schema.Analyst
	resume    string
	documents string
	maxTurns  int
}

// run drives the interview to completion and writes the report section.
// Every question gets answered; after each answer the session stops when the
// question just answered contained the stop phrase or when maxTurns answered
// pairs have accumulated. A closing question in the very first turn still
// yields one full pair and a section.
func (s *session) run(ctx context.Context) (Result, error) {
	persona := s.analyst.Persona()
	msgs := []llm.Message{{Role: llm.RoleUser, Name: speakerCandidate, Content: prompts.InterviewOpening}}
	answers := 0

	for {
		question, err := s.client.Complete(ctx, prompts.Question(persona, s.resume), msgs)
		if err != nil {
			return Result{}, fmt.Errorf("interview: %s: ask question: %w", s.analyst.Name, err)
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Name: speakerExpert, Content: question.Content})

		answer, err := s.client.Complete(ctx, prompts.Answer(persona, s.resume, s.documents), msgs)
		if err != nil {
			return Result{}, fmt.Errorf("interview: %s: answer question: %w", s.analyst.Name, err)
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Name: speakerCandidate, Content: answer.Content})
		answers++
		if strings.Contains(question.Content, prompts.StopPhrase) {
			break
		}
		if answers >= s.maxTurns {
			break
		}
	}

	transcript := llm.Transcript(msgs)
	section, err := s.writeSection(ctx, transcript)
	if err != nil {
		return Result{}, err
	}
	return Result{Analyst: s.analyst, Transcript: transcript, Section: section}, nil
}

func (s *session) writeSection(ctx context.Context, transcript string) (string, error) {
	msgs := []llm.Message{{
		Role:    llm.RoleUser,
		Content: "Use this source to write your section: " + transcript,
	}}
	section, err := s.client.Complete(ctx, prompts.SectionWriter, msgs)
	if err != nil {
		return "", fmt.Errorf("interview: %s: write section: %w", s.analyst.Name, err)
	}
	return section.Content, nil
}
