package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newAnalysisHandler(t *testing.T, questionsContent string) *AnalysisHandler {
	t.Helper()

	questionsFile := filepath.Join(t.TempDir(), "questions.txt")
	if questionsContent != "" {
		if err := os.WriteFile(questionsFile, []byte(questionsContent), 0o644); err != nil {
			t.Fatalf("failed to seed questions: %v", err)
		}
	}

	return NewAnalysisHandler(nil, nil, NewQuestionsHandler(questionsFile), "senior_scientist")
}

func TestBuildRunRequestRequiresProposal(t *testing.T) {
	h := newAnalysisHandler(t, "")

	_, _, err := h.buildRunRequest(analysisRequest{Review: true})
	if err == nil || !strings.Contains(err.Error(), "proposal_doc_id") {
		t.Fatalf("expected proposal_doc_id error, got %v", err)
	}
}

func TestBuildRunRequestRequiresAService(t *testing.T) {
	h := newAnalysisHandler(t, "")

	_, _, err := h.buildRunRequest(analysisRequest{ProposalDocID: "doc-1"})
	if err == nil || !strings.Contains(err.Error(), "at least one") {
		t.Fatalf("expected service selection error, got %v", err)
	}
}

func TestBuildRunRequestRejectsUnknownPersona(t *testing.T) {
	h := newAnalysisHandler(t, "")

	_, _, err := h.buildRunRequest(analysisRequest{
		ProposalDocID:   "doc-1",
		Review:          true,
		ReviewerPersona: "grumpy_editor",
	})
	if err == nil || !strings.Contains(err.Error(), "reviewer_persona") {
		t.Fatalf("expected persona error, got %v", err)
	}
}

func TestBuildRunRequestDefaultsPersona(t *testing.T) {
	h := newAnalysisHandler(t, "")

	runReq, _, err := h.buildRunRequest(analysisRequest{
		ProposalDocID: "doc-1",
		Review:        true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(runReq.Persona) != "senior_scientist" {
		t.Fatalf("expected default persona, got %q", runReq.Persona)
	}
}

func TestBuildRunRequestLoadsDefaultQuestions(t *testing.T) {
	h := newAnalysisHandler(t, "Is there a budget?\nIs the PI named?\n")

	runReq, notices, err := h.buildRunRequest(analysisRequest{
		ProposalDocID: "doc-1",
		Compliance:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notices) != 0 {
		t.Fatalf("unexpected notices %v", notices)
	}
	if !runReq.RunCompliance || len(runReq.Questions) != 2 {
		t.Fatalf("expected 2 questions with compliance enabled, got %+v", runReq)
	}
}

func TestBuildRunRequestSkipsComplianceWithoutQuestions(t *testing.T) {
	h := newAnalysisHandler(t, "")

	runReq, notices, err := h.buildRunRequest(analysisRequest{
		ProposalDocID: "doc-1",
		Compliance:    true,
		Proofread:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runReq.RunCompliance {
		t.Fatalf("compliance should be skipped when no questions exist")
	}
	if !runReq.RunProofread {
		t.Fatalf("proofread flag lost")
	}
	if len(notices) != 1 {
		t.Fatalf("expected a skip notice, got %v", notices)
	}
}

func TestBuildRunRequestFailsWhenNothingLeft(t *testing.T) {
	h := newAnalysisHandler(t, "")

	_, _, err := h.buildRunRequest(analysisRequest{
		ProposalDocID: "doc-1",
		Compliance:    true,
	})
	if err == nil {
		t.Fatalf("expected error when compliance is the only service and no questions exist")
	}
}
