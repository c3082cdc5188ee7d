package review

import (
	"context"
	"strings"
	"testing"
)

func TestPersonaValid(t *testing.T) {
	for _, p := range []Persona{PersonaSeniorScientist, PersonaEarlyCareer, PersonaProgramManager} {
		if !p.Valid() {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	if Persona("grumpy_editor").Valid() {
		t.Fatalf("unknown persona reported valid")
	}
}

func TestPersonaDisplayName(t *testing.T) {
	if name := PersonaSeniorScientist.DisplayName(); name == "" || name == string(PersonaSeniorScientist) {
		t.Fatalf("expected a human-readable display name, got %q", name)
	}
}

func TestPersonaPromptsReviewTheProposal(t *testing.T) {
	for persona, prompt := range systemPrompts {
		if !strings.Contains(prompt, "PROPOSAL document, not the call") {
			t.Fatalf("persona %q prompt missing proposal focus", persona)
		}
	}
	if !strings.Contains(promptTrailer, "**Output Format**") {
		t.Fatalf("shared trailer missing output format section")
	}
}

func TestGenerateRejectsUnknownPersona(t *testing.T) {
	r := New(nil, "test-model")

	_, err := r.Generate(context.Background(), Persona("grumpy_editor"), "proposal text", "")
	if err == nil {
		t.Fatalf("expected error for unknown persona")
	}
}

func TestGenerateRejectsEmptyProposal(t *testing.T) {
	r := New(nil, "test-model")

	_, err := r.Generate(context.Background(), PersonaSeniorScientist, "   ", "call text")
	if err == nil {
		t.Fatalf("expected error for empty proposal text")
	}
}
