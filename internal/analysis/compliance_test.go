package analysis

import (
	"strings"
	"testing"
)

func TestParseVerdictYes(t *testing.T) {
	answer, reasoning := ParseVerdict("YES: The budget section is present on page 4.")
	if answer == nil || !*answer {
		t.Fatalf("expected true answer, got %v", answer)
	}
	if reasoning != "The budget section is present on page 4." {
		t.Fatalf("unexpected reasoning %q", reasoning)
	}
}

func TestParseVerdictNo(t *testing.T) {
	answer, reasoning := ParseVerdict("  no: There is no data management plan.")
	if answer == nil || *answer {
		t.Fatalf("expected false answer, got %v", answer)
	}
	if reasoning != "There is no data management plan." {
		t.Fatalf("unexpected reasoning %q", reasoning)
	}
}

func TestParseVerdictUnsure(t *testing.T) {
	answer, reasoning := ParseVerdict("UNSURE: The call does not state a page limit.")
	if answer != nil {
		t.Fatalf("expected nil answer, got %v", *answer)
	}
	if reasoning != "The call does not state a page limit." {
		t.Fatalf("unexpected reasoning %q", reasoning)
	}
}

func TestParseVerdictUnexpectedFormat(t *testing.T) {
	answer, reasoning := ParseVerdict("The proposal looks fine to me.")
	if answer != nil {
		t.Fatalf("expected nil answer for malformed response")
	}
	if !strings.HasPrefix(reasoning, "Unexpected response format:") {
		t.Fatalf("expected format notice, got %q", reasoning)
	}
	if !strings.Contains(reasoning, "The proposal looks fine to me.") {
		t.Fatalf("original response not preserved in %q", reasoning)
	}
}

func TestVerdictLabel(t *testing.T) {
	yes, no := true, false
	if got := VerdictLabel(&yes); got != "YES" {
		t.Fatalf("expected YES, got %q", got)
	}
	if got := VerdictLabel(&no); got != "NO" {
		t.Fatalf("expected NO, got %q", got)
	}
	if got := VerdictLabel(nil); got != "UNSURE" {
		t.Fatalf("expected UNSURE, got %q", got)
	}
}

func TestBuildCompliancePromptSections(t *testing.T) {
	prompt := buildCompliancePrompt("call text", "proposal text", "Is there a budget?", "")
	for _, marker := range []string{"--- CALL ---", "--- PROPOSAL ---", "--- QUESTION ---", "Is there a budget?"} {
		if !strings.Contains(prompt, marker) {
			t.Fatalf("prompt missing %q", marker)
		}
	}
}

func TestBuildCompliancePromptOmitsEmptyCall(t *testing.T) {
	prompt := buildCompliancePrompt("", "proposal text", "Is there a budget?", "")
	if strings.Contains(prompt, "--- CALL ---") {
		t.Fatalf("call section should be omitted when no call text is given")
	}
}
