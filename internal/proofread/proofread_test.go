package proofread

import (
	"testing"
)

func TestParseIssueJSONBareList(t *testing.T) {
	raw := `[{"original_snippet_text": "teh", "suggestion": "the", "type": "spelling", "start_offset_in_chunk": 4, "end_offset_in_chunk": 7, "explanation": "Transposed letters."}]`

	issues, err := parseIssueJSON(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].OriginalSnippetText != "teh" || issues[0].Type != "spelling" {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestParseIssueJSONCodeFence(t *testing.T) {
	raw := "Here are the issues I found:\n```json\n[{\"original_snippet_text\": \"recieve\", \"suggestion\": \"receive\", \"type\": \"spelling\", \"start_offset_in_chunk\": 0, \"end_offset_in_chunk\": 7, \"explanation\": \"i before e.\"}]\n```"

	issues, err := parseIssueJSON(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(issues) != 1 || issues[0].Suggestion != "receive" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestParseIssueJSONSurroundingProse(t *testing.T) {
	raw := "I reviewed the chunk carefully. [] No errors were found."

	issues, err := parseIssueJSON(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %d", len(issues))
	}
}

func TestParseIssueJSONNoList(t *testing.T) {
	if _, err := parseIssueJSON("The text looks fine."); err == nil {
		t.Fatalf("expected error for response without a JSON list")
	}
}

func TestLocateIssueValidOffsets(t *testing.T) {
	full := "intro line\nthe the proposal is good"
	chunk := Chunk{Text: full[11:], Start: 11, Line: 2}

	issue := rawIssue{
		OriginalSnippetText: "the the",
		Suggestion:          "the",
		Type:                "repetition",
		StartOffsetInChunk:  0,
		EndOffsetInChunk:    7,
	}

	finding, ok := locateIssue(issue, chunk, full)
	if !ok {
		t.Fatalf("expected issue to be located")
	}
	if finding.CharOffset != 11 {
		t.Fatalf("expected absolute offset 11, got %d", finding.CharOffset)
	}
	if finding.LineNumber != 2 {
		t.Fatalf("expected line 2, got %d", finding.LineNumber)
	}
}

func TestLocateIssueRelocatesBadOffsets(t *testing.T) {
	full := "some text with a typo: recieve here"
	chunk := Chunk{Text: full, Start: 0, Line: 1}

	issue := rawIssue{
		OriginalSnippetText: "recieve",
		StartOffsetInChunk:  2,
		EndOffsetInChunk:    9,
	}

	finding, ok := locateIssue(issue, chunk, full)
	if !ok {
		t.Fatalf("expected relocation to succeed")
	}
	if finding.CharOffset != 23 {
		t.Fatalf("expected relocated offset 23, got %d", finding.CharOffset)
	}
}

func TestLocateIssueDropsUnmatchedSnippet(t *testing.T) {
	chunk := Chunk{Text: "clean text only", Start: 0, Line: 1}

	if _, ok := locateIssue(rawIssue{OriginalSnippetText: "hallucinated"}, chunk, chunk.Text); ok {
		t.Fatalf("expected unmatched snippet to be dropped")
	}
	if _, ok := locateIssue(rawIssue{}, chunk, chunk.Text); ok {
		t.Fatalf("expected empty snippet to be dropped")
	}
}
