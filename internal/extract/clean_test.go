package extract

import (
	"reflect"
	"testing"
)

func TestCleanTextRejoinsHyphenBreaks(t *testing.T) {
	got := CleanText("The pro-\nposal addresses the require-\r\nments.")
	want := "The proposal addresses the requirements."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	got := CleanText("A   line\twith\t\tgaps  \n\n\n\n\nNext paragraph")
	want := "A line with gaps\n\nNext paragraph"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCleanTextNormalizesLineEndings(t *testing.T) {
	got := CleanText("one\r\ntwo\rthree")
	want := "one\ntwo\nthree"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCleanTextEmptyInput(t *testing.T) {
	if got := CleanText(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := CleanText("   \n\t\n  "); got != "" {
		t.Fatalf("expected empty output for whitespace input, got %q", got)
	}
}

func TestParseQuestions(t *testing.T) {
	content := "Does the proposal include a budget?\n\n  Is the PI identified?  \n\nIs there a timeline?\n"
	got := ParseQuestions(content)
	want := []string{
		"Does the proposal include a budget?",
		"Is the PI identified?",
		"Is there a timeline?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseQuestionsEmpty(t *testing.T) {
	if got := ParseQuestions("\n  \n"); got != nil {
		t.Fatalf("expected nil for blank content, got %v", got)
	}
}
