package extract

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe = regexp.MustCompile(`(\w)-(\r\n|\r|\n)(\w)`)
	lineSpaceRe   = regexp.MustCompile("[ \t ]+")
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes raw extracted text: words hyphenated across line
// breaks are re-joined, line endings become \n, intra-line whitespace
// collapses to single spaces, and blank-line runs are capped at one.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}

	text := hyphenBreakRe.ReplaceAllString(raw, "$1$3")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(lineSpaceRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	text = blankLinesRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// ParseQuestions splits a question file into one question per non-blank line.
func ParseQuestions(content string) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
