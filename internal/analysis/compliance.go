package analysis

import (
	"fmt"
	"strings"
)

// The verdict protocol: the model must open with exactly one of the three
// prefixes so the answer can be parsed mechanically. The repetition in the
// prompt is deliberate; smaller models drift into free-form openers without
// it.
const complianceSystemPrompt = `You are an expert compliance checker. Based on the provided context (call for proposal and proposal document), answer the given question with exactly one of these three formats:

"YES: [explanation]" - if the proposal clearly meets the requirement
"NO: [explanation]" - if the proposal clearly does not meet the requirement
"UNSURE: [explanation]" - if the information is unclear, missing, or ambiguous in the call or proposal document

CRITICAL INSTRUCTION: You MUST start your response with exactly one of these prefixes: "YES:", "NO:", or "UNSURE:"

DO NOT START WITH ANY OTHER WORDS. Examples of WRONG formats:
"The proposal appears..."
"Based on the document..."
"Yes, the proposal..."

CORRECT FORMAT EXAMPLES:
"YES: The proposal explicitly states..."
"NO: The proposal does not mention..."
"UNSURE: The proposal mentions alignment but..."

If a question is about comparing the proposal to the call, it is ok to be unsure if the information is not provided in the call or proposal document.

REMINDER: Always start your response with exactly one of: YES:, NO:, or UNSURE:
Never start with any other phrase. This format is REQUIRED and NON-NEGOTIABLE.`

func buildCompliancePrompt(callText, proposalText, question, instructions string) string {
	var sb strings.Builder

	sb.WriteString("Here is the context:\n")
	if callText != "" {
		sb.WriteString(fmt.Sprintf("--- CALL ---\n%s\n\n", callText))
	}
	sb.WriteString(fmt.Sprintf("--- PROPOSAL ---\n%s\n\n", proposalText))
	sb.WriteString(fmt.Sprintf("--- QUESTION ---\n%s\n\n", question))
	sb.WriteString(`IMPORTANT: Start your response with exactly "YES:", "NO:", or "UNSURE:" - no other format is acceptable.`)

	if instructions != "" {
		sb.WriteString("\nAdditional instructions: ")
		sb.WriteString(instructions)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ParseVerdict classifies a raw model response. Answer is true for YES,
// false for NO, nil for UNSURE. Responses that do not carry one of the three
// prefixes also yield nil with the whole response preserved in the reasoning.
func ParseVerdict(raw string) (answer *bool, reasoning string) {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "YES:"):
		v := true
		return &v, strings.TrimSpace(trimmed[len("YES:"):])
	case strings.HasPrefix(upper, "NO:"):
		v := false
		return &v, strings.TrimSpace(trimmed[len("NO:"):])
	case strings.HasPrefix(upper, "UNSURE:"):
		return nil, strings.TrimSpace(trimmed[len("UNSURE:"):])
	default:
		return nil, fmt.Sprintf("Unexpected response format: %s", trimmed)
	}
}

// VerdictLabel renders an answer pointer the way reports display it.
func VerdictLabel(answer *bool) string {
	switch {
	case answer == nil:
		return "UNSURE"
	case *answer:
		return "YES"
	default:
		return "NO"
	}
}
