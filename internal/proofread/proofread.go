package proofread

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/llm"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

const systemPrompt = `You are an expert proofreader. Your task is to analyze the user-provided text chunk for errors. The text is extracted from a PDF and may contain artifacts such as incorrect word breaks, unusual spacing, or minor OCR errors. Try to infer the intended meaning. Focus on clear errors in spelling, grammar, punctuation, contextual appropriateness, and repetition that are likely not just PDF conversion artifacts if the meaning is still discernible. Only focus on complete sentences. Ignore formatting errors. Ignore text snippets that are likely extracted from tables or similar non-body text.
For EACH error you find, you MUST return a JSON object with the following exact keys and value types:
  "original_snippet_text": string (This MUST be the EXACT, verbatim text substring from the input chunk that contains the error. Do NOT alter it.),
  "suggestion": string (Your suggested correction for the snippet.),
  "type": string (Categorize the error, e.g., 'spelling', 'grammar', 'punctuation', 'repetition', 'contextual', 'awkward_phrasing', 'ocr_artifact'),
  "start_offset_in_chunk": integer (The 0-indexed character start offset of "original_snippet_text" within the provided text chunk.),
  "end_offset_in_chunk": integer (The 0-indexed character end offset, such that text_chunk[start_offset_in_chunk:end_offset_in_chunk] == original_snippet_text.),
  "explanation": string (A brief explanation of the error and your correction.)
Respond with a single JSON list containing these objects. If no errors are found, output an empty JSON list: [].
Output ONLY the JSON list of objects, with no other text before or after it.`

// Finding is a proofreading issue located against the full document.
type Finding struct {
	Type        string `json:"type"`
	Snippet     string `json:"original_snippet"`
	Suggestion  string `json:"suggestion"`
	Explanation string `json:"explanation"`
	LineNumber  int    `json:"line_number"`
	CharOffset  int    `json:"char_offset_start_in_doc"`
}

type rawIssue struct {
	OriginalSnippetText string `json:"original_snippet_text"`
	Suggestion          string `json:"suggestion"`
	Type                string `json:"type"`
	StartOffsetInChunk  int    `json:"start_offset_in_chunk"`
	EndOffsetInChunk    int    `json:"end_offset_in_chunk"`
	Explanation         string `json:"explanation"`
}

// Proofreader runs the chunked LLM proofreading pass.
type Proofreader struct {
	llm          *llm.Client
	model        string
	chunkSize    int
	chunkOverlap int
}

func New(llmClient *llm.Client, model string, chunkSize, chunkOverlap int) *Proofreader {
	return &Proofreader{
		llm:          llmClient,
		model:        model,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Run proofreads the document text chunk by chunk. progress, when non-nil,
// is called after each chunk with (done, total).
func (p *Proofreader) Run(ctx context.Context, text string, progress func(current, total int)) ([]Finding, error) {
	chunks, err := chunkText(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}

	logger.Info("Proofreading started",
		zap.Int("chunks", len(chunks)),
		zap.Int("chars", len(text)),
	)

	var findings []Finding
	seen := make(map[string]bool)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.llm.Complete(ctx, llm.CompletionRequest{
			Model:        p.model,
			SystemPrompt: systemPrompt,
			UserPrompt:   chunk.Text,
		})
		if err != nil {
			return nil, fmt.Errorf("proofreading chunk %d failed: %w", i, err)
		}

		issues, err := parseIssueJSON(resp.Content)
		if err != nil {
			logger.Warn("Unparseable proofreading response, skipping chunk",
				zap.Int("chunk", i),
				zap.Error(err),
			)
			continue
		}

		for _, issue := range issues {
			finding, ok := locateIssue(issue, chunk, text)
			if !ok {
				logger.Debug("Dropping unlocatable finding",
					zap.Int("chunk", i),
					zap.String("snippet", issue.OriginalSnippetText),
				)
				continue
			}

			// Chunks overlap; the same issue can come back twice.
			key := fmt.Sprintf("%d:%s", finding.CharOffset, finding.Snippet)
			if seen[key] {
				continue
			}
			seen[key] = true
			findings = append(findings, finding)
		}

		if progress != nil {
			progress(i+1, len(chunks))
		}
	}

	logger.Info("Proofreading finished", zap.Int("findings", len(findings)))

	return findings, nil
}

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parseIssueJSON extracts the JSON issue list from a model response,
// tolerating markdown code fences and surrounding prose.
func parseIssueJSON(raw string) ([]rawIssue, error) {
	jsonStr := strings.TrimSpace(raw)

	if m := jsonFenceRe.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = m[1]
	} else {
		start := strings.Index(jsonStr, "[")
		end := strings.LastIndex(jsonStr, "]")
		if start < 0 || end <= start {
			if jsonStr == "" || strings.EqualFold(jsonStr, "[]") {
				return nil, nil
			}
			return nil, fmt.Errorf("no JSON list found in response")
		}
		jsonStr = jsonStr[start : end+1]
	}

	var issues []rawIssue
	if err := json.Unmarshal([]byte(jsonStr), &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issue list: %w", err)
	}

	return issues, nil
}

// locateIssue validates the claimed offsets against the chunk text; if they
// do not line up it searches for the snippet instead. Findings whose snippet
// is not in the chunk at all are dropped.
func locateIssue(issue rawIssue, chunk Chunk, fullText string) (Finding, bool) {
	snippet := issue.OriginalSnippetText
	if snippet == "" {
		return Finding{}, false
	}

	start := issue.StartOffsetInChunk
	end := issue.EndOffsetInChunk
	if start < 0 || end > len(chunk.Text) || end <= start || chunk.Text[start:end] != snippet {
		idx := strings.Index(chunk.Text, snippet)
		if idx < 0 {
			return Finding{}, false
		}
		start = idx
	}

	abs := chunk.Start + start

	return Finding{
		Type:        issue.Type,
		Snippet:     snippet,
		Suggestion:  issue.Suggestion,
		Explanation: issue.Explanation,
		LineNumber:  lineOf(fullText, abs),
		CharOffset:  abs,
	}, true
}
