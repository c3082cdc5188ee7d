package extract

import (
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// extractDOCX reads paragraph text first, then table cell text, matching the
// order reviewers see the content in.
func extractDOCX(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer doc.Close()

	var parts []string

	for _, para := range doc.Paragraphs() {
		text := paragraphText(para)
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				for _, para := range cell.Paragraphs() {
					text := paragraphText(para)
					if strings.TrimSpace(text) != "" {
						parts = append(parts, text)
					}
				}
			}
		}
	}

	return strings.Join(parts, "\n"), nil
}

func paragraphText(para document.Paragraph) string {
	var sb strings.Builder
	for _, run := range para.Runs() {
		sb.WriteString(run.Text())
	}
	return sb.String()
}
