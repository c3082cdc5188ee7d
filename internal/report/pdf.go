package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/analysis"
	"github.com/proposal-analyzer/backend/pkg/logger"
	"github.com/proposal-analyzer/backend/pkg/utils"
)

// Metadata is the header block of a report: which documents were analyzed
// and with what.
type Metadata struct {
	ProposalFilename  string
	CallFilename      string
	QuestionsFilename string
	AnalysisModel     string
	FeedbackModel     string
	ProofreadModel    string
	GeneratedAt       time.Time
}

// Generator writes analysis run results as PDF files into exportDir.
type Generator struct {
	exportDir string
}

func NewGenerator(exportDir string) (*Generator, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &Generator{exportDir: exportDir}, nil
}

// Generate renders the result to a PDF and returns the generated filename
// and its absolute path. The filename embeds a short token so repeated
// exports of the same proposal do not collide.
func (g *Generator) Generate(result *analysis.Result, meta Metadata) (filename, path string, err error) {
	stem := strings.TrimSuffix(meta.ProposalFilename, filepath.Ext(meta.ProposalFilename))
	stem = sanitizeStem(stem)
	token := utils.ShortToken(fmt.Sprintf("%s:%d", result.RunID, meta.GeneratedAt.UnixNano()), 8)
	filename = fmt.Sprintf("%s_analysis_%s.pdf", stem, token)
	path = filepath.Join(g.exportDir, filename)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	writeHeader(pdf, meta)

	if len(result.Compliance) > 0 {
		writeComplianceSection(pdf, result.Compliance)
	}
	if result.ReviewFeedback != "" {
		writeReviewSection(pdf, result.Persona, result.ReviewFeedback)
	}
	if len(result.ProofreadFindings) > 0 {
		writeProofreadSection(pdf, result)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", "", fmt.Errorf("failed to write PDF: %w", err)
	}

	logger.Info("Report generated",
		zap.String("run_id", result.RunID),
		zap.String("filename", filename),
	)

	return filename, path, nil
}

func writeHeader(pdf *gofpdf.Fpdf, meta Metadata) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Proposal Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	writeMetaLine(pdf, "Proposal", meta.ProposalFilename)
	if meta.CallFilename != "" {
		writeMetaLine(pdf, "Call for proposal", meta.CallFilename)
	}
	if meta.QuestionsFilename != "" {
		writeMetaLine(pdf, "Questions", meta.QuestionsFilename)
	}

	var modelParts []string
	if meta.AnalysisModel != "" {
		modelParts = append(modelParts, "analysis: "+meta.AnalysisModel)
	}
	if meta.FeedbackModel != "" {
		modelParts = append(modelParts, "feedback: "+meta.FeedbackModel)
	}
	if meta.ProofreadModel != "" {
		modelParts = append(modelParts, "proofreading: "+meta.ProofreadModel)
	}
	if len(modelParts) > 0 {
		writeMetaLine(pdf, "Models", strings.Join(modelParts, ", "))
	}
	writeMetaLine(pdf, "Generated", meta.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	pdf.Ln(4)
}

func writeMetaLine(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

func writeSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func writeComplianceSection(pdf *gofpdf.Fpdf, items []analysis.ComplianceResult) {
	writeSectionTitle(pdf, "Compliance Analysis")

	questionWidth := 105.0
	verdictWidth := 25.0
	reasoningWidth := 60.0
	lineHeight := 5.0

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(50, 50, 50)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(questionWidth, 7, "Question", "1", 0, "L", true, 0, "")
	pdf.CellFormat(verdictWidth, 7, "Verdict", "1", 0, "C", true, 0, "")
	pdf.CellFormat(reasoningWidth, 7, "Reasoning", "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		questionLines := pdf.SplitText(item.Question, questionWidth-2)
		reasoningLines := pdf.SplitText(item.Reasoning, reasoningWidth-2)
		rows := len(questionLines)
		if len(reasoningLines) > rows {
			rows = len(reasoningLines)
		}
		if rows == 0 {
			rows = 1
		}
		rowHeight := float64(rows) * lineHeight

		if pdf.GetY()+rowHeight > 280 {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()

		pdf.Rect(x, y, questionWidth, rowHeight, "D")
		pdf.SetXY(x+1, y)
		pdf.MultiCell(questionWidth-2, lineHeight, strings.Join(questionLines, "\n"), "", "L", false)

		r, gr, b := verdictColor(item.Verdict)
		pdf.SetFillColor(r, gr, b)
		pdf.SetXY(x+questionWidth, y)
		pdf.CellFormat(verdictWidth, rowHeight, item.Verdict, "1", 0, "C", true, 0, "")

		pdf.SetXY(x+questionWidth+verdictWidth, y)
		pdf.Rect(x+questionWidth+verdictWidth, y, reasoningWidth, rowHeight, "D")
		pdf.SetXY(x+questionWidth+verdictWidth+1, y)
		pdf.MultiCell(reasoningWidth-2, lineHeight, strings.Join(reasoningLines, "\n"), "", "L", false)

		pdf.SetXY(x, y+rowHeight)
	}
	pdf.Ln(4)
}

func verdictColor(verdict string) (r, g, b int) {
	switch verdict {
	case "YES":
		return 198, 239, 206
	case "NO":
		return 255, 199, 206
	default:
		return 255, 235, 156
	}
}

func writeReviewSection(pdf *gofpdf.Fpdf, persona, feedback string) {
	title := "Reviewer Feedback"
	if persona != "" {
		title = fmt.Sprintf("Reviewer Feedback (%s)", persona)
	}
	writeSectionTitle(pdf, title)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, feedback, "", "L", false)
	pdf.Ln(4)
}

func writeProofreadSection(pdf *gofpdf.Fpdf, result *analysis.Result) {
	writeSectionTitle(pdf, fmt.Sprintf("Proofreading (%d findings)", len(result.ProofreadFindings)))

	pdf.SetFont("Helvetica", "", 9)
	for i, f := range result.ProofreadFindings {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("%d. [%s] line %d", i+1, f.Type, f.LineNumber), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Text: %s", f.Snippet), "", "L", false)
		if f.Suggestion != "" {
			pdf.MultiCell(0, 5, fmt.Sprintf("Suggestion: %s", f.Suggestion), "", "L", false)
		}
		if f.Explanation != "" {
			pdf.MultiCell(0, 5, f.Explanation, "", "L", false)
		}
		pdf.Ln(2)
	}
}

// sanitizeStem keeps the exported filename shell- and URL-safe.
func sanitizeStem(stem string) string {
	var sb strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out == "" {
		out = "proposal"
	}
	if len(out) > 60 {
		out = out[:60]
	}
	return out
}
