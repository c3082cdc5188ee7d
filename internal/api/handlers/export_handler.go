package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/analysis"
	"github.com/proposal-analyzer/backend/internal/metrics"
	"github.com/proposal-analyzer/backend/internal/middleware/validation"
	"github.com/proposal-analyzer/backend/internal/proofread"
	"github.com/proposal-analyzer/backend/internal/report"
	"github.com/proposal-analyzer/backend/internal/review"
	"github.com/proposal-analyzer/backend/internal/storage/artifacts"
	"github.com/proposal-analyzer/backend/internal/storage/models"
	"github.com/proposal-analyzer/backend/internal/storage/sqlite"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

// ModelNames records which models ran each service, for the report header.
type ModelNames struct {
	Analysis  string
	Feedback  string
	Proofread string
}

type ExportHandler struct {
	db        *sqlite.Client
	generator *report.Generator
	artifacts *artifacts.Store
	models    ModelNames
}

func NewExportHandler(db *sqlite.Client, generator *report.Generator,
	store *artifacts.Store, modelNames ModelNames) *ExportHandler {

	return &ExportHandler{
		db:        db,
		generator: generator,
		artifacts: store,
		models:    modelNames,
	}
}

// Create generates a PDF report for a persisted analysis run.
func (h *ExportHandler) Create(c *fiber.Ctx) error {
	var req struct {
		AnalysisID string `json:"analysis_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.AnalysisID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "analysis_id is required",
		})
	}

	result, meta, err := h.loadRun(req.AnalysisID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis run not found",
		})
	}

	filename, path, err := h.generator.Generate(result, meta)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failed").Inc()
		logger.Error("Report generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	var artifactURL string
	if h.artifacts != nil {
		artifactURL, err = h.artifacts.Upload(c.Context(), path, filename)
		if err != nil {
			logger.Warn("Artifact upload failed, report still available locally",
				zap.String("filename", filename),
				zap.Error(err),
			)
			artifactURL = ""
		}
	}

	record := &models.ExportRecord{
		ID:        uuid.New().String(),
		RunID:     req.AnalysisID,
		Filename:  filename,
		Path:      path,
		URL:       artifactURL,
		CreatedAt: time.Now(),
	}
	if err := h.db.InsertExport(record); err != nil {
		logger.Error("Failed to record export", zap.Error(err))
	}

	metrics.ExportsTotal.WithLabelValues("completed").Inc()

	resp := fiber.Map{"filename": filename}
	if artifactURL != "" {
		resp["url"] = artifactURL
	}
	return c.JSON(resp)
}

// Download serves a previously generated report. Only filenames recorded in
// the exports table are served, which also closes the path-traversal hole.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	filename := validation.SanitizeFilename(c.Params("filename"))
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid filename",
		})
	}

	record, err := h.db.GetExportByFilename(filename)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	return c.Download(record.Path, record.Filename)
}

// loadRun rebuilds a run result and its report metadata from SQLite.
func (h *ExportHandler) loadRun(runID string) (*analysis.Result, report.Metadata, error) {
	run, err := h.db.GetAnalysisRun(runID)
	if err != nil {
		return nil, report.Metadata{}, err
	}

	proposal, err := h.db.GetDocument(run.ProposalDocID)
	if err != nil {
		return nil, report.Metadata{}, err
	}

	meta := report.Metadata{
		ProposalFilename: proposal.Filename,
		GeneratedAt:      time.Now(),
	}
	if run.CallDocID != "" {
		if call, err := h.db.GetDocument(run.CallDocID); err == nil {
			meta.CallFilename = call.Filename
		}
	}
	if run.QuestionsDocID != "" {
		if qdoc, err := h.db.GetDocument(run.QuestionsDocID); err == nil {
			meta.QuestionsFilename = qdoc.Filename
		}
	}
	if run.RunCompliance {
		meta.AnalysisModel = h.models.Analysis
	}
	if run.RunReview {
		meta.FeedbackModel = h.models.Feedback
	}
	if run.RunProofread {
		meta.ProofreadModel = h.models.Proofread
	}

	result := &analysis.Result{
		RunID:            run.ID,
		ProposalFilename: proposal.Filename,
		LatencyMS:        run.LatencyMS,
	}

	items, err := h.db.GetComplianceItems(runID)
	if err != nil {
		return nil, report.Metadata{}, err
	}
	for _, item := range items {
		result.Compliance = append(result.Compliance, analysis.ComplianceResult{
			Question:  item.Question,
			Answer:    item.Answer,
			Verdict:   analysis.VerdictLabel(item.Answer),
			Reasoning: item.Reasoning,
			Cached:    item.Cached,
		})
	}

	reviews, err := h.db.GetReviewFindings(runID)
	if err != nil {
		return nil, report.Metadata{}, err
	}
	if len(reviews) > 0 {
		result.Persona = review.Persona(reviews[0].Persona).DisplayName()
		result.ReviewFeedback = reviews[0].Feedback
	}

	findings, err := h.db.GetProofreadFindings(runID)
	if err != nil {
		return nil, report.Metadata{}, err
	}
	for _, f := range findings {
		result.ProofreadFindings = append(result.ProofreadFindings, proofread.Finding{
			Type:        f.IssueType,
			Snippet:     f.Snippet,
			Suggestion:  f.Suggestion,
			Explanation: f.Explanation,
			LineNumber:  f.LineNumber,
			CharOffset:  f.CharOffset,
		})
	}

	return result, meta, nil
}
