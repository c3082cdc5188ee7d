package handlers

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/analysis"
	"github.com/proposal-analyzer/backend/internal/extract"
	"github.com/proposal-analyzer/backend/internal/review"
	"github.com/proposal-analyzer/backend/internal/storage/sqlite"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

type analysisRequest struct {
	ProposalDocID   string `json:"proposal_doc_id"`
	CallDocID       string `json:"call_doc_id"`
	QuestionsDocID  string `json:"questions_doc_id"`
	Compliance      bool   `json:"compliance"`
	Review          bool   `json:"review"`
	Proofread       bool   `json:"proofread"`
	ReviewerPersona string `json:"reviewer_persona"`
	Instructions    string `json:"instructions"`
}

type AnalysisHandler struct {
	engine         *analysis.Engine
	db             *sqlite.Client
	questions      *QuestionsHandler
	defaultPersona review.Persona

	// One LLM conversation at a time; runs block on model round-trips.
	runMu sync.Mutex
}

func NewAnalysisHandler(engine *analysis.Engine, db *sqlite.Client,
	questions *QuestionsHandler, defaultPersona string) *AnalysisHandler {

	return &AnalysisHandler{
		engine:         engine,
		db:             db,
		questions:      questions,
		defaultPersona: review.Persona(defaultPersona),
	}
}

// buildRunRequest validates the HTTP request and resolves the question list.
// When compliance is requested but no questions exist anywhere, the step is
// dropped rather than failing the run.
func (h *AnalysisHandler) buildRunRequest(req analysisRequest) (analysis.RunRequest, []string, error) {
	if req.ProposalDocID == "" {
		return analysis.RunRequest{}, nil, fmt.Errorf("proposal_doc_id is required")
	}
	if !req.Compliance && !req.Review && !req.Proofread {
		return analysis.RunRequest{}, nil, fmt.Errorf("at least one of compliance, review, proofread must be enabled")
	}

	persona := review.Persona(req.ReviewerPersona)
	if persona == "" {
		persona = h.defaultPersona
	}
	if req.Review && !persona.Valid() {
		return analysis.RunRequest{}, nil, fmt.Errorf("unknown reviewer_persona %q", req.ReviewerPersona)
	}

	var notices []string
	var questions []string

	if req.Compliance {
		if req.QuestionsDocID != "" {
			doc, err := h.db.GetDocument(req.QuestionsDocID)
			if err != nil {
				return analysis.RunRequest{}, nil, fmt.Errorf("questions document not found")
			}
			questions = extract.ParseQuestions(doc.Text)
		} else {
			loaded, err := h.questions.Load()
			if err != nil {
				return analysis.RunRequest{}, nil, fmt.Errorf("failed to load question list: %w", err)
			}
			questions = loaded
		}

		if len(questions) == 0 {
			notices = append(notices, "No questions available; skipping compliance analysis")
			req.Compliance = false
		}
	}

	if !req.Compliance && !req.Review && !req.Proofread {
		return analysis.RunRequest{}, nil, fmt.Errorf("no questions available for compliance analysis")
	}

	return analysis.RunRequest{
		ProposalDocID:  req.ProposalDocID,
		CallDocID:      req.CallDocID,
		QuestionsDocID: req.QuestionsDocID,
		Questions:      questions,
		Persona:        persona,
		RunCompliance:  req.Compliance,
		RunReview:      req.Review,
		RunProofread:   req.Proofread,
		Instructions:   req.Instructions,
	}, notices, nil
}

// Stream runs the analysis and streams progress as server-sent events. The
// request is fully parsed before streaming starts; the fasthttp context is
// not safe to touch from inside the stream writer.
func (h *AnalysisHandler) Stream(c *fiber.Ctx) error {
	var req analysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	runReq, notices, err := h.buildRunRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// The fasthttp request context is recycled once streaming starts, so the
	// run gets its own context, cancelled when a write shows the client gone.
	ctx, cancelRun := context.WithCancel(context.Background())

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancelRun()

		emit := func(ev analysis.Event) {
			if _, err := w.WriteString(ev.SSE()); err != nil {
				cancelRun()
				return
			}
			if err := w.Flush(); err != nil {
				logger.Debug("SSE client disconnected", zap.Error(err))
				cancelRun()
			}
		}

		for _, notice := range notices {
			emit(analysis.LogEvent(notice))
		}

		h.runMu.Lock()
		_, err := h.engine.Run(ctx, runReq, emit)
		h.runMu.Unlock()

		if err != nil {
			logger.Error("Analysis run failed", zap.Error(err))
			emit(analysis.ErrorEvent("Analysis failed", err.Error()))
		}

		emit(analysis.StreamEndEvent())
	})

	return nil
}

// History returns the most recent persisted runs.
func (h *AnalysisHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	runs, err := h.db.GetAnalysisRuns(limit)
	if err != nil {
		logger.Error("Failed to load run history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	out := make([]fiber.Map, 0, len(runs))
	for _, r := range runs {
		out = append(out, fiber.Map{
			"id":              r.ID,
			"proposal_doc_id": r.ProposalDocID,
			"call_doc_id":     r.CallDocID,
			"persona":         r.Persona,
			"compliance":      r.RunCompliance,
			"review":          r.RunReview,
			"proofread":       r.RunProofread,
			"status":          r.Status,
			"error":           r.ErrorMessage,
			"latency_ms":      r.LatencyMS,
			"created_at":      r.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"runs":  out,
		"count": len(out),
	})
}
