package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/cache/redis"
	"github.com/proposal-analyzer/backend/internal/llm"
	"github.com/proposal-analyzer/backend/internal/metrics"
	"github.com/proposal-analyzer/backend/internal/proofread"
	"github.com/proposal-analyzer/backend/internal/review"
	"github.com/proposal-analyzer/backend/internal/storage/models"
	"github.com/proposal-analyzer/backend/internal/storage/sqlite"
	"github.com/proposal-analyzer/backend/pkg/logger"
	"github.com/proposal-analyzer/backend/pkg/utils"
)

// RunRequest selects the documents and services for one analysis run.
type RunRequest struct {
	ProposalDocID  string
	CallDocID      string
	QuestionsDocID string
	Questions      []string
	Persona        review.Persona
	RunCompliance  bool
	RunReview      bool
	RunProofread   bool
	Instructions   string
}

// ComplianceResult is one question verdict inside the run result payload.
type ComplianceResult struct {
	Question  string `json:"question"`
	Answer    *bool  `json:"answer"`
	Verdict   string `json:"verdict"`
	Reasoning string `json:"reasoning"`
	Cached    bool   `json:"cached"`
}

// Result is the terminal payload of a run, sent as the SSE result event.
type Result struct {
	RunID             string              `json:"run_id"`
	ProposalFilename  string              `json:"proposal_filename"`
	Persona           string              `json:"persona,omitempty"`
	Compliance        []ComplianceResult  `json:"compliance,omitempty"`
	ReviewFeedback    string              `json:"review_feedback,omitempty"`
	ProofreadFindings []proofread.Finding `json:"proofread_findings,omitempty"`
	LatencyMS         int                 `json:"latency_ms"`
}

// Engine runs the three analysis services against stored documents and
// persists everything it produces. Runs are sequential: one LLM conversation
// at a time, progress streamed through the emitter.
type Engine struct {
	llm           *llm.Client
	db            *sqlite.Client
	cache         *redis.Client
	reviewer      *review.Reviewer
	proofreader   *proofread.Proofreader
	analysisModel string
	maxQuestions  int
}

func NewEngine(llmClient *llm.Client, db *sqlite.Client, cache *redis.Client,
	reviewer *review.Reviewer, proofreader *proofread.Proofreader,
	analysisModel string, maxQuestions int) *Engine {

	return &Engine{
		llm:           llmClient,
		db:            db,
		cache:         cache,
		reviewer:      reviewer,
		proofreader:   proofreader,
		analysisModel: analysisModel,
		maxQuestions:  maxQuestions,
	}
}

// Run executes the requested services in order: compliance, review,
// proofreading. The emitter receives log, progress and result events; the
// caller is responsible for the stream_end event. A nil emitter is valid.
func (e *Engine) Run(ctx context.Context, req RunRequest, emit Emitter) (*Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	start := time.Now()

	proposal, err := e.db.GetDocument(req.ProposalDocID)
	if err != nil {
		return nil, fmt.Errorf("proposal document not found: %w", err)
	}

	var callText string
	if req.CallDocID != "" {
		call, err := e.db.GetDocument(req.CallDocID)
		if err != nil {
			return nil, fmt.Errorf("call document not found: %w", err)
		}
		callText = call.Text
	}

	run := &models.AnalysisRun{
		ID:             uuid.New().String(),
		ProposalDocID:  req.ProposalDocID,
		CallDocID:      req.CallDocID,
		QuestionsDocID: req.QuestionsDocID,
		Persona:        string(req.Persona),
		RunCompliance:  req.RunCompliance,
		RunReview:      req.RunReview,
		RunProofread:   req.RunProofread,
		Status:         models.RunStatusRunning,
		CreatedAt:      time.Now(),
	}
	if err := e.db.InsertAnalysisRun(run); err != nil {
		return nil, fmt.Errorf("failed to record analysis run: %w", err)
	}

	logger.Info("Analysis run started",
		zap.String("run_id", run.ID),
		zap.String("proposal", proposal.Filename),
		zap.Bool("compliance", req.RunCompliance),
		zap.Bool("review", req.RunReview),
		zap.Bool("proofread", req.RunProofread),
	)

	result := &Result{
		RunID:            run.ID,
		ProposalFilename: proposal.Filename,
	}

	fail := func(stage string, err error) (*Result, error) {
		latency := int(time.Since(start).Milliseconds())
		if dbErr := e.db.UpdateAnalysisRunStatus(run.ID, models.RunStatusFailed, err.Error(), latency); dbErr != nil {
			logger.Error("Failed to mark run as failed", zap.Error(dbErr))
		}
		metrics.RunsTotal.WithLabelValues(models.RunStatusFailed).Inc()
		return nil, fmt.Errorf("%s failed: %w", stage, err)
	}

	if req.RunCompliance {
		items, err := e.runCompliance(ctx, run.ID, callText, proposal.Text, req, emit)
		if err != nil {
			return fail("compliance analysis", err)
		}
		result.Compliance = items
	}

	if req.RunReview {
		feedback, err := e.runReview(ctx, run.ID, req.Persona, proposal.Text, callText, emit)
		if err != nil {
			return fail("reviewer feedback", err)
		}
		result.ReviewFeedback = feedback
		result.Persona = req.Persona.DisplayName()
	}

	if req.RunProofread {
		findings, err := e.runProofread(ctx, run.ID, proposal.Text, emit)
		if err != nil {
			return fail("proofreading", err)
		}
		result.ProofreadFindings = findings
	}

	result.LatencyMS = int(time.Since(start).Milliseconds())

	if err := e.db.UpdateAnalysisRunStatus(run.ID, models.RunStatusCompleted, "", result.LatencyMS); err != nil {
		logger.Error("Failed to mark run as completed", zap.Error(err))
	}
	metrics.RunsTotal.WithLabelValues(models.RunStatusCompleted).Inc()

	emit(ResultEvent(result))

	return result, nil
}

func (e *Engine) runCompliance(ctx context.Context, runID, callText, proposalText string,
	req RunRequest, emit Emitter) ([]ComplianceResult, error) {

	questions := req.Questions
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to analyze")
	}
	if e.maxQuestions > 0 && len(questions) > e.maxQuestions {
		emit(LogEvent(fmt.Sprintf("Question list truncated to %d entries", e.maxQuestions)))
		questions = questions[:e.maxQuestions]
	}

	timer := prometheusTimer("compliance")
	defer timer()

	emit(LogEvent(fmt.Sprintf("Running compliance analysis on %d questions...", len(questions))))

	results := make([]ComplianceResult, 0, len(questions))

	for i, question := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		emit(ProgressEvent("compliance", i+1, len(questions), question))

		item, err := e.answerQuestion(ctx, callText, proposalText, question, req.Instructions)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}

		item.RunID = runID
		if err := e.db.InsertComplianceItem(item); err != nil {
			logger.Error("Failed to persist compliance item", zap.Error(err))
		}

		metrics.VerdictsTotal.WithLabelValues(strings.ToLower(VerdictLabel(item.Answer))).Inc()

		results = append(results, ComplianceResult{
			Question:  item.Question,
			Answer:    item.Answer,
			Verdict:   VerdictLabel(item.Answer),
			Reasoning: item.Reasoning,
			Cached:    item.Cached,
		})
	}

	return results, nil
}

// answerQuestion resolves one verdict, consulting the cache first. The cache
// key covers everything that shapes the answer: both document texts, the
// question and the model.
func (e *Engine) answerQuestion(ctx context.Context, callText, proposalText, question, instructions string) (*models.ComplianceItem, error) {
	cacheKey := utils.HashString(strings.Join([]string{callText, proposalText, question, e.analysisModel}, "\x00"))

	var cached models.ComplianceItem
	hit, err := e.cache.GetVerdict(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("Verdict cache read failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("verdict").Inc()
		cached.Cached = true
		return &cached, nil
	}
	metrics.CacheMisses.WithLabelValues("verdict").Inc()

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		Model:        e.analysisModel,
		SystemPrompt: complianceSystemPrompt,
		UserPrompt:   buildCompliancePrompt(callText, proposalText, question, instructions),
	})
	if err != nil {
		return nil, err
	}

	metrics.LLMTokensUsed.WithLabelValues(e.analysisModel, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(e.analysisModel, "completion").Add(float64(resp.Usage.CompletionTokens))

	answer, reasoning := ParseVerdict(resp.Content)
	item := &models.ComplianceItem{
		Question:    question,
		Answer:      answer,
		Reasoning:   reasoning,
		RawResponse: resp.Content,
	}

	if err := e.cache.SetVerdict(ctx, cacheKey, item); err != nil {
		logger.Warn("Verdict cache write failed", zap.Error(err))
	}

	return item, nil
}

func (e *Engine) runReview(ctx context.Context, runID string, persona review.Persona,
	proposalText, callText string, emit Emitter) (string, error) {

	timer := prometheusTimer("review")
	defer timer()

	emit(LogEvent(fmt.Sprintf("Generating reviewer feedback (%s)...", persona.DisplayName())))
	emit(ProgressEvent("review", 0, 1, "Waiting for reviewer feedback"))

	feedback, err := e.reviewer.Generate(ctx, persona, proposalText, callText)
	if err != nil {
		return "", err
	}

	emit(ProgressEvent("review", 1, 1, "Reviewer feedback ready"))

	finding := &models.ReviewFinding{
		RunID:    runID,
		Persona:  string(persona),
		Feedback: feedback,
	}
	if err := e.db.InsertReviewFinding(finding); err != nil {
		logger.Error("Failed to persist review finding", zap.Error(err))
	}

	return feedback, nil
}

func (e *Engine) runProofread(ctx context.Context, runID, proposalText string, emit Emitter) ([]proofread.Finding, error) {
	timer := prometheusTimer("proofread")
	defer timer()

	emit(LogEvent("Proofreading proposal text..."))

	findings, err := e.proofreader.Run(ctx, proposalText, func(current, total int) {
		emit(ProgressEvent("proofread", current, total, fmt.Sprintf("Checked chunk %d of %d", current, total)))
	})
	if err != nil {
		return nil, err
	}

	metrics.ProofreadFindings.Observe(float64(len(findings)))

	for i := range findings {
		f := &models.ProofreadFinding{
			RunID:       runID,
			IssueType:   findings[i].Type,
			Snippet:     findings[i].Snippet,
			Suggestion:  findings[i].Suggestion,
			Explanation: findings[i].Explanation,
			LineNumber:  findings[i].LineNumber,
			CharOffset:  findings[i].CharOffset,
		}
		if err := e.db.InsertProofreadFinding(f); err != nil {
			logger.Error("Failed to persist proofread finding", zap.Error(err))
		}
	}

	return findings, nil
}

func prometheusTimer(step string) func() {
	start := time.Now()
	return func() {
		metrics.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}
