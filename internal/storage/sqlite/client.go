package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/storage/models"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		format TEXT NOT NULL,
		path TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type);
	CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);

	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		proposal_doc_id TEXT NOT NULL,
		call_doc_id TEXT,
		questions_doc_id TEXT,
		persona TEXT,
		run_compliance INTEGER NOT NULL DEFAULT 0,
		run_review INTEGER NOT NULL DEFAULT 0,
		run_proofread INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_message TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (proposal_doc_id) REFERENCES documents(id)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON analysis_runs(status);

	CREATE TABLE IF NOT EXISTS compliance_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer INTEGER,
		reasoning TEXT,
		raw_response TEXT,
		cached INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_compliance_run ON compliance_items(run_id);

	CREATE TABLE IF NOT EXISTS review_findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		persona TEXT NOT NULL,
		feedback TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_review_run ON review_findings(run_id);

	CREATE TABLE IF NOT EXISTS proofread_findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		snippet TEXT NOT NULL,
		suggestion TEXT,
		explanation TEXT,
		line_number INTEGER,
		char_offset INTEGER,
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_proofread_run ON proofread_findings(run_id);

	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		url TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_run ON exports(run_id);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertDocument(doc *models.Document) error {
	query := `
		INSERT INTO documents (id, filename, doc_type, format, path, size_bytes, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			doc_type = excluded.doc_type,
			format = excluded.format,
			path = excluded.path,
			size_bytes = excluded.size_bytes,
			text = excluded.text,
			created_at = excluded.created_at
	`

	_, err := c.db.Exec(
		query,
		doc.ID,
		doc.Filename,
		doc.DocType,
		doc.Format,
		doc.Path,
		doc.SizeBytes,
		doc.Text,
		doc.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	logger.Debug("Document inserted",
		zap.String("doc_id", doc.ID),
		zap.String("doc_type", doc.DocType),
	)
	return nil
}

func (c *Client) GetDocument(id string) (*models.Document, error) {
	query := `SELECT id, filename, doc_type, format, path, size_bytes, text, created_at FROM documents WHERE id = ?`

	var doc models.Document
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.DocType,
		&doc.Format,
		&doc.Path,
		&doc.SizeBytes,
		&doc.Text,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.CreatedAt = time.Unix(createdAt, 0)

	return &doc, nil
}

func (c *Client) InsertAnalysisRun(run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (id, proposal_doc_id, call_doc_id, questions_doc_id, persona,
			run_compliance, run_review, run_proofread, status, error_message, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		run.ID,
		run.ProposalDocID,
		nullable(run.CallDocID),
		nullable(run.QuestionsDocID),
		run.Persona,
		boolToInt(run.RunCompliance),
		boolToInt(run.RunReview),
		boolToInt(run.RunProofread),
		run.Status,
		run.ErrorMessage,
		run.LatencyMS,
		run.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return nil
}

func (c *Client) UpdateAnalysisRunStatus(runID, status, errorMessage string, latencyMS int) error {
	query := `UPDATE analysis_runs SET status = ?, error_message = ?, latency_ms = ? WHERE id = ?`

	_, err := c.db.Exec(query, status, errorMessage, latencyMS, runID)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	logger.Info("Analysis run updated",
		zap.String("run_id", runID),
		zap.String("status", status),
		zap.Int("latency_ms", latencyMS),
	)

	return nil
}

func (c *Client) GetAnalysisRun(runID string) (*models.AnalysisRun, error) {
	query := `
		SELECT id, proposal_doc_id, COALESCE(call_doc_id, ''), COALESCE(questions_doc_id, ''),
			persona, run_compliance, run_review, run_proofread, status,
			COALESCE(error_message, ''), COALESCE(latency_ms, 0), created_at
		FROM analysis_runs
		WHERE id = ?
	`

	var r models.AnalysisRun
	var createdAt int64
	var compliance, review, proofread int

	err := c.db.QueryRow(query, runID).Scan(&r.ID, &r.ProposalDocID, &r.CallDocID, &r.QuestionsDocID,
		&r.Persona, &compliance, &review, &proofread, &r.Status,
		&r.ErrorMessage, &r.LatencyMS, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	r.RunCompliance = compliance != 0
	r.RunReview = review != 0
	r.RunProofread = proofread != 0
	r.CreatedAt = time.Unix(createdAt, 0)

	return &r, nil
}

func (c *Client) GetAnalysisRuns(limit int) ([]models.AnalysisRun, error) {
	query := `
		SELECT id, proposal_doc_id, COALESCE(call_doc_id, ''), COALESCE(questions_doc_id, ''),
			persona, run_compliance, run_review, run_proofread, status,
			COALESCE(error_message, ''), COALESCE(latency_ms, 0), created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		var r models.AnalysisRun
		var createdAt int64
		var compliance, review, proofread int

		err := rows.Scan(&r.ID, &r.ProposalDocID, &r.CallDocID, &r.QuestionsDocID,
			&r.Persona, &compliance, &review, &proofread, &r.Status,
			&r.ErrorMessage, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.RunCompliance = compliance != 0
		r.RunReview = review != 0
		r.RunProofread = proofread != 0
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}

	return runs, nil
}

func (c *Client) InsertComplianceItem(item *models.ComplianceItem) error {
	query := `
		INSERT INTO compliance_items (run_id, question, answer, reasoning, raw_response, cached)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var answer interface{}
	if item.Answer != nil {
		answer = boolToInt(*item.Answer)
	}

	_, err := c.db.Exec(
		query,
		item.RunID,
		item.Question,
		answer,
		item.Reasoning,
		item.RawResponse,
		boolToInt(item.Cached),
	)

	if err != nil {
		return fmt.Errorf("failed to insert compliance item: %w", err)
	}

	return nil
}

func (c *Client) GetComplianceItems(runID string) ([]models.ComplianceItem, error) {
	query := `
		SELECT id, run_id, question, answer, COALESCE(reasoning, ''), COALESCE(raw_response, ''), cached
		FROM compliance_items WHERE run_id = ? ORDER BY id
	`

	rows, err := c.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance items: %w", err)
	}
	defer rows.Close()

	var items []models.ComplianceItem
	for rows.Next() {
		var item models.ComplianceItem
		var answer sql.NullInt64
		var cached int

		err := rows.Scan(&item.ID, &item.RunID, &item.Question, &answer,
			&item.Reasoning, &item.RawResponse, &cached)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if answer.Valid {
			v := answer.Int64 != 0
			item.Answer = &v
		}
		item.Cached = cached != 0
		items = append(items, item)
	}

	return items, nil
}

func (c *Client) InsertReviewFinding(finding *models.ReviewFinding) error {
	query := `INSERT INTO review_findings (run_id, persona, feedback) VALUES (?, ?, ?)`

	_, err := c.db.Exec(query, finding.RunID, finding.Persona, finding.Feedback)
	if err != nil {
		return fmt.Errorf("failed to insert review finding: %w", err)
	}

	return nil
}

func (c *Client) GetReviewFindings(runID string) ([]models.ReviewFinding, error) {
	query := `SELECT id, run_id, persona, feedback FROM review_findings WHERE run_id = ? ORDER BY id`

	rows, err := c.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review findings: %w", err)
	}
	defer rows.Close()

	var findings []models.ReviewFinding
	for rows.Next() {
		var f models.ReviewFinding
		err := rows.Scan(&f.ID, &f.RunID, &f.Persona, &f.Feedback)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		findings = append(findings, f)
	}

	return findings, nil
}

func (c *Client) InsertProofreadFinding(finding *models.ProofreadFinding) error {
	query := `
		INSERT INTO proofread_findings (run_id, issue_type, snippet, suggestion, explanation, line_number, char_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		finding.RunID,
		finding.IssueType,
		finding.Snippet,
		finding.Suggestion,
		finding.Explanation,
		finding.LineNumber,
		finding.CharOffset,
	)

	if err != nil {
		return fmt.Errorf("failed to insert proofread finding: %w", err)
	}

	return nil
}

func (c *Client) GetProofreadFindings(runID string) ([]models.ProofreadFinding, error) {
	query := `
		SELECT id, run_id, issue_type, snippet, COALESCE(suggestion, ''), COALESCE(explanation, ''),
			COALESCE(line_number, 0), COALESCE(char_offset, 0)
		FROM proofread_findings WHERE run_id = ? ORDER BY char_offset
	`

	rows, err := c.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proofread findings: %w", err)
	}
	defer rows.Close()

	var findings []models.ProofreadFinding
	for rows.Next() {
		var f models.ProofreadFinding
		err := rows.Scan(&f.ID, &f.RunID, &f.IssueType, &f.Snippet,
			&f.Suggestion, &f.Explanation, &f.LineNumber, &f.CharOffset)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		findings = append(findings, f)
	}

	return findings, nil
}

func (c *Client) InsertExport(record *models.ExportRecord) error {
	query := `INSERT INTO exports (id, run_id, filename, path, url, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		record.ID,
		nullable(record.RunID),
		record.Filename,
		record.Path,
		record.URL,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	logger.Info("Export recorded",
		zap.String("export_id", record.ID),
		zap.String("filename", record.Filename),
	)

	return nil
}

func (c *Client) GetExportByFilename(filename string) (*models.ExportRecord, error) {
	query := `SELECT id, COALESCE(run_id, ''), filename, path, COALESCE(url, ''), created_at FROM exports WHERE filename = ?`

	var record models.ExportRecord
	var createdAt int64

	err := c.db.QueryRow(query, filename).Scan(
		&record.ID,
		&record.RunID,
		&record.Filename,
		&record.Path,
		&record.URL,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	record.CreatedAt = time.Unix(createdAt, 0)

	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
