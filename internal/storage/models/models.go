package models

import "time"

type Document struct {
	ID        string
	Filename  string
	DocType   string
	Format    string
	Path      string
	SizeBytes int64
	Text      string
	CreatedAt time.Time
}

type AnalysisRun struct {
	ID             string
	ProposalDocID  string
	CallDocID      string
	QuestionsDocID string
	Persona        string
	RunCompliance  bool
	RunReview      bool
	RunProofread   bool
	Status         string
	ErrorMessage   string
	LatencyMS      int
	CreatedAt      time.Time
}

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ComplianceItem is one question verdict. Answer is nil for UNSURE or for
// responses the verdict parser could not classify.
type ComplianceItem struct {
	ID          int
	RunID       string
	Question    string
	Answer      *bool
	Reasoning   string
	RawResponse string
	Cached      bool
}

type ReviewFinding struct {
	ID       int
	RunID    string
	Persona  string
	Feedback string
}

type ProofreadFinding struct {
	ID          int
	RunID       string
	IssueType   string
	Snippet     string
	Suggestion  string
	Explanation string
	LineNumber  int
	CharOffset  int
}

type ExportRecord struct {
	ID        string
	RunID     string
	Filename  string
	Path      string
	URL       string
	CreatedAt time.Time
}
