package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/proposal-analyzer/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return client
}

func insertTestDocument(t *testing.T, client *Client, id string) *models.Document {
	t.Helper()

	doc := &models.Document{
		ID:        id,
		Filename:  "proposal.pdf",
		DocType:   "proposal",
		Format:    "pdf",
		Path:      "/tmp/proposal.pdf",
		SizeBytes: 1024,
		Text:      "extracted proposal text",
		CreatedAt: time.Now(),
	}
	if err := client.InsertDocument(doc); err != nil {
		t.Fatalf("failed to insert document: %v", err)
	}
	return doc
}

func TestDocumentRoundTrip(t *testing.T) {
	client := newTestClient(t)
	doc := insertTestDocument(t, client, "doc-1")

	got, err := client.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("failed to get document: %v", err)
	}
	if got.Filename != doc.Filename || got.Text != doc.Text || got.DocType != doc.DocType {
		t.Fatalf("document round trip mismatch: %+v", got)
	}
}

func TestDocumentUpsert(t *testing.T) {
	client := newTestClient(t)
	insertTestDocument(t, client, "doc-1")

	updated := &models.Document{
		ID:        "doc-1",
		Filename:  "proposal-v2.docx",
		DocType:   "proposal",
		Format:    "docx",
		Path:      "/tmp/proposal-v2.docx",
		SizeBytes: 2048,
		Text:      "revised text",
		CreatedAt: time.Now().Add(time.Hour),
	}
	if err := client.InsertDocument(updated); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}

	got, err := client.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("failed to get document: %v", err)
	}
	if got.Filename != "proposal-v2.docx" || got.Text != "revised text" {
		t.Fatalf("expected updated fields, got %+v", got)
	}
	if got.Format != "docx" || got.Path != "/tmp/proposal-v2.docx" || got.SizeBytes != 2048 {
		t.Fatalf("re-upload must refresh format, path and size, got %+v", got)
	}
	if got.CreatedAt.Unix() != updated.CreatedAt.Unix() {
		t.Fatalf("re-upload must refresh created_at, got %v", got.CreatedAt)
	}
}

func TestAnalysisRunLifecycle(t *testing.T) {
	client := newTestClient(t)
	insertTestDocument(t, client, "doc-1")

	run := &models.AnalysisRun{
		ID:            "run-1",
		ProposalDocID: "doc-1",
		Persona:       "senior_scientist",
		RunCompliance: true,
		RunReview:     true,
		Status:        models.RunStatusRunning,
		CreatedAt:     time.Now(),
	}
	if err := client.InsertAnalysisRun(run); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	if err := client.UpdateAnalysisRunStatus("run-1", models.RunStatusCompleted, "", 1234); err != nil {
		t.Fatalf("failed to update run: %v", err)
	}

	got, err := client.GetAnalysisRun("run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != models.RunStatusCompleted || got.LatencyMS != 1234 {
		t.Fatalf("unexpected run state %+v", got)
	}
	if !got.RunCompliance || !got.RunReview || got.RunProofread {
		t.Fatalf("run flags not preserved: %+v", got)
	}

	runs, err := client.GetAnalysisRuns(10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("unexpected run list %+v", runs)
	}
}

func TestComplianceItemsNullableAnswer(t *testing.T) {
	client := newTestClient(t)
	insertTestDocument(t, client, "doc-1")

	run := &models.AnalysisRun{
		ID:            "run-1",
		ProposalDocID: "doc-1",
		Status:        models.RunStatusRunning,
		CreatedAt:     time.Now(),
	}
	if err := client.InsertAnalysisRun(run); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	yes := true
	items := []*models.ComplianceItem{
		{RunID: "run-1", Question: "Budget present?", Answer: &yes, Reasoning: "On page 4."},
		{RunID: "run-1", Question: "Page limit stated?", Answer: nil, Reasoning: "Call is silent."},
	}
	for _, item := range items {
		if err := client.InsertComplianceItem(item); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}
	}

	got, err := client.GetComplianceItems("run-1")
	if err != nil {
		t.Fatalf("failed to get items: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Answer == nil || !*got[0].Answer {
		t.Fatalf("expected true answer on first item")
	}
	if got[1].Answer != nil {
		t.Fatalf("expected nil answer on second item, got %v", *got[1].Answer)
	}
}

func TestExportRecordLookup(t *testing.T) {
	client := newTestClient(t)

	record := &models.ExportRecord{
		ID:        "export-1",
		Filename:  "proposal_analysis_ab12cd34.pdf",
		Path:      "/tmp/exports/proposal_analysis_ab12cd34.pdf",
		CreatedAt: time.Now(),
	}
	if err := client.InsertExport(record); err != nil {
		t.Fatalf("failed to insert export: %v", err)
	}

	got, err := client.GetExportByFilename("proposal_analysis_ab12cd34.pdf")
	if err != nil {
		t.Fatalf("failed to get export: %v", err)
	}
	if got.Path != record.Path {
		t.Fatalf("unexpected path %q", got.Path)
	}

	if _, err := client.GetExportByFilename("missing.pdf"); err == nil {
		t.Fatalf("expected error for unknown filename")
	}
}
