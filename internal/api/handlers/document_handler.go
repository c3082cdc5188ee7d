package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/extract"
	"github.com/proposal-analyzer/backend/internal/metrics"
	"github.com/proposal-analyzer/backend/internal/middleware/validation"
	"github.com/proposal-analyzer/backend/internal/storage/models"
	"github.com/proposal-analyzer/backend/internal/storage/sqlite"
	"github.com/proposal-analyzer/backend/pkg/logger"
	"github.com/proposal-analyzer/backend/pkg/utils"
)

type DocumentHandler struct {
	db        *sqlite.Client
	extractor *extract.Extractor
	uploadDir string
}

func NewDocumentHandler(db *sqlite.Client, extractor *extract.Extractor, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		db:        db,
		extractor: extractor,
		uploadDir: uploadDir,
	}
}

// Upload receives one multipart file plus a doctype field, extracts its text
// eagerly and stores both on disk and in SQLite. The document ID is a content
// hash, so re-uploading the same file updates in place instead of piling up
// duplicates.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A file field is required",
		})
	}

	docType := c.FormValue("doctype")
	if docType == "" {
		docType = "proposal"
	}
	if !validation.DocTypes[docType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "doctype must be one of: proposal, call, questions",
		})
	}

	filename := validation.SanitizeFilename(fileHeader.Filename)
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid filename",
		})
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	docID := utils.HashString(fmt.Sprintf("%s:%s:%d", docType, filename, fileHeader.Size))
	storedPath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", docID[:12], filename))

	if err := c.SaveFile(fileHeader, storedPath); err != nil {
		logger.Error("Failed to save uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	format, err := h.extractor.DetectFormat(storedPath)
	if err != nil {
		os.Remove(storedPath)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Unsupported file type: %v", err),
		})
	}

	text, err := h.extractor.Text(storedPath)
	if err != nil {
		os.Remove(storedPath)
		logger.Error("Text extraction failed",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Could not extract text from %s: %v", filename, err),
		})
	}

	doc := &models.Document{
		ID:        docID,
		Filename:  filename,
		DocType:   docType,
		Format:    string(format),
		Path:      storedPath,
		SizeBytes: fileHeader.Size,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := h.db.InsertDocument(doc); err != nil {
		logger.Error("Failed to persist document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store document",
		})
	}

	metrics.DocumentsUploaded.WithLabelValues(docType).Inc()

	logger.Info("Document uploaded",
		zap.String("doc_id", docID),
		zap.String("doctype", docType),
		zap.String("filename", filename),
		zap.Int("text_chars", len(text)),
	)

	return c.JSON(fiber.Map{
		"id":         docID,
		"filename":   filename,
		"doctype":    docType,
		"format":     format,
		"size":       fileHeader.Size,
		"text_chars": len(text),
	})
}

// Get returns document metadata. The extracted text is large, so it is only
// included when ?include_text=true.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.db.GetDocument(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	resp := fiber.Map{
		"id":         doc.ID,
		"filename":   doc.Filename,
		"doctype":    doc.DocType,
		"format":     doc.Format,
		"size":       doc.SizeBytes,
		"text_chars": len(doc.Text),
		"created_at": doc.CreatedAt.Format(time.RFC3339),
	}
	if c.QueryBool("include_text") {
		resp["text"] = doc.Text
	}

	return c.JSON(resp)
}
