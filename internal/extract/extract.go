package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/pkg/logger"
)

// Format is the detected document format of an upload.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ErrUnsupportedFormat is returned for files no extractor can handle.
var ErrUnsupportedFormat = fmt.Errorf("unsupported document format")

// Extractor turns uploaded documents into cleaned plain text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// DetectFormat sniffs the file content, falling back to the extension when
// the MIME type is ambiguous (zip containers, generic text).
func (e *Extractor) DetectFormat(path string) (Format, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect MIME type: %w", err)
	}

	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF, nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDOCX, nil
	case mtype.Is("text/html"):
		return FormatHTML, nil
	case strings.HasPrefix(mtype.String(), "text/"):
		return FormatText, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx", ".doc":
		return FormatDOCX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt", ".md":
		return FormatText, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
}

// Text extracts and cleans the text content of the document at path.
func (e *Extractor) Text(path string) (string, error) {
	format, err := e.DetectFormat(path)
	if err != nil {
		return "", err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = extractPDF(path)
	case FormatDOCX:
		raw, err = extractDOCX(path)
	case FormatHTML:
		raw, err = extractHTML(path)
	case FormatText:
		var data []byte
		data, err = os.ReadFile(path)
		raw = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract %s text: %w", format, err)
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", fmt.Errorf("no text content extracted from %s", filepath.Base(path))
	}

	logger.Debug("Document text extracted",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("chars", len(cleaned)),
	)

	return cleaned, nil
}
