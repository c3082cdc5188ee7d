package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestDetectFormatPlainText(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "plain text content here")

	format, err := New().DetectFormat(path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if format != FormatText {
		t.Fatalf("expected text format, got %q", format)
	}
}

func TestDetectFormatHTML(t *testing.T) {
	path := writeTempFile(t, "page.html", "<!DOCTYPE html><html><body><p>hello</p></body></html>")

	format, err := New().DetectFormat(path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if format != FormatHTML {
		t.Fatalf("expected html format, got %q", format)
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	// PNG magic bytes, no usable extension.
	path := writeTempFile(t, "image.png", "\x89PNG\r\n\x1a\n0000")

	_, err := New().DetectFormat(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTextPlainFile(t *testing.T) {
	path := writeTempFile(t, "proposal.txt", "The pro-\nposal  has   text.\n\n\n\nSecond paragraph.")

	text, err := New().Text(path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	want := "The proposal has text.\n\nSecond paragraph."
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestTextHTMLDropsChrome(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>p{}</style></head>
<body><nav>menu</nav><p>Proposal body text.</p><footer>footer text</footer></body></html>`
	path := writeTempFile(t, "page.html", html)

	text, err := New().Text(path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(text, "Proposal body text.") {
		t.Fatalf("body text missing from %q", text)
	}
	for _, dropped := range []string{"var x", "menu", "footer text"} {
		if strings.Contains(text, dropped) {
			t.Fatalf("expected %q to be stripped, got %q", dropped, text)
		}
	}
}

func TestTextEmptyFileIsError(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "   \n  ")

	if _, err := New().Text(path); err == nil {
		t.Fatalf("expected error for empty extraction")
	}
}
