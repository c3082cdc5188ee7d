package proofread

import (
	"strings"
	"testing"
)

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	text := "This is a short document. It has two sentences."
	chunks, err := chunkText(text, 6000, 600)
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Start != 0 {
		t.Fatalf("expected chunk at offset 0, got %d", chunks[0].Start)
	}
	if chunks[0].Line != 1 {
		t.Fatalf("expected chunk at line 1, got %d", chunks[0].Line)
	}
}

func TestChunkTextOffsetsMatchSource(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog near the river bank. ")
	}
	text := sb.String()

	chunks, err := chunkText(text, 200, 60)
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars at size 200, got %d", len(text), len(chunks))
	}

	for i, c := range chunks {
		if got := text[c.Start : c.Start+len(c.Text)]; got != c.Text {
			t.Fatalf("chunk %d text does not match its offsets", i)
		}
		if i > 0 && c.Start < chunks[i-1].Start {
			t.Fatalf("chunk %d starts before its predecessor", i)
		}
	}

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), strings.TrimSpace(last.Text[len(last.Text)-20:])) {
		t.Fatalf("final chunk does not reach the end of the document")
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunks, err := chunkText("   \n ", 6000, 600)
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}
	if chunks != nil {
		t.Fatalf("expected no chunks for blank text, got %d", len(chunks))
	}
}

func TestLineOf(t *testing.T) {
	text := "first\nsecond\nthird"
	cases := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{3, 1},
		{6, 2},
		{13, 3},
		{len(text), 3},
	}
	for _, tc := range cases {
		if got := lineOf(text, tc.offset); got != tc.want {
			t.Fatalf("lineOf(%d): expected %d, got %d", tc.offset, tc.want, got)
		}
	}
}
