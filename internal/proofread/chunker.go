package proofread

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Chunk is a slice of the document text with its absolute position, so
// per-chunk findings can be mapped back to document offsets and lines.
type Chunk struct {
	Text  string
	Start int
	Line  int
}

type sentence struct {
	text  string
	start int
	end   int
}

// splitSentences segments text into sentences with absolute offsets.
// Sentence boundaries come from prose; offsets are recovered by scanning
// forward, which holds because segmentation never reorders text.
func splitSentences(text string) ([]sentence, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	var out []sentence
	cursor := 0
	for _, s := range doc.Sentences() {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[cursor:], trimmed)
		if idx < 0 {
			// Segmenter occasionally rewrites whitespace inside a sentence;
			// fall back to the cursor position.
			idx = 0
		}
		start := cursor + idx
		out = append(out, sentence{text: trimmed, start: start, end: start + len(trimmed)})
		cursor = start + len(trimmed)
	}
	return out, nil
}

// chunkText packs sentences into chunks of roughly size characters, with
// neighbouring chunks sharing up to overlap trailing characters so issues
// spanning a boundary are still seen whole by the model.
func chunkText(text string, size, overlap int) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if size <= 0 {
		size = 6000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}

	sentences, err := splitSentences(text)
	if err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return []Chunk{{Text: text, Start: 0, Line: 1}}, nil
	}

	var chunks []Chunk
	i := 0
	for i < len(sentences) {
		start := sentences[i].start
		j := i
		for j+1 < len(sentences) && sentences[j+1].end-start <= size {
			j++
		}

		end := sentences[j].end
		chunks = append(chunks, Chunk{
			Text:  text[start:end],
			Start: start,
			Line:  lineOf(text, start),
		})

		if j == len(sentences)-1 {
			break
		}

		// Back up into the overlap window, but always advance past i.
		next := j + 1
		for next-1 > i && end-sentences[next-1].start <= overlap {
			next--
		}
		i = next
	}

	return chunks, nil
}

func lineOf(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return 1 + strings.Count(text[:offset], "\n")
}
