// Package chunker splits document text into ordered chunks under a
// selectable strategy. Splitting is deterministic: the same input,
// strategy and parameters always produce the same chunk list. No chunk
// is ever empty or whitespace-only, and every chunk carries offsets
// into the original text.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ozy-max/recall/internal/core/domain"
)

// minCodeChunkLen is the minimum accumulated length before the code
// splitter flushes on a closed brace block.
const minCodeChunkLen = 50

// Split dispatches to the strategy named in cfg. The configuration is
// validated before any work happens.
func Split(text string, cfg domain.ChunkingConfig) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case domain.ChunkBySize:
		return BySize(text, cfg.ChunkSize, cfg.Overlap)
	case domain.ChunkBySentences:
		return BySentences(text, cfg.SentencesPerChunk), nil
	case domain.ChunkByParagraphs:
		return ByParagraphs(text), nil
	case domain.ChunkSmart:
		return Smart(text, cfg.ChunkSize), nil
	case domain.ChunkCode:
		return Code(text, cfg.Language), nil
	default:
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", domain.ErrInvalidConfig, cfg.Strategy)
	}
}

// span is a half-open [start, end) byte range into the original text.
type span struct {
	start, end int
}

// trimSpan shrinks a span so it excludes leading and trailing
// whitespace of text[start:end]. Returns ok=false for a span that is
// empty after trimming.
func trimSpan(text string, s span) (span, bool) {
	start, end := s.start, s.end
	for start < end && unicode.IsSpace(rune(text[start])) {
		start++
	}
	for end > start && unicode.IsSpace(rune(text[end-1])) {
		end--
	}
	if start >= end {
		return span{}, false
	}
	return span{start, end}, true
}

// assemble converts spans into ordered chunks with gapless positions.
func assemble(text string, spans []span) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(spans))
	for _, s := range spans {
		trimmed, ok := trimSpan(text, s)
		if !ok {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Position:    len(chunks),
			Content:     text[trimmed.start:trimmed.end],
			StartOffset: trimmed.start,
			EndOffset:   trimmed.end,
		})
	}
	return chunks
}

// BySize splits text with a fixed-size sliding window. Each window is
// trimmed; the window advances by size-overlap. An overlap equal to
// or larger than the size is a configuration error.
func BySize(text string, size, overlap int) ([]domain.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, chunk size %d)", domain.ErrInvalidConfig, overlap, size)
	}

	var spans []span
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		spans = append(spans, span{start, end})
		if end == len(text) {
			break
		}
	}
	return assemble(text, spans), nil
}

// BySentences splits on sentence-ending punctuation followed by
// whitespace and groups every n sentences into one chunk.
func BySentences(text string, n int) []domain.Chunk {
	if n <= 0 {
		n = 1
	}

	sentences := sentenceSpans(text)
	var spans []span
	for i := 0; i < len(sentences); i += n {
		end := i + n
		if end > len(sentences) {
			end = len(sentences)
		}
		spans = append(spans, span{sentences[i].start, sentences[end-1].end})
	}
	return assemble(text, spans)
}

// sentenceSpans locates sentence boundaries: a run of .!? followed by
// whitespace or end of text.
func sentenceSpans(text string) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if c == '.' || c == '!' || c == '?' {
			// Consume the punctuation run.
			for i < len(text) && (text[i] == '.' || text[i] == '!' || text[i] == '?') {
				i++
			}
			if i >= len(text) || unicode.IsSpace(rune(text[i])) {
				spans = append(spans, span{start, i})
				start = i
			}
			continue
		}
		i++
	}
	if start < len(text) {
		spans = append(spans, span{start, len(text)})
	}
	return spans
}

// ByParagraphs splits on blank lines.
func ByParagraphs(text string) []domain.Chunk {
	return assemble(text, paragraphSpans(text))
}

// blankLine matches a paragraph separator: a line containing at most
// horizontal whitespace.
var blankLine = regexp.MustCompile(`\n[ \t\r]*\n`)

// paragraphSpans splits text on blank lines.
func paragraphSpans(text string) []span {
	var spans []span
	start := 0
	for _, loc := range blankLine.FindAllStringIndex(text, -1) {
		if loc[0] > start {
			spans = append(spans, span{start, loc[0]})
		}
		start = loc[1]
	}
	if start < len(text) {
		spans = append(spans, span{start, len(text)})
	}
	return spans
}

// Smart greedily accumulates paragraphs into a chunk until adding the
// next paragraph would exceed maxSize, then flushes. A single
// paragraph larger than maxSize is split with the fixed-size window
// instead of being truncated.
func Smart(text string, maxSize int) []domain.Chunk {
	if maxSize <= 0 {
		maxSize = 1000
	}

	var spans []span
	var buf *span

	flush := func() {
		if buf != nil {
			spans = append(spans, *buf)
			buf = nil
		}
	}

	for _, p := range paragraphSpans(text) {
		trimmed, ok := trimSpan(text, p)
		if !ok {
			continue
		}

		if trimmed.end-trimmed.start > maxSize {
			// Oversized paragraph: flush the buffer, then emit the
			// paragraph as fixed-size sub-chunks. Never truncated.
			flush()
			sub, _ := BySize(text[trimmed.start:trimmed.end], maxSize, 0)
			for _, c := range sub {
				spans = append(spans, span{trimmed.start + c.StartOffset, trimmed.start + c.EndOffset})
			}
			continue
		}

		if buf == nil {
			s := trimmed
			buf = &s
			continue
		}
		if trimmed.end-buf.start > maxSize {
			flush()
			s := trimmed
			buf = &s
			continue
		}
		buf.end = trimmed.end
	}
	flush()

	return assemble(text, spans)
}

// Code scans lines tracking cumulative brace depth and flushes a chunk
// whenever depth returns to zero and the accumulated text is long
// enough. A cheap syntactic-block heuristic, not a parser; language is
// recorded only for observability.
func Code(text string, language string) []domain.Chunk {
	_ = language

	var spans []span
	depth := 0
	start := 0
	pos := 0

	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd = pos + lineEnd + 1
		}

		for i := pos; i < lineEnd; i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		pos = lineEnd

		if depth <= 0 && pos-start > minCodeChunkLen {
			spans = append(spans, span{start, pos})
			start = pos
			depth = 0
		}
	}
	if start < len(text) {
		spans = append(spans, span{start, len(text)})
	}

	return assemble(text, spans)
}
