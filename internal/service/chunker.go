package service

import (
	"unicode"

	"github.com/storyweft/personae/internal/domain"
)

// ChunkConfig controls document chunking. Both values are measured in runes
// so multi-byte scripts are never cut mid-character.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig matches the sizes the pipeline was tuned with.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    5000,
		Overlap: 200,
	}
}

// sentence-ending and clause punctuation, including the Arabic question
// mark, semicolon, comma and full stop, so right-to-left text snaps to
// natural boundaries instead of splitting mid-word or mid-diacritic.
var boundaryRunes = map[rune]struct{}{
	'.': {}, '!': {}, '?': {}, '\n': {},
	'؟': {}, '؛': {}, '،': {}, '۔': {},
}

// TextChunker splits document text into an ordered sequence of overlapping
// chunks. Consecutive chunks share exactly Overlap runes: each chunk's end
// snaps backward to a boundary, and the next chunk starts Overlap runes
// before that end. Dropping the leading Overlap runes of every chunk after
// the first reassembles the original text exactly.
type TextChunker struct {
	cfg ChunkConfig
}

func NewTextChunker(cfg ChunkConfig) (*TextChunker, error) {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunkConfig
	}
	return &TextChunker{cfg: cfg}, nil
}

// Split produces the chunk sequence for text. The result is finite and
// deterministic; an empty input yields no chunks.
func (c *TextChunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.cfg.Size {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/c.cfg.Size+1)
	start := 0
	for {
		end := start + c.cfg.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end = c.snapToBoundary(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
		start = end - c.cfg.Overlap
	}

	return chunks
}

// snapToBoundary moves end backward to just after the nearest sentence
// boundary, falling back to whitespace so words stay intact. The cut never
// retreats past start+Overlap, which guarantees forward progress and keeps
// every chunk at least one rune longer than the overlap it shares.
func (c *TextChunker) snapToBoundary(runes []rune, start, end int) int {
	minCut := start + c.cfg.Overlap + 1

	for i := end; i > minCut; i-- {
		if _, ok := boundaryRunes[runes[i-1]]; ok {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

// ReassembleChunks is the inverse of Split: it concatenates chunks dropping
// each subsequent chunk's leading overlap runes.
func ReassembleChunks(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if len(runes) > overlap {
			out = append(out, runes[overlap:]...)
		}
	}
	return string(out)
}
