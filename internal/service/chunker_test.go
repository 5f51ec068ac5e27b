package service

import (
	"strings"
	"testing"

	"github.com/storyweft/personae/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextChunker_InvalidConfig(t *testing.T) {
	_, err := NewTextChunker(ChunkConfig{Size: 100, Overlap: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)

	_, err = NewTextChunker(ChunkConfig{Size: 100, Overlap: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
}

func TestNewTextChunker_ZeroSizeUsesDefaults(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkConfig(), c.cfg)
}

func TestSplit_EmptyInput(t *testing.T) {
	c, err := NewTextChunker(DefaultChunkConfig())
	require.NoError(t, err)

	assert.Empty(t, c.Split(""))
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 100, Overlap: 10})
	require.NoError(t, err)

	chunks := c.Split("a short document")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplit_ConsecutiveChunksShareOverlap(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 50, Overlap: 10})
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		tail := string(prev[len(prev)-10:])
		head := string(curr[:10])
		assert.Equal(t, tail, head, "chunks %d and %d should share exactly the overlap", i-1, i)
	}
}

func TestSplit_ChunkSizeBound(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 50, Overlap: 10})
	require.NoError(t, err)

	text := strings.Repeat("Lorem ipsum dolor sit amet. ", 30)
	for i, chunk := range c.Split(text) {
		assert.LessOrEqual(t, len([]rune(chunk)), 50, "chunk %d exceeds size", i)
		assert.Greater(t, len([]rune(chunk)), 0, "chunk %d is empty", i)
	}
}

func TestSplit_LosslessReassembly(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 40, Overlap: 8})
	require.NoError(t, err)

	text := strings.Repeat("One sentence here. Another one follows! What about a question? ", 15)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, text, ReassembleChunks(chunks, 8))
}

func TestSplit_ArabicTextLossless(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 30, Overlap: 6})
	require.NoError(t, err)

	text := strings.Repeat("ذهب الولد إلى المدرسة صباحا؛ ثم عاد إلى البيت مساء۔ هل رأيت ذلك؟ ", 10)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, text, ReassembleChunks(chunks, 6))

	// no chunk may contain a broken multi-byte sequence
	for i, chunk := range chunks {
		assert.True(t, strings.ToValidUTF8(chunk, "") == chunk, "chunk %d contains invalid UTF-8", i)
	}
}

func TestSplit_SnapsToSentenceBoundary(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 30, Overlap: 5})
	require.NoError(t, err)

	text := "First sentence ends here. Second sentence is a bit longer than the first one."
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	// the first cut falls on the period rather than mid-word
	assert.Equal(t, "First sentence ends here.", strings.TrimRight(chunks[0], " "))
}

func TestSplit_NoBoundaryFallsBackToFullWindow(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 20, Overlap: 4})
	require.NoError(t, err)

	// no punctuation, no whitespace: cuts land at exactly Size
	text := strings.Repeat("x", 100)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 20, len([]rune(chunks[0])))
	assert.Equal(t, text, ReassembleChunks(chunks, 4))
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := NewTextChunker(ChunkConfig{Size: 50, Overlap: 10})
	require.NoError(t, err)

	text := strings.Repeat("Deterministic output matters for replay. ", 25)
	first := c.Split(text)
	second := c.Split(text)
	assert.Equal(t, first, second)
}

func TestReassembleChunks_Empty(t *testing.T) {
	assert.Equal(t, "", ReassembleChunks(nil, 10))
}
