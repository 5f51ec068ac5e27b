package service

// ChunkCursor is a one-shot, forward-only cursor over a chunk sequence.
// Exactly one consumer may advance it; it cannot be restarted. Advancing
// past exhaustion is a no-op, never an error.
type ChunkCursor struct {
	chunks []string
	pos    int
}

func NewChunkCursor(chunks []string) *ChunkCursor {
	return &ChunkCursor{chunks: chunks}
}

// Next returns the next chunk and its sequence index, or ok=false once the
// sequence is exhausted.
func (c *ChunkCursor) Next() (text string, index int, ok bool) {
	if c.pos >= len(c.chunks) {
		return "", 0, false
	}
	text = c.chunks[c.pos]
	index = c.pos
	c.pos++
	return text, index, true
}

// Exhausted reports whether the cursor has been fully consumed.
func (c *ChunkCursor) Exhausted() bool {
	return c.pos >= len(c.chunks)
}

// Len returns the total number of chunks in the sequence.
func (c *ChunkCursor) Len() int {
	return len(c.chunks)
}
