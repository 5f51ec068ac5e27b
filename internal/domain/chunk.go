package domain

import "time"

// Chunk is a contiguous, bounded-size slice of a source document.
// Chunks are created once by the chunker in document order and never
// mutated; the ID is assigned by the store at insertion time.
type Chunk struct {
	ID            string
	RunID         string
	SequenceIndex int
	Text          string
	CreatedAt     time.Time
}
