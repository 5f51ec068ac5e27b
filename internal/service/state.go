package service

import "github.com/storyweft/personae/internal/domain"

// PipelineState is the orchestrator's working memory for one document run.
// It is initialized once per run, mutated by every step through deltas, and
// discarded at run end; only chunks and profile snapshots survive in the
// store. Previous/current chunk and the summary are always overwritten,
// never appended, so memory stays bounded regardless of document length.
type PipelineState struct {
	PreviousChunk string
	CurrentChunk  string
	Summary       string
	Mentions      []domain.CharacterMention
	Profiles      []domain.Profile
	ChunkIndex    int
	ChunkIDs      map[int]string
	NoMoreChunks  bool
}

// StateDelta carries only the fields a step changed. Nil pointers and nil
// slices mean "unchanged"; a non-nil empty slice is an explicit replacement.
type StateDelta struct {
	PreviousChunk *string
	CurrentChunk  *string
	Summary       *string
	Mentions      []domain.CharacterMention
	Profiles      []domain.Profile
	ChunkIndex    *int
	NoMoreChunks  *bool
}

// Apply merges a delta into the state, last writer wins per field. Fields
// are replaced whole; there are no partial merges within a field.
func (s *PipelineState) Apply(d StateDelta) {
	if d.PreviousChunk != nil {
		s.PreviousChunk = *d.PreviousChunk
	}
	if d.CurrentChunk != nil {
		s.CurrentChunk = *d.CurrentChunk
	}
	if d.Summary != nil {
		s.Summary = *d.Summary
	}
	if d.Mentions != nil {
		s.Mentions = d.Mentions
	}
	if d.Profiles != nil {
		s.Profiles = d.Profiles
	}
	if d.ChunkIndex != nil {
		s.ChunkIndex = *d.ChunkIndex
	}
	if d.NoMoreChunks != nil {
		s.NoMoreChunks = *d.NoMoreChunks
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
