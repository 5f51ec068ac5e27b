package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/storyweft/personae/internal/domain"
)

// ChunkStore persists raw chunks. Insert assigns the chunk identity.
type ChunkStore interface {
	Insert(ctx context.Context, chunk *domain.Chunk) error
}

// SnapshotStore appends per-chunk profile snapshots.
type SnapshotStore interface {
	Insert(ctx context.Context, chunkID string, profile domain.Profile) (string, error)
}

// pipeline phases, in per-cycle order.
type phase int

const (
	phaseChunkAdvance phase = iota
	phaseRecognize
	phaseSynthesize
	phaseEnrich
	phaseSummarize
	phaseDone
)

// RunResult reports what a completed run produced. Warnings carry the
// explicit error channel for non-fatal persistence failures and collaborator
// declines; they never fail the run.
type RunResult struct {
	ChunkCount int
	Profiles   []domain.Profile
	Warnings   []string
}

// Pipeline drives the chunk → recognize → synthesize → enrich → summarize
// cycle over a document until the chunk sequence is exhausted. Execution is
// single-threaded: every collaborator call and store insert completes before
// the next state runs, because each cycle's enrichment and summary depend on
// the previous cycle's summary.
type Pipeline struct {
	collab    Collaborator
	chunks    ChunkStore
	snapshots SnapshotStore
	chunker   *TextChunker
}

func NewPipeline(collab Collaborator, chunks ChunkStore, snapshots SnapshotStore, chunker *TextChunker) *Pipeline {
	return &Pipeline{
		collab:    collab,
		chunks:    chunks,
		snapshots: snapshots,
		chunker:   chunker,
	}
}

// Run processes one document end to end. It fails fast on input errors and
// on chunk-insert errors (a chunk without a persisted identity would break
// the index→identity invariant); collaborator declines and snapshot-insert
// failures degrade gracefully and are reported in RunResult.Warnings.
func (p *Pipeline) Run(ctx context.Context, source DocumentSource, runID string) (*RunResult, error) {
	text, err := source.Read(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	parts := p.chunker.Split(text)

	// Persist every chunk up front, in document order, building the
	// index→identity map before the cursor is consumed.
	chunkIDs := make(map[int]string, len(parts))
	for idx, part := range parts {
		chunk := &domain.Chunk{RunID: runID, SequenceIndex: idx, Text: part}
		if err := p.chunks.Insert(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to persist chunk %d: %w", idx, err)
		}
		chunkIDs[idx] = chunk.ID
	}

	cursor := NewChunkCursor(parts)
	state := &PipelineState{
		Mentions: []domain.CharacterMention{},
		Profiles: []domain.Profile{},
		ChunkIDs: chunkIDs,
	}
	result := &RunResult{ChunkCount: len(parts)}

	current := phaseChunkAdvance
	for current != phaseDone {
		if err := ctx.Err(); err != nil {
			result.Profiles = state.Profiles
			return result, err
		}

		switch current {
		case phaseChunkAdvance:
			state.Apply(p.advanceChunk(state, cursor))
			if state.NoMoreChunks {
				current = phaseDone
			} else {
				current = phaseRecognize
			}
		case phaseRecognize:
			state.Apply(p.recognize(ctx, state))
			current = phaseSynthesize
		case phaseSynthesize:
			state.Apply(p.synthesizeSkeletons(state))
			current = phaseEnrich
		case phaseEnrich:
			state.Apply(p.enrichProfiles(ctx, state, result))
			current = phaseSummarize
		case phaseSummarize:
			state.Apply(p.refreshSummary(ctx, state))
			current = phaseChunkAdvance
		}
	}

	result.Profiles = state.Profiles
	return result, nil
}

// advanceChunk pulls the next chunk from the cursor. The previous-chunk
// field takes the old current-chunk value and the index follows the chunk's
// sequence position; past the end it only sets the terminal flag.
func (p *Pipeline) advanceChunk(state *PipelineState, cursor *ChunkCursor) StateDelta {
	text, index, ok := cursor.Next()
	if !ok {
		return StateDelta{NoMoreChunks: boolPtr(true)}
	}
	return StateDelta{
		PreviousChunk: strPtr(state.CurrentChunk),
		CurrentChunk:  strPtr(text),
		ChunkIndex:    intPtr(index),
		NoMoreChunks:  boolPtr(false),
	}
}

// recognize runs both recognition passes and merges their mention lists.
// The overlap window is the trailing third of the previous chunk plus the
// whole current chunk; the summary window is the rolling summary alone,
// catching characters referenced thematically but not named verbatim.
func (p *Pipeline) recognize(ctx context.Context, state *PipelineState) StateDelta {
	window := strings.TrimSpace(trailingThird(state.PreviousChunk) + " " + state.CurrentChunk)
	mentions := p.recognizeWindow(ctx, window, "overlap")

	if state.Summary != "" {
		fromSummary := p.recognizeWindow(ctx, state.Summary, "summary")
		mentions = mergeMentions(mentions, fromSummary)
	}

	return StateDelta{Mentions: mentions}
}

func (p *Pipeline) recognizeWindow(ctx context.Context, window, kind string) []domain.CharacterMention {
	if window == "" {
		return []domain.CharacterMention{}
	}
	mentions, err := p.collab.RecognizeCharacters(ctx, window)
	if err != nil {
		log.Printf("warning: character recognition (%s window) declined: %v", kind, err)
		return []domain.CharacterMention{}
	}
	if mentions == nil {
		mentions = []domain.CharacterMention{}
	}
	return mentions
}

// synthesizeSkeletons creates a skeleton profile for every mention not
// already represented in the profile list. Nothing is persisted here;
// skeletons are transient until enrichment succeeds. Re-running with the
// same mention list yields the same profile set.
func (p *Pipeline) synthesizeSkeletons(state *PipelineState) StateDelta {
	profiles := state.Profiles
	for _, mention := range state.Mentions {
		if mention.Name == "" || containsCharacter(profiles, mention.Name) {
			continue
		}
		profiles = append(profiles, domain.NewSkeletonProfile(mention.Name, mention.Hint))
	}
	return StateDelta{Profiles: profiles}
}

// enrichProfiles asks the collaborator to fill in profile fields against the
// summary as of the previous cycle, then appends one snapshot per profile
// keyed by the current chunk's identity. A decline (error or empty result)
// carries the previous profile list forward with no persistence; a snapshot
// insert failure is recorded on the result's warning channel and processing
// continues, accepting a gap for this chunk.
func (p *Pipeline) enrichProfiles(ctx context.Context, state *PipelineState, result *RunResult) StateDelta {
	if len(state.Profiles) == 0 {
		return StateDelta{}
	}

	enriched, err := p.collab.EnrichProfiles(ctx, state.Summary, state.Profiles)
	if err != nil || len(enriched) == 0 {
		if err != nil {
			log.Printf("warning: profile enrichment declined for chunk %d: %v", state.ChunkIndex, err)
		} else {
			log.Printf("warning: collaborator returned no profiles for chunk %d, skipping", state.ChunkIndex)
		}
		return StateDelta{Profiles: state.Profiles}
	}

	chunkID, mapped := state.ChunkIDs[state.ChunkIndex]
	for _, profile := range enriched {
		if !mapped {
			continue
		}
		if _, err := p.snapshots.Insert(ctx, chunkID, profile); err != nil {
			warning := fmt.Sprintf("snapshot for %q at chunk %d not persisted: %v", profile.Name, state.ChunkIndex, err)
			log.Printf("error: %s", warning)
			result.Warnings = append(result.Warnings, warning)
		}
	}

	return StateDelta{Profiles: enriched}
}

// refreshSummary folds the current chunk into the rolling summary for the
// next cycle, from the trailing third of the previous summary plus the
// current chunk. The new summary replaces the old one unconditionally; a
// decline keeps the previous summary.
func (p *Pipeline) refreshSummary(ctx context.Context, state *PipelineState) StateDelta {
	window := strings.TrimSpace(trailingThird(state.Summary) + " " + state.CurrentChunk)

	names := make([]string, 0, len(state.Mentions))
	for _, mention := range state.Mentions {
		names = append(names, mention.Name)
	}

	summary, err := p.collab.Summarize(ctx, window, names)
	if err != nil {
		log.Printf("warning: summary refresh declined for chunk %d, keeping previous summary: %v", state.ChunkIndex, err)
		return StateDelta{}
	}
	return StateDelta{Summary: strPtr(summary)}
}

// trailingThird returns the last third of s, measured in runes.
func trailingThird(s string) string {
	runes := []rune(s)
	return string(runes[2*len(runes)/3:])
}

// mergeMentions joins two recognition passes, de-duplicating by
// case-insensitive name; the first occurrence wins.
func mergeMentions(a, b []domain.CharacterMention) []domain.CharacterMention {
	merged := make([]domain.CharacterMention, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, m := range append(append([]domain.CharacterMention{}, a...), b...) {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}

func containsCharacter(profiles []domain.Profile, name string) bool {
	for _, p := range profiles {
		if p.SameCharacter(name) {
			return true
		}
	}
	return false
}
