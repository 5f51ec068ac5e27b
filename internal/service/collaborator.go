package service

import (
	"context"

	"github.com/storyweft/personae/internal/domain"
)

// Collaborator is the language-understanding backend the pipeline leans on.
// All three operations are synchronous request/response exchanges. A nil or
// empty result is a valid outcome (the collaborator declined or found
// nothing), and callers must treat transport errors and timeouts the same
// way as a decline rather than failing the run.
type Collaborator interface {
	// RecognizeCharacters returns the character names appearing in a
	// bounded text window. An empty list is normal, not an error.
	RecognizeCharacters(ctx context.Context, text string) ([]domain.CharacterMention, error)

	// EnrichProfiles fills in the non-identity fields of the given
	// skeleton/previous profiles using the rolling summary as context.
	// An empty result signals a decline.
	EnrichProfiles(ctx context.Context, summary string, profiles []domain.Profile) ([]domain.Profile, error)

	// Summarize produces a new bounded narrative summary from the given
	// window, with the current character names as an informational aid.
	Summarize(ctx context.Context, text string, names []string) (string, error)
}

// DocumentSource supplies the raw document text for a run. Implementations
// must fail with domain.ErrDocumentNotFound when the document is missing or
// unreadable, before any chunk is produced.
type DocumentSource interface {
	Read(ctx context.Context) (string, error)
}
