package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/storyweft/personae/internal/domain"
)

// FileSource reads a document from the local filesystem.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Read returns the document text. A missing or unreadable file resolves to
// domain.ErrDocumentNotFound so the run fails before any chunk is produced.
func (s *FileSource) Read(_ context.Context) (string, error) {
	if s.Path == "" {
		return "", domain.ErrDocumentNotFound
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentNotFound, s.Path, err)
	}
	return string(data), nil
}
