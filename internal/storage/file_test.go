package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/storyweft/personae/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_ReadsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.txt")
	require.NoError(t, os.WriteFile(path, []byte("chapter one"), 0o644))

	source := NewFileSource(path)

	text, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chapter one", text)
}

func TestFileSource_MissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "does-not-exist.txt"))

	_, err := source.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
