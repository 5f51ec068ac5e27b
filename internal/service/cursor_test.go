package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCursor_YieldsInOrder(t *testing.T) {
	cursor := NewChunkCursor([]string{"alpha", "beta", "gamma"})
	assert.Equal(t, 3, cursor.Len())

	for i, want := range []string{"alpha", "beta", "gamma"} {
		text, index, ok := cursor.Next()
		require.True(t, ok)
		assert.Equal(t, want, text)
		assert.Equal(t, i, index)
	}

	assert.True(t, cursor.Exhausted())
}

func TestChunkCursor_ExhaustionIsTerminal(t *testing.T) {
	cursor := NewChunkCursor([]string{"only"})

	_, _, ok := cursor.Next()
	require.True(t, ok)

	// advancing past the end is a no-op, repeatedly
	for i := 0; i < 3; i++ {
		text, index, ok := cursor.Next()
		assert.False(t, ok)
		assert.Equal(t, "", text)
		assert.Equal(t, 0, index)
	}
	assert.True(t, cursor.Exhausted())
}

func TestChunkCursor_Empty(t *testing.T) {
	cursor := NewChunkCursor(nil)
	assert.True(t, cursor.Exhausted())
	assert.Equal(t, 0, cursor.Len())

	_, _, ok := cursor.Next()
	assert.False(t, ok)
}
