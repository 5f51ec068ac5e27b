package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkeletonProfile(t *testing.T) {
	p := NewSkeletonProfile("Ali", "a boy from the village")

	assert.Equal(t, "Ali", p.Name)
	assert.Equal(t, "a boy from the village", p.Hint)
	assert.True(t, p.IsSkeleton())
}

func TestProfile_IsSkeleton(t *testing.T) {
	p := NewSkeletonProfile("Ali", "a boy")
	assert.True(t, p.IsSkeleton())

	p.Role = "protagonist"
	assert.False(t, p.IsSkeleton())

	p = NewSkeletonProfile("Ali", "a boy")
	p.Events = append(p.Events, "found the key")
	assert.False(t, p.IsSkeleton())
}

func TestProfile_SameCharacter(t *testing.T) {
	p := Profile{Name: "Ali"}

	assert.True(t, p.SameCharacter("Ali"))
	assert.True(t, p.SameCharacter("ali"))
	assert.True(t, p.SameCharacter("  ALI  "))
	assert.False(t, p.SameCharacter("Sara"))
}

func TestProfile_JSONFieldNames(t *testing.T) {
	p := Profile{
		Name:           "Ali",
		PhysicalTraits: []string{"short"},
	}

	doc, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(doc, &raw))
	assert.Contains(t, raw, "physical_characteristics")
	assert.Contains(t, raw, "relationships")
}

func TestRunStatus_IsValid(t *testing.T) {
	for _, s := range []RunStatus{RunStatusQueued, RunStatusRunning, RunStatusCompleted, RunStatusFailed} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, RunStatus("paused").IsValid())
	assert.False(t, RunStatus("").IsValid())
}
