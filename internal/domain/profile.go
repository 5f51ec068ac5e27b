package domain

import (
	"strings"
	"time"
)

// CharacterMention is a lightweight recognized-name record produced by a
// recognition pass. Mentions are transient and never persisted on their own.
type CharacterMention struct {
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// Profile is a structured character record. A profile with only Name and
// Hint populated is a skeleton awaiting enrichment.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Hint           string   `json:"hint"`
	Age            string   `json:"age"`
	Role           string   `json:"role"`
	PhysicalTraits []string `json:"physical_characteristics"`
	Personality    string   `json:"personality"`
	Events         []string `json:"events"`
	Relationships  []string `json:"relationships"`
	Aliases        []string `json:"aliases"`
}

// NewSkeletonProfile builds a profile with only identity fields populated.
func NewSkeletonProfile(name, hint string) Profile {
	return Profile{
		Name:           name,
		Hint:           hint,
		PhysicalTraits: []string{},
		Events:         []string{},
		Relationships:  []string{},
		Aliases:        []string{},
	}
}

// IsSkeleton reports whether the profile has not been enriched yet.
func (p Profile) IsSkeleton() bool {
	return p.Age == "" && p.Role == "" && p.Personality == "" &&
		len(p.PhysicalTraits) == 0 && len(p.Events) == 0 &&
		len(p.Relationships) == 0 && len(p.Aliases) == 0
}

// SameCharacter compares two profiles by case-insensitive name equality.
func (p Profile) SameCharacter(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}

// ProfileSnapshot is one append-only enriched profile record tied to the
// chunk that produced it. The same character accumulates many snapshots
// across a run, one per chunk where enrichment succeeded; there is no
// canonical per-character row in this subsystem.
type ProfileSnapshot struct {
	ID        string
	ChunkID   string
	Profile   Profile
	CreatedAt time.Time
}
