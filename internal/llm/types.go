package llm

import "github.com/storyweft/personae/internal/domain"

// Wire shapes for the three collaborator exchanges. Field names follow the
// collaborator contract ("relations", not "relationships").

type recognitionResponse struct {
	Characters []characterOut `json:"characters"`
}

type characterOut struct {
	Name string `json:"name"`
	Hint string `json:"hint"`
}

type enrichmentResponse struct {
	Profiles []profileOut `json:"profiles"`
}

type profileOut struct {
	Name           string   `json:"name"`
	Hint           string   `json:"hint"`
	Age            string   `json:"age"`
	Role           string   `json:"role"`
	PhysicalTraits []string `json:"physical_characteristics"`
	Personality    string   `json:"personality"`
	Events         []string `json:"events"`
	Relations      []string `json:"relations"`
	Aliases        []string `json:"aliases"`
	ID             string   `json:"id"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (r recognitionResponse) mentions() []domain.CharacterMention {
	mentions := make([]domain.CharacterMention, 0, len(r.Characters))
	for _, c := range r.Characters {
		mentions = append(mentions, domain.CharacterMention{Name: c.Name, Hint: c.Hint})
	}
	return mentions
}

func (r enrichmentResponse) profiles() []domain.Profile {
	profiles := make([]domain.Profile, 0, len(r.Profiles))
	for _, p := range r.Profiles {
		profiles = append(profiles, domain.Profile{
			ID:             p.ID,
			Name:           p.Name,
			Hint:           p.Hint,
			Age:            p.Age,
			Role:           p.Role,
			PhysicalTraits: p.PhysicalTraits,
			Personality:    p.Personality,
			Events:         p.Events,
			Relationships:  p.Relations,
			Aliases:        p.Aliases,
		})
	}
	return profiles
}
