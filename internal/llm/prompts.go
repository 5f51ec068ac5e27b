package llm

import (
	"encoding/json"
	"strings"

	"github.com/storyweft/personae/internal/domain"
)

// recognitionSystemPrompt instructs the model to extract character names
// from a narrative passage and return structured JSON only.
const recognitionSystemPrompt = `You are a character recognition assistant for narrative analysis.
Identify the named characters who appear in the given passage.
Return ONLY a JSON object with a "characters" array; each element has
"name" (the character's name as written) and "hint" (a short distinguishing phrase from the passage).
If no characters appear, return {"characters": []}.`

// enrichmentSystemPrompt instructs the model to fill in profile fields for
// the given characters using only the provided summary as context.
const enrichmentSystemPrompt = `You are a character profiling assistant for narrative analysis.
You receive a running summary of a story and a list of partial character profiles.
For each profile, fill in what the summary supports: age, role, physical_characteristics,
personality, events the character took part in, relations to other characters, and aliases.
Keep "name" and "hint" unchanged. Assign a stable "id" string per character if you can.
Return ONLY a JSON object with a "profiles" array. Leave fields you cannot support empty.`

// summarySystemPrompt instructs the model to refresh the rolling summary.
const summarySystemPrompt = `You are a narrative summarization assistant.
You receive the tail of the previous summary followed by the newest passage of a story,
plus the names of characters currently in play.
Produce one coherent summary of everything read so far, bounded to a few paragraphs.
Return ONLY a JSON object: {"summary": "..."}.`

func buildRecognitionPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Identify the characters appearing in this passage.\n\nPASSAGE:\n")
	sb.WriteString(text)
	return sb.String()
}

func buildEnrichmentPrompt(summary string, profiles []domain.Profile) string {
	var sb strings.Builder
	sb.WriteString("STORY SO FAR:\n")
	sb.WriteString(summary)
	sb.WriteString("\n\nCURRENT PROFILES:\n")

	doc, err := json.Marshal(profiles)
	if err != nil {
		// Profiles are plain structs; marshalling cannot realistically
		// fail, but the prompt must still carry the names.
		names := make([]string, 0, len(profiles))
		for _, p := range profiles {
			names = append(names, p.Name)
		}
		sb.WriteString(strings.Join(names, ", "))
	} else {
		sb.Write(doc)
	}

	sb.WriteString("\n\nUpdate every profile with what the story supports.")
	return sb.String()
}

func buildSummaryPrompt(text string, names []string) string {
	var sb strings.Builder
	if len(names) > 0 {
		sb.WriteString("CHARACTERS IN PLAY: ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n\n")
	}
	sb.WriteString("TEXT:\n")
	sb.WriteString(text)
	return sb.String()
}
