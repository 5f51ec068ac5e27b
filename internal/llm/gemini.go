package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storyweft/personae/internal/domain"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient implements the pipeline's collaborator interface over the
// Gemini API with JSON response formatting.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// RecognizeCharacters extracts character mentions from a text window.
func (c *GeminiClient) RecognizeCharacters(ctx context.Context, text string) ([]domain.CharacterMention, error) {
	var out recognitionResponse
	err := c.exchange(ctx, recognitionSystemPrompt, buildRecognitionPrompt(text), "character_recognition", &out)
	if err != nil {
		return nil, err
	}
	return out.mentions(), nil
}

// EnrichProfiles fills in profile fields against the rolling summary.
func (c *GeminiClient) EnrichProfiles(ctx context.Context, summary string, profiles []domain.Profile) ([]domain.Profile, error) {
	var out enrichmentResponse
	err := c.exchange(ctx, enrichmentSystemPrompt, buildEnrichmentPrompt(summary, profiles), "profile_enrichment", &out)
	if err != nil {
		return nil, err
	}
	return out.profiles(), nil
}

// Summarize refreshes the rolling summary from the given window.
func (c *GeminiClient) Summarize(ctx context.Context, text string, names []string) (string, error) {
	var out summaryResponse
	err := c.exchange(ctx, summarySystemPrompt, buildSummaryPrompt(text, names), "rolling_summary", &out)
	if err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *GeminiClient) exchange(ctx context.Context, system, user, op string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}

	content := resp.Text()
	if content == "" {
		// Gemini signals prohibited content by returning no candidates;
		// surface it as an error so the orchestrator takes the decline path.
		return fmt.Errorf("%s: empty response", op)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%s: failed to parse structured response: %w", op, err)
	}
	return nil
}
