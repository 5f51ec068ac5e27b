package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"
	"github.com/storyweft/personae/internal/domain"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("missing language model API key")

// chatAPI is the slice of the OpenAI client the collaborator needs.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient implements the pipeline's collaborator interface over OpenAI
// chat completions with strict JSON-schema response formats.
type OpenAIClient struct {
	api     chatAPI
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, model string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		api:     openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}, nil
}

// RecognizeCharacters extracts character mentions from a text window.
func (c *OpenAIClient) RecognizeCharacters(ctx context.Context, text string) ([]domain.CharacterMention, error) {
	var out recognitionResponse
	err := c.exchange(ctx, recognitionSystemPrompt, buildRecognitionPrompt(text),
		"character_recognition", recognitionSchema, &out)
	if err != nil {
		return nil, err
	}
	return out.mentions(), nil
}

// EnrichProfiles fills in profile fields against the rolling summary.
func (c *OpenAIClient) EnrichProfiles(ctx context.Context, summary string, profiles []domain.Profile) ([]domain.Profile, error) {
	var out enrichmentResponse
	err := c.exchange(ctx, enrichmentSystemPrompt, buildEnrichmentPrompt(summary, profiles),
		"profile_enrichment", enrichmentSchema, &out)
	if err != nil {
		return nil, err
	}
	return out.profiles(), nil
}

// Summarize refreshes the rolling summary from the given window.
func (c *OpenAIClient) Summarize(ctx context.Context, text string, names []string) (string, error) {
	var out summaryResponse
	err := c.exchange(ctx, summarySystemPrompt, buildSummaryPrompt(text, names),
		"rolling_summary", summarySchema, &out)
	if err != nil {
		return "", err
	}
	return out.Summary, nil
}

// exchange performs one structured request/response round trip.
func (c *OpenAIClient) exchange(ctx context.Context, system, user, schemaName string, schema *jsonschema.Schema, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%s request failed: %w", schemaName, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s: no completion returned", schemaName)
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%s: failed to parse structured response: %w", schemaName, err)
	}
	return nil
}
