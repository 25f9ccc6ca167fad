package openaillm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"movie-rag/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the completion model used when none is configured.
const DefaultChatModel = "gpt-4.1"

// completionSeed pins decoding for reproducibility. Best-effort on the API
// side, so identical calls are expected, not guaranteed, to match.
const completionSeed = 42

// Generator sends prompts to the OpenAI chat completions API with
// deterministic decoding parameters.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator constructs a generator for the given model. A nil httpClient
// falls back to the library default.
func NewGenerator(apiKey, model string, httpClient *http.Client) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return NewGeneratorWithConfig(cfg, model)
}

// NewGeneratorWithConfig constructs a generator from a prepared client config.
func NewGeneratorWithConfig(cfg openai.ClientConfig, model string) *Generator {
	if model == "" {
		model = DefaultChatModel
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the prompt as a single user message and returns the
// assistant text. A response without choices or with empty content fails
// fast rather than being passed downstream.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	seed := completionSeed
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// A literal 0 is dropped by the json omitempty tag, which would fall
		// back to the API default of 1.
		Temperature: math.SmallestNonzeroFloat32,
		Seed:        &seed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", domain.ErrEmptyCompletion
	}
	return content, nil
}

// Model returns the wrapped model name.
func (g *Generator) Model() string {
	return g.model
}

var _ domain.LLMClient = (*Generator)(nil)
