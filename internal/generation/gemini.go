package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator drafts plans with a Gemini model through the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

// NewGeminiGenerator creates a generator authenticated with an API key.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, temperature float32) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
	}, nil
}

// GenerateStructuredPlan implements PlanGenerator. The caller bounds the call with ctx.
func (g *GeminiGenerator) GenerateStructuredPlan(ctx context.Context, prompt string) (*PlanDraft, error) {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	return ParseDraft(res.Text())
}
