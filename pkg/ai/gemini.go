package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates summaries with Google's Gemini API, asking for a JSON
// response that matches SummaryResponse.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini summarizer. cfg.APIKey is required.
func NewGemini(ctx context.Context, cfg *genai.ClientConfig, model string) (*Gemini, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if cfg.Backend == genai.BackendUnspecified {
		cfg.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "A professional summary for a resume, 2-4 sentences long.",
		},
	},
	Required: []string{"summary"},
}

func (g *Gemini) GenerateSummary(ctx context.Context, r SummaryRequest) (SummaryResponse, error) {
	if err := r.validate(); err != nil {
		return SummaryResponse{}, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(summaryPrompt(r)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema,
	})
	if err != nil {
		return SummaryResponse{}, fmt.Errorf("gemini generate: %w", err)
	}
	return decodeSummary(resp.Text())
}
