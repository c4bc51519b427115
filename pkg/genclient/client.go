// Package genclient calls a generative model to fabricate bank transaction
// activity and parses the JSON it returns.
package genclient

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client produces synthetic transaction data from a descriptive prompt.
// One call is one model attempt; the caller decides whether to retry
// (the sync engine never does).
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is the production Client backed by the Gemini API. The genai SDK
// reads the API key from GEMINI_API_KEY.
type Gemini struct {
	model string
}

func NewGemini(model string) *Gemini {
	return &Gemini{model: model}
}

// Generate sends the prompt and returns the raw model text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

var _ Client = (*Gemini)(nil)
