// Package ai wraps the generative text gateway used for form assistance.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("ai key not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("ai returned no text")

// Generator turns a prompt into text. When asJSON is set the model is asked
// for an application/json response; the caller still has to parse it.
type Generator interface {
	Generate(ctx context.Context, prompt string, asJSON bool) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a generator. An empty key yields a generator
// whose calls fail with ErrNotConfigured.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if apiKey == "" {
		return &GeminiGenerator{model: model}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Configured reports whether calls can reach the API.
func (g *GeminiGenerator) Configured() bool {
	return g != nil && g.client != nil
}

// Generate sends prompt as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, asJSON bool) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	mime := "text/plain"
	if asJSON {
		mime = "application/json"
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: mime},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
