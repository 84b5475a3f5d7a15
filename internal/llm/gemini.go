package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiGateway implements Gateway against the Google Gemini API.
type GeminiGateway struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGateway constructs a gateway for the given API key and model.
// Timeout bounds every upstream call; values <= 0 default to 60s.
func NewGeminiGateway(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGateway, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGateway{client: client, model: model, timeout: timeout}, nil
}

// Generate implements Gateway.
func (g *GeminiGateway) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, toContents(req.Messages), g.config(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return &Result{Text: text}, nil
}

// GenerateStream implements Gateway.
func (g *GeminiGateway) GenerateStream(ctx context.Context, req Request, emit func(chunk string) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sawText := false
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, toContents(req.Messages), g.config(req)) {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		sawText = true
		if err := emit(chunk); err != nil {
			return err
		}
	}
	if !sawText {
		return fmt.Errorf("%w: empty stream", ErrGenerationFailed)
	}
	return nil
}

// config translates the request into SDK generation settings.
func (g *GeminiGateway) config(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.SystemInstruction)},
		}
	}
	return cfg
}

// toContents maps gateway messages onto SDK contents.
func toContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			if len(p.ImageData) > 0 {
				parts = append(parts, genai.NewPartFromBytes(p.ImageData, p.ImageMIME))
			}
			if p.Text != "" || len(p.ImageData) == 0 {
				parts = append(parts, genai.NewPartFromText(p.Text))
			}
		}
		role := genai.RoleUser
		if m.Role == "model" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out
}
