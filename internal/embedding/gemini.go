package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Default Gemini embedding model and its output dimension
const (
	DefaultGeminiModel     = "text-embedding-004"
	DefaultGeminiDimension = 768
)

// GeminiProvider implements Provider with a Google Gemini embedding model
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider creates a new Gemini embedding provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, dimension int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if dimension <= 0 {
		dimension = DefaultGeminiDimension
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

// Embed embeds text with the configured model
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	em := p.client.EmbeddingModel(p.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &ProviderError{Text: text, Cause: err}
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &ProviderError{Text: text, Cause: fmt.Errorf("no embedding in response")}
	}
	return resp.Embedding.Values, nil
}

// Dimension returns the configured embedding dimension
func (p *GeminiProvider) Dimension() int {
	return p.dimension
}

// Model returns the embedding model name
func (p *GeminiProvider) Model() string {
	return p.model
}

// Close releases resources held by the client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
