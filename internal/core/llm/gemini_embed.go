package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/osezele-ek/MiniDrive/internal/core"
)

type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	dim       int
	timeout   time.Duration
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, dim int, timeout time.Duration) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embedding provider API key not set")
	}
	if dim <= 0 {
		return nil, errors.New("embedding dimension must be positive")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, dim: dim, timeout: timeout}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedText embeds a single text. Empty input is an error so callers never
// mistake a missing vector for a valid one.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("empty input text")
	}
	out, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("provider returned no embedding")
	}
	return out[0], nil
}

// EmbedTexts batches all texts in one request via EmbeddingBatch.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	em := g.client.EmbeddingModel(g.modelName)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if err := g.checkDim(e.Values); err != nil {
			return nil, err
		}
		out = append(out, e.Values)
	}
	return out, nil
}

// checkDim rejects vectors whose width disagrees with the configured
// dimension. A silent mismatch would fail every insert downstream against
// the fixed-width embeddings column, so the misconfiguration is surfaced
// here at the provider boundary instead.
func (g *GeminiEmbedder) checkDim(vec []float32) error {
	if len(vec) != g.dim {
		return fmt.Errorf("model %s returned a %d-dim embedding, configured for %d; fix EMBED_MODEL/EMBED_DIM",
			g.modelName, len(vec), g.dim)
	}
	return nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
