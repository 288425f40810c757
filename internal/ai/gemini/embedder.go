package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resume-fit/internal/ai"
	"github.com/spigell/resume-fit/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Embedder produces sentence embeddings through the Gemini embedding model.
type Embedder struct {
	generator *Generator
}

// Embedder returns an embedder sharing the generator's client and retry policy.
func (g *Generator) Embedder() *Embedder {
	return &Embedder{generator: g}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil || e.generator == nil {
		return ""
	}
	return e.generator.embeddingModel
}

// Embed returns one vector per text, in order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.generator == nil || e.generator.models == nil {
		return nil, ai.NewGenerationError(ai.ReasonUnknown, errors.New("gemini embedder is not initialized"))
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	g := e.generator
	log := logger.WithCommonFields(g.logger, providerName, g.embeddingModel)

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	var vectors [][]float32
	err := g.withRetry(ctx, log, func() error {
		resp, err := g.models.EmbedContent(ctx, g.embeddingModel, contents, nil)
		if err != nil {
			return err
		}
		if resp == nil || len(resp.Embeddings) != len(texts) {
			return ai.NewGenerationError(ai.ReasonEmpty, fmt.Errorf("gemini api returned %d embeddings for %d texts", embeddingCount(resp), len(texts)))
		}

		vectors = make([][]float32, len(texts))
		for i, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return ai.NewGenerationError(ai.ReasonEmpty, fmt.Errorf("gemini api returned empty embedding at %d", i))
			}
			vectors[i] = emb.Values
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("gemini embed content", zap.Int("texts", len(texts)), zap.Int("dimension", len(vectors[0])))
	return vectors, nil
}

func embeddingCount(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
