// Package embedding provides sentence embedders: a static token-vector model
// loaded from a pre-built artifact and a caching decorator for any embedder.
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spigell/resume-fit/internal/artifact"
	"github.com/spigell/resume-fit/internal/text"
)

// ErrArtifactMissing is returned when the model file does not exist.
var ErrArtifactMissing = artifact.ErrMissing

// ErrNoKnownTokens is returned when none of the tokens of a text are in the
// model vocabulary, so no meaningful vector can be produced.
var ErrNoKnownTokens = errors.New("no known tokens in text")

// Embedder turns texts into dense vectors, one per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type staticArtifact struct {
	Name      string               `json:"name"`
	Dimension int                  `json:"dimension"`
	Vectors   map[string][]float32 `json:"vectors"`
}

// Static embeds a text as the mean of the vectors of its tokens.
type Static struct {
	name    string
	dim     int
	vectors map[string][]float32
}

// NewStatic validates the vectors against dim.
func NewStatic(name string, dim int, vectors map[string][]float32) (*Static, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	if len(vectors) == 0 {
		return nil, errors.New("embedding vocabulary is empty")
	}

	cleaned := make(map[string][]float32, len(vectors))
	for token, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector for %q has dimension %d, want %d", token, len(vec), dim)
		}
		cleaned[text.CanonicalSkill(token)] = vec
	}

	if name == "" {
		name = "static"
	}
	return &Static{name: name, dim: dim, vectors: cleaned}, nil
}

// LoadStatic reads a model artifact of the form
// {"name": "...", "dimension": N, "vectors": {"token": [..N floats..]}}.
func LoadStatic(path string) (*Static, error) {
	data, err := artifact.Read("embedding model", path)
	if err != nil {
		return nil, err
	}

	var a staticArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode embedding model %q: %w", path, err)
	}

	return NewStatic(a.Name, a.Dimension, a.Vectors)
}

// Model returns the model name used in cache keys and reports.
func (s *Static) Model() string { return s.name }

// Embed implements Embedder.
func (s *Static) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := s.embedOne(t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (s *Static) embedOne(t string) ([]float32, error) {
	sum := make([]float32, s.dim)
	known := 0
	for _, tok := range text.Tokenize(text.Normalize(t)) {
		vec, ok := s.vectors[tok]
		if !ok {
			continue
		}
		known++
		for i, v := range vec {
			sum[i] += v
		}
	}

	if known == 0 {
		return nil, ErrNoKnownTokens
	}

	for i := range sum {
		sum[i] /= float32(known)
	}
	return sum, nil
}
