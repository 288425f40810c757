package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spigell/resume-fit/internal/cache"
	"go.uber.org/zap"
)

// ErrVectorCount is returned when the underlying embedder does not produce
// exactly one vector per text.
var ErrVectorCount = errors.New("embedder returned a wrong number of vectors")

// Store is the cache the Cached embedder reads and writes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// Cached memoizes vectors of an underlying Embedder per model and text.
type Cached struct {
	next   Embedder
	store  Store
	model  string
	logger *zap.Logger
}

// NewCached wraps next. model partitions the cache between embedders.
func NewCached(next Embedder, store Store, model string, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, store: store, model: model, logger: logger}
}

// Embed serves cached vectors and embeds only the misses, in one call.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if data, ok := c.store.Get(ctx, c.key(t)); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		c.logger.Debug("embedding cache hit", zap.Int("texts", len(texts)))
		return out, nil
	}

	vectors, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d for %d texts", ErrVectorCount, len(vectors), len(missTexts))
	}

	for j, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: empty vector for text %d", ErrVectorCount, j)
		}
		out[missIdx[j]] = vec
		if data, err := json.Marshal(vec); err == nil {
			c.store.Set(ctx, c.key(missTexts[j]), data)
		}
	}

	return out, nil
}

func (c *Cached) key(t string) string {
	return cache.Key("emb", c.model, t)
}
