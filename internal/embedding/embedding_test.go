package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStatic(t *testing.T) {
	t.Parallel()

	model, err := LoadStatic(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)
	assert.Equal(t, "skills-mini-3d", model.Model())

	vectors, err := model.Embed(context.Background(), []string{"Python Docker", "figma unknown"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0}, vectors[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, vectors[1], 1e-6)
}

func TestStaticErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadStatic(filepath.Join("testdata", "absent.json"))
	assert.True(t, errors.Is(err, ErrArtifactMissing))

	_, err = NewStatic("m", 2, map[string][]float32{"go": {1, 2, 3}})
	assert.Error(t, err)

	_, err = NewStatic("m", 0, map[string][]float32{"go": {}})
	assert.Error(t, err)

	_, err = NewStatic("m", 2, nil)
	assert.Error(t, err)

	model, err := NewStatic("", 1, map[string][]float32{"go": {1}})
	require.NoError(t, err)
	assert.Equal(t, "static", model.Model())

	_, err = model.Embed(context.Background(), []string{"rust"})
	assert.ErrorIs(t, err, ErrNoKnownTokens)
}

type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapStore) Set(_ context.Context, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

func TestCachedEmbedsOnlyMisses(t *testing.T) {
	t.Parallel()

	next := &countingEmbedder{}
	store := &mapStore{data: map[string][]byte{}}
	c := NewCached(next, store, "m1", nil)
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"go", "python"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2}, {6}}, first)

	second, err := c.Embed(ctx, []string{"python", "rust"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{6}, {4}}, second)

	third, err := c.Embed(ctx, []string{"go", "rust"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2}, {4}}, third)

	assert.Equal(t, [][]string{{"go", "python"}, {"rust"}}, next.calls)

	other := NewCached(next, store, "m2", nil)
	_, err = other.Embed(ctx, []string{"go"})
	require.NoError(t, err)
	assert.Len(t, next.calls, 3, "cache entries are partitioned by model")
}

type shortEmbedder struct{}

func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func TestCachedRejectsMissingVectors(t *testing.T) {
	t.Parallel()

	store := &mapStore{data: map[string][]byte{}}
	c := NewCached(shortEmbedder{}, store, "m1", nil)

	_, err := c.Embed(context.Background(), []string{"python docker", "python kubernetes"})
	assert.True(t, errors.Is(err, ErrVectorCount))
	assert.Empty(t, store.data, "nothing is cached from a partial response")
}
