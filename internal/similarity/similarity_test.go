package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/resume-fit/internal/cache"
	"github.com/spigell/resume-fit/internal/embedding"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	texts   []string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.texts = texts
	return s.vectors, s.err
}

func TestScore(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: [][]float32{{1, 0}, {1, 1}}}
	s := NewScorer(embedder, nil)

	got := s.Score(context.Background(), []string{"Python", "docker"}, []string{"python", "kubernetes", "aws", "python"})

	// cos = 1/sqrt(2) ≈ 0.7071, (cos+1)/2*100 ≈ 85.36
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, LevelHigh, got.MatchLevel)
	assert.Equal(t, []string{"python"}, got.MatchedSkills)
	assert.Equal(t, []string{"aws", "kubernetes"}, got.MissingSkills)
	assert.Equal(t, []string{"docker python", "aws kubernetes python"}, embedder.texts)
}

func TestScoreUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		embedder Embedder
		resume   []string
		job      []string
		missing  []string
	}{
		{name: "no embedder", embedder: nil, resume: []string{"python"}, job: []string{"python", "aws"}, missing: []string{"aws", "python"}},
		{name: "embedder error", embedder: &stubEmbedder{err: errors.New("boom")}, resume: []string{"python"}, job: []string{"aws"}, missing: []string{"aws"}},
		{name: "short response", embedder: &stubEmbedder{vectors: [][]float32{{1}}}, resume: []string{"python"}, job: []string{"aws"}, missing: []string{"aws"}},
		{name: "empty resume", embedder: &stubEmbedder{}, resume: nil, job: []string{"aws"}, missing: []string{"aws"}},
		{name: "empty job", embedder: &stubEmbedder{}, resume: []string{"python"}, job: []string{}, missing: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewScorer(tt.embedder, nil).Score(context.Background(), tt.resume, tt.job)
			assert.Equal(t, 0, got.Score)
			assert.Equal(t, []string{}, got.MatchedSkills)
			assert.Equal(t, tt.missing, got.MissingSkills)
			assert.Equal(t, LevelLow, got.MatchLevel)
		})
	}
}

func TestScoreCachedShortResponse(t *testing.T) {
	t.Parallel()

	store := cache.New(context.Background(), cache.Options{}, nil)
	defer store.Close()

	cached := embedding.NewCached(&stubEmbedder{vectors: [][]float32{{1}}}, store, "m1", nil)
	got := NewScorer(cached, nil).Score(context.Background(), []string{"python"}, []string{"aws"})

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, LevelLow, got.MatchLevel)
}

func TestScoreIsClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		vectors [][]float32
		want    int
	}{
		{name: "identical", vectors: [][]float32{{1, 2}, {2, 4}}, want: 100},
		{name: "opposite", vectors: [][]float32{{1, 0}, {-1, 0}}, want: 0},
		{name: "orthogonal", vectors: [][]float32{{1, 0}, {0, 1}}, want: 50},
		{name: "zero vector", vectors: [][]float32{{0, 0}, {0, 1}}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewScorer(&stubEmbedder{vectors: tt.vectors}, nil).Score(context.Background(), []string{"a"}, []string{"b"})
			assert.Equal(t, tt.want, got.Score)
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, 100)
		})
	}
}

func TestCompareProperties(t *testing.T) {
	t.Parallel()

	a := []string{"python", "docker", "sql"}
	b := []string{"sql", "aws", "python", "go"}

	matched, missing := Compare(a, b)

	inA := map[string]bool{}
	for _, s := range a {
		inA[s] = true
	}
	for _, s := range matched {
		assert.True(t, inA[s], "%s matched but not in resume", s)
		assert.Contains(t, b, s)
	}
	for _, s := range missing {
		assert.False(t, inA[s])
	}
	assert.Len(t, append(matched, missing...), len(b))
}

func TestBand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelHigh, Band(100))
	assert.Equal(t, LevelHigh, Band(75))
	assert.Equal(t, LevelMedium, Band(74))
	assert.Equal(t, LevelMedium, Band(50))
	assert.Equal(t, LevelLow, Band(49))
	assert.Equal(t, LevelLow, Band(0))
}
