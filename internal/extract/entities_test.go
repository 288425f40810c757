package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubRecognizer struct {
	entities []Entity
	err      error
}

func (s stubRecognizer) Recognize(context.Context, string) ([]Entity, error) {
	return s.entities, s.err
}

func TestEntityExtractorPicksEarliestPersonAndDistinctOrgs(t *testing.T) {
	t.Parallel()

	e := NewEntityExtractor(stubRecognizer{entities: []Entity{
		{Text: "Acme Corp", Label: LabelOrg, Start: 40},
		{Text: "Bob Roe", Label: LabelPerson, Start: 60},
		{Text: "Jane Doe", Label: LabelPerson, Start: 0},
		{Text: "Globex", Label: "org", Start: 80},
		{Text: "Acme Corp", Label: LabelOrg, Start: 90},
		{Text: "Paris", Label: "GPE", Start: 20},
		{Text: "Initech", Label: LabelOrg, Start: -1},
	}}, nil)

	got := e.Extract(context.Background(), "irrelevant")
	require.NotNil(t, got.Name)
	assert.Equal(t, "Jane Doe", *got.Name)
	assert.Equal(t, []string{"Acme Corp", "Globex", "Initech"}, got.Organizations)
}

func TestEntityExtractorSwallowsRecognizerErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEntityExtractor(stubRecognizer{err: errors.New("model unavailable")}, zap.New(core))

	got := e.Extract(context.Background(), "Jane Doe")
	assert.Nil(t, got.Name)
	assert.Empty(t, got.Organizations)
	assert.NotNil(t, got.Organizations)
	assert.Equal(t, 1, logs.FilterMessage("entity recognition failed").Len())
}

func TestEntityExtractorEmptyText(t *testing.T) {
	t.Parallel()

	got := NewEntityExtractor(nil, nil).Extract(context.Background(), "  ")
	assert.Nil(t, got.Name)
	assert.Empty(t, got.Organizations)
}

func TestHeuristicRecognizer(t *testing.T) {
	t.Parallel()

	raw := "RESUME\nJane Q. Doe\njane@mail.com\nSenior Engineer at Globex\nBackend Developer, Initech Solutions (2018 - present)\nB.Sc, Stanford University"

	got := NewEntityExtractor(HeuristicRecognizer{}, nil).Extract(context.Background(), raw)

	require.NotNil(t, got.Name)
	assert.Equal(t, "Jane Q. Doe", *got.Name)
	assert.Equal(t, []string{"Globex", "Initech Solutions", "Stanford University"}, got.Organizations)
}

func TestHeuristicRecognizerNoName(t *testing.T) {
	t.Parallel()

	entities, err := HeuristicRecognizer{}.Recognize(context.Background(), "Need Python, Kubernetes, AWS")
	require.NoError(t, err)
	assert.Empty(t, entities)

	got := NewEntityExtractor(nil, nil).Extract(context.Background(), "John Doe\nSkills: Python, Docker")
	require.NotNil(t, got.Name)
	assert.Equal(t, "John Doe", *got.Name)
}
