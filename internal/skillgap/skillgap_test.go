package skillgap

import (
	"testing"

	"github.com/spigell/resume-fit/internal/taxonomy"
	"github.com/stretchr/testify/assert"
)

func testRoles() *taxonomy.Roles {
	return taxonomy.NewRoles(map[string][]string{
		"data scientist": {"python", "r", "sql", "machine learning"},
	})
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	got := NewAnalyzer(testRoles()).Analyze([]string{" Python ", "SQL", "HTML"}, "data scientist")

	assert.Equal(t, Result{
		Status:         StatusSuccess,
		Message:        "Skill gap analysis complete.",
		MissingSkills:  []string{"machine learning", "r"},
		ExistingSkills: []string{"python", "sql"},
	}, got)
}

func TestAnalyzeUnknownRole(t *testing.T) {
	t.Parallel()

	input := []string{"Python", "Docker"}

	for _, role := range []string{"astronaut", "Data Scientist", ""} {
		got := NewAnalyzer(testRoles()).Analyze(input, role)

		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, "Target role '"+role+"' not found in our database.", got.Message)
		assert.Empty(t, got.MissingSkills)
		assert.NotNil(t, got.MissingSkills)
		assert.Equal(t, input, got.ExistingSkills, "existing skills echo the raw input")
	}
}

func TestAnalyzeNoSkills(t *testing.T) {
	t.Parallel()

	got := NewAnalyzer(testRoles()).Analyze(nil, "data scientist")
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, []string{"machine learning", "python", "r", "sql"}, got.MissingSkills)
	assert.Equal(t, []string{}, got.ExistingSkills)

	unknown := NewAnalyzer(nil).Analyze(nil, "data scientist")
	assert.Equal(t, StatusError, unknown.Status)
	assert.Equal(t, []string{}, unknown.ExistingSkills)
}

func TestRoles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"data scientist"}, NewAnalyzer(testRoles()).Roles())
	assert.Nil(t, NewAnalyzer(nil).Roles())
}
