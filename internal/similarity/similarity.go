// Package similarity scores how close a résumé skill set is to a job skill
// set and which job skills are covered.
package similarity

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/spigell/resume-fit/internal/text"
	"go.uber.org/zap"
)

// Match levels.
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

// Embedder turns texts into vectors, one per input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Result is the outcome of comparing two skill sets.
type Result struct {
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	MatchLevel    string   `json:"match_level"`
}

// Scorer combines an embedding similarity headline score with exact set
// membership for matched and missing skills.
type Scorer struct {
	embedder Embedder
	logger   *zap.Logger
}

// NewScorer returns a scorer. A nil embedder makes every score 0.
func NewScorer(embedder Embedder, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{embedder: embedder, logger: logger}
}

// Score compares resume skills with job skills.
func (s *Scorer) Score(ctx context.Context, resumeSkills, jobSkills []string) Result {
	resume := canonicalSet(resumeSkills)
	job := canonicalSet(jobSkills)

	if len(resume) == 0 || len(job) == 0 || s.embedder == nil {
		return unscored(job)
	}

	vectors, err := s.embedder.Embed(ctx, []string{strings.Join(resume, " "), strings.Join(job, " ")})
	if err != nil || len(vectors) != 2 {
		s.logger.Warn("embedding unavailable, similarity not scored", zap.Error(err))
		return unscored(job)
	}

	score := rescale(Cosine(vectors[0], vectors[1]))
	matched, missing := Compare(resume, job)

	s.logger.Debug("similarity scored",
		zap.Int("score", score),
		zap.Int("matched", len(matched)),
		zap.Int("missing", len(missing)),
	)

	return Result{
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
		MatchLevel:    Band(score),
	}
}

func unscored(job []string) Result {
	return Result{
		Score:         0,
		MatchedSkills: []string{},
		MissingSkills: job,
		MatchLevel:    Band(0),
	}
}

// Compare returns resume ∩ job and job − resume, both sorted.
func Compare(resume, job []string) (matched, missing []string) {
	have := make(map[string]struct{}, len(resume))
	for _, skill := range resume {
		have[text.CanonicalSkill(skill)] = struct{}{}
	}

	matched, missing = []string{}, []string{}
	for _, skill := range canonicalSet(job) {
		if _, ok := have[text.CanonicalSkill(skill)]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return matched, missing
}

// Band maps a 0-100 score to a match level.
func Band(score int) string {
	switch {
	case score >= 75:
		return LevelHigh
	case score >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero norm or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func rescale(cos float64) int {
	if math.IsNaN(cos) {
		return 0
	}
	score := int(math.Round((cos + 1) / 2 * 100))
	return min(max(score, 0), 100)
}

func canonicalSet(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, raw := range skills {
		skill := text.CanonicalSkill(raw)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
