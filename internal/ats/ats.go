// Package ats estimates how well a résumé would pass an applicant tracking
// system keyword screen for a job description.
package ats

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spigell/resume-fit/internal/artifact"
	"github.com/spigell/resume-fit/internal/tfidf"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Suggestion types.
const (
	TypeKeywordMatch    = "Keyword Match"
	TypeMissingKeywords = "Missing Keywords"
	TypeAchievement     = "Achievement"
)

// Defaults for Options.
const (
	DefaultLowScore             = 70.0
	DefaultMissingKeywordsLimit = 10
)

const (
	keywordMatchMessage = "Your resume's keyword match is low. Focus on incorporating terms directly from the job description."
	missingKeywordsFmt  = "Incorporate the following keywords to improve your match: %s."
	achievementMessage  = "Your resume lacks quantifiable achievements. Add metrics like percentages, numbers, and dollar amounts to highlight your impact."
)

var achievementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+%?(\s\w+)?\s(increase|decrease)`),
	regexp.MustCompile(`(?i)reduced .* by \d+%?`),
	regexp.MustCompile(`(?i)managed team of \d+`),
	regexp.MustCompile(`(?i)generated \$\d+`),
}

// Suggestion is one piece of actionable feedback.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Report is the ATS verdict for a résumé and job description pair.
type Report struct {
	Score           float64      `json:"ats_score"`
	Suggestions     []Suggestion `json:"suggestions"`
	MissingKeywords []string     `json:"missing_keywords"`
}

// Options tunes the scorer.
type Options struct {
	LowScore             float64
	MissingKeywordsLimit int
}

type keyword struct {
	term    string
	pattern *regexp.Regexp
}

// Scorer computes ATS reports. It is read-only after construction.
type Scorer struct {
	vectorizer *tfidf.Vectorizer
	keywords   []keyword
	lowScore   float64
	limit      int
	logger     *zap.Logger
}

// NewScorer builds a scorer from a fitted vectorizer and the ordered list of
// keywords harvested from job descriptions.
func NewScorer(vectorizer *tfidf.Vectorizer, keywords []string, opts Options, logger *zap.Logger) *Scorer {
	if opts.LowScore <= 0 {
		opts.LowScore = DefaultLowScore
	}
	if opts.MissingKeywordsLimit <= 0 {
		opts.MissingKeywordsLimit = DefaultMissingKeywordsLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scorer{
		vectorizer: vectorizer,
		lowScore:   opts.LowScore,
		limit:      opts.MissingKeywordsLimit,
		logger:     logger,
	}

	seen := make(map[string]struct{}, len(keywords))
	for _, raw := range keywords {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		s.keywords = append(s.keywords, keyword{
			term:    term,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`),
		})
	}

	return s
}

// Load reads the vectorizer and keyword artifacts. Both are required.
func Load(vectorizerPath, keywordsPath string, opts Options, logger *zap.Logger) (*Scorer, error) {
	vectorizer, err := tfidf.Load(vectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("ats vectorizer: %w", err)
	}

	keywords, err := LoadKeywords(keywordsPath)
	if err != nil {
		return nil, err
	}

	return NewScorer(vectorizer, keywords, opts, logger), nil
}

// LoadKeywords reads an ordered keyword list stored as a YAML or JSON array.
func LoadKeywords(path string) ([]string, error) {
	data, err := artifact.Read("job keywords", path)
	if err != nil {
		return nil, err
	}

	var keywords []string
	if err := yaml.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("decode job keywords %q: %w", path, err)
	}
	return keywords, nil
}

// Score builds the report. Suggestions come in a fixed order: keyword match,
// missing keywords, achievements.
func (s *Scorer) Score(resume, job string) Report {
	score := s.keywordScore(resume, job)
	missing := s.MissingKeywords(resume)

	suggestions := []Suggestion{}
	if score < s.lowScore {
		suggestions = append(suggestions, Suggestion{Type: TypeKeywordMatch, Message: keywordMatchMessage})
	}
	if len(missing) > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:    TypeMissingKeywords,
			Message: fmt.Sprintf(missingKeywordsFmt, strings.Join(missing, ", ")),
		})
	}
	if !HasQuantifiedAchievement(resume) {
		suggestions = append(suggestions, Suggestion{Type: TypeAchievement, Message: achievementMessage})
	}

	s.logger.Debug("ats scored",
		zap.Float64("score", score),
		zap.Int("missing_keywords", len(missing)),
		zap.Int("suggestions", len(suggestions)),
	)

	return Report{Score: score, Suggestions: suggestions, MissingKeywords: missing}
}

func (s *Scorer) keywordScore(resume, job string) float64 {
	if s.vectorizer == nil {
		return 0
	}
	cos := tfidf.Cosine(s.vectorizer.Transform(resume), s.vectorizer.Transform(job))
	return math.Round(cos*100*100) / 100
}

// MissingKeywords returns, in artifact order, the first keywords that do not
// occur as whole words in the résumé.
func (s *Scorer) MissingKeywords(resume string) []string {
	lower := strings.ToLower(resume)
	missing := []string{}
	for _, kw := range s.keywords {
		if len(missing) == s.limit {
			break
		}
		if !kw.pattern.MatchString(lower) {
			missing = append(missing, kw.term)
		}
	}
	return missing
}

// HasQuantifiedAchievement reports whether the text mentions at least one
// measurable result.
func HasQuantifiedAchievement(text string) bool {
	for _, p := range achievementPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
