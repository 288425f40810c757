// Package extract turns résumé and job-description text into structured
// signals: skills, named entities, education lines and years of experience.
package extract

import (
	"sort"
	"unicode/utf8"

	"github.com/spigell/resume-fit/internal/taxonomy"
	"github.com/spigell/resume-fit/internal/text"
)

// FuzzyThreshold is the default partial-ratio score a token has to exceed to
// be counted as a single-token taxonomy skill.
const FuzzyThreshold = 92.0

// SkillExtractor finds taxonomy skills in free text.
type SkillExtractor struct {
	threshold float64
	minFuzzy  int
	// sequences are indexed by their first token.
	sequences map[string][]skillSequence
	singles   []skillSequence
}

type skillSequence struct {
	skill  string
	tokens []string
}

// SkillOption configures a SkillExtractor.
type SkillOption func(*SkillExtractor)

// WithFuzzyThreshold overrides FuzzyThreshold. Non-positive values are ignored.
func WithFuzzyThreshold(threshold float64) SkillOption {
	return func(e *SkillExtractor) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// WithMinFuzzyTokenLength skips the fuzzy fallback for tokens shorter than n
// runes. Zero, the default, compares every token.
func WithMinFuzzyTokenLength(n int) SkillOption {
	return func(e *SkillExtractor) {
		if n > 0 {
			e.minFuzzy = n
		}
	}
}

// NewSkillExtractor pre-tokenizes every taxonomy skill.
func NewSkillExtractor(skills *taxonomy.Skills, opts ...SkillOption) *SkillExtractor {
	e := &SkillExtractor{
		threshold: FuzzyThreshold,
		sequences: make(map[string][]skillSequence),
	}
	for _, opt := range opts {
		opt(e)
	}

	if skills == nil {
		return e
	}

	for _, skill := range skills.All() {
		tokens := text.SkillTokens(skill)
		if len(tokens) == 0 {
			continue
		}
		seq := skillSequence{skill: skill, tokens: tokens}
		e.sequences[tokens[0]] = append(e.sequences[tokens[0]], seq)
		if len(tokens) == 1 {
			e.singles = append(e.singles, seq)
		}
	}

	return e
}

// Threshold returns the fuzzy threshold in use.
func (e *SkillExtractor) Threshold() float64 { return e.threshold }

// Extract returns the sorted set of taxonomy skills found in s.
func (e *SkillExtractor) Extract(s string) []string {
	tokens := text.Tokenize(text.Normalize(s))
	if len(tokens) == 0 {
		return []string{}
	}

	found := make(map[string]struct{})

	for i, tok := range tokens {
		for _, seq := range e.sequences[tok] {
			if hasSequenceAt(tokens, i, seq.tokens) {
				found[seq.skill] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if e.minFuzzy > 0 && utf8.RuneCountInString(tok) < e.minFuzzy {
			continue
		}

		for _, single := range e.singles {
			if _, ok := found[single.skill]; ok {
				continue
			}
			if PartialRatio(tok, single.tokens[0]) > e.threshold {
				found[single.skill] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(found))
	for skill := range found {
		out = append(out, skill)
	}
	sort.Strings(out)

	return out
}

func hasSequenceAt(tokens []string, at int, seq []string) bool {
	if at+len(seq) > len(tokens) {
		return false
	}
	for j, want := range seq {
		if tokens[at+j] != want {
			return false
		}
	}
	return true
}
