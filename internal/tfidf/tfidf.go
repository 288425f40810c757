// Package tfidf applies a pre-fitted TF-IDF vocabulary to new documents. The
// artifact layout mirrors the parameters of a fitted scikit-learn
// TfidfVectorizer so exported models can be used as is.
package tfidf

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spigell/resume-fit/internal/artifact"
)

// ErrArtifactMissing is returned when the vectorizer file does not exist.
var ErrArtifactMissing = artifact.ErrMissing

// DefaultTokenPattern selects tokens of two or more word characters.
const DefaultTokenPattern = `\b\w\w+\b`

// Artifact is the serialized form of a fitted vectorizer.
type Artifact struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	NgramRange   [2]int         `json:"ngram_range"`
	StopWords    []string       `json:"stop_words,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Norm         string         `json:"norm"`
	TokenPattern string         `json:"token_pattern,omitempty"`
}

// Vector is a sparse document vector keyed by vocabulary index.
type Vector map[int]float64

// Vectorizer turns documents into TF-IDF vectors. It is read-only after
// construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
	lowercase  bool
	minN, maxN int
	stopWords  map[string]struct{}
	sublinear  bool
	l2         bool
	pattern    *regexp.Regexp
}

// New validates a and builds a Vectorizer from it.
func New(a Artifact) (*Vectorizer, error) {
	if len(a.Vocabulary) == 0 {
		return nil, errors.New("tfidf: vocabulary is empty")
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return nil, fmt.Errorf("tfidf: idf has %d entries for a vocabulary of %d", len(a.IDF), len(a.Vocabulary))
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.IDF) {
			return nil, fmt.Errorf("tfidf: term %q has out of range index %d", term, idx)
		}
	}

	minN, maxN := a.NgramRange[0], a.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("tfidf: invalid ngram range %v", a.NgramRange)
	}

	norm := strings.ToLower(strings.TrimSpace(a.Norm))
	if norm != "" && norm != "l2" && norm != "none" {
		return nil, fmt.Errorf("tfidf: unsupported norm %q", a.Norm)
	}

	pattern := a.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	// RE2 has no unicode flag; \w is always ASCII.
	pattern = strings.TrimPrefix(pattern, "(?u)")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("tfidf: token pattern: %w", err)
	}

	lowercase := true
	if a.Lowercase != nil {
		lowercase = *a.Lowercase
	}

	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[w] = struct{}{}
	}

	return &Vectorizer{
		vocabulary: a.Vocabulary,
		idf:        a.IDF,
		lowercase:  lowercase,
		minN:       minN,
		maxN:       maxN,
		stopWords:  stop,
		sublinear:  a.SublinearTF,
		l2:         norm != "none",
		pattern:    re,
	}, nil
}

// Load reads a JSON vectorizer artifact.
func Load(path string) (*Vectorizer, error) {
	data, err := artifact.Read("tfidf vectorizer", path)
	if err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode tfidf vectorizer %q: %w", path, err)
	}

	return New(a)
}

// VocabularySize returns the number of terms.
func (v *Vectorizer) VocabularySize() int { return len(v.vocabulary) }

// Transform vectorizes doc. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(doc string) Vector {
	counts := make(map[int]float64)
	for _, term := range v.terms(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := make(Vector, len(counts))
	var norm float64
	for idx, tf := range counts {
		if v.sublinear {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}

	if v.l2 && norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}

	return vec
}

func (v *Vectorizer) terms(doc string) []string {
	if v.lowercase {
		doc = strings.ToLower(doc)
	}

	tokens := make([]string, 0)
	for _, tok := range v.pattern.FindAllString(doc, -1) {
		if _, stop := v.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	var out []string
	if v.minN == 1 {
		out = append(out, tokens...)
	}
	for n := max(v.minN, 2); n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// Cosine returns the cosine similarity of two sparse vectors.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	var dot float64
	for idx, x := range a {
		dot += x * b[idx]
	}

	na, nb := squaredNorm(a), squaredNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func squaredNorm(v Vector) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}
