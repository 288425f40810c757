// Package recommend suggests job roles whose description is closest to a
// candidate's skills.
package recommend

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spigell/resume-fit/internal/artifact"
	"github.com/spigell/resume-fit/internal/tfidf"
)

// DefaultTopN is the number of recommendations returned when none is asked for.
const DefaultTopN = 5

const (
	columnTitle = "role_title"
	columnText  = "combined_text"
)

// Role is one row of the job-role dataset.
type Role struct {
	Title string
	Text  string
}

// Recommendation is a suggested role with its cosine similarity in [0, 1].
type Recommendation struct {
	RoleTitle  string  `json:"role_title"`
	MatchScore float64 `json:"match_score"`
}

// Recommender ranks dataset roles against skills. Role vectors are computed
// once at construction.
type Recommender struct {
	vectorizer *tfidf.Vectorizer
	roles      []Role
	vectors    []tfidf.Vector
}

// New vectorizes every role.
func New(vectorizer *tfidf.Vectorizer, roles []Role) (*Recommender, error) {
	if vectorizer == nil {
		return nil, errors.New("recommender: vectorizer is required")
	}
	if len(roles) == 0 {
		return nil, errors.New("recommender: dataset has no roles")
	}

	r := &Recommender{vectorizer: vectorizer, roles: roles, vectors: make([]tfidf.Vector, len(roles))}
	for i, role := range roles {
		r.vectors[i] = vectorizer.Transform(role.Text)
	}
	return r, nil
}

// Load reads the dataset CSV and the vectorizer artifact.
func Load(datasetPath, vectorizerPath string) (*Recommender, error) {
	data, err := artifact.Read("job role dataset", datasetPath)
	if err != nil {
		return nil, err
	}

	roles, err := ParseDataset(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("job role dataset %q: %w", datasetPath, err)
	}

	vectorizer, err := tfidf.Load(vectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("recommender vectorizer: %w", err)
	}

	return New(vectorizer, roles)
}

// ParseDataset reads a CSV with a header containing role_title and
// combined_text. Other columns are ignored.
func ParseDataset(r io.Reader) ([]Role, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	titleIdx, textIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case columnTitle:
			titleIdx = i
		case columnText:
			textIdx = i
		}
	}
	if titleIdx < 0 || textIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q", columnTitle, columnText)
	}

	var roles []Role
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if titleIdx >= len(record) || textIdx >= len(record) {
			continue
		}
		title := strings.TrimSpace(record[titleIdx])
		if title == "" {
			continue
		}
		roles = append(roles, Role{Title: title, Text: record[textIdx]})
	}

	return roles, nil
}

// Recommend returns the topN roles most similar to skills, best first. Ties
// keep dataset order.
func (r *Recommender) Recommend(skills []string, topN int) []Recommendation {
	if topN <= 0 {
		topN = DefaultTopN
	}

	query := r.vectorizer.Transform(strings.Join(skills, ", "))

	out := make([]Recommendation, len(r.roles))
	for i, role := range r.roles {
		out[i] = Recommendation{RoleTitle: role.Title, MatchScore: tfidf.Cosine(query, r.vectors[i])}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Len returns the number of roles in the dataset.
func (r *Recommender) Len() int { return len(r.roles) }
