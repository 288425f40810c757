// Package taxonomy holds the read-only skill and job-role vocabularies the
// matchers are built from.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/spigell/resume-fit/internal/artifact"
	"github.com/spigell/resume-fit/internal/text"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/skills.yaml
var defaultSkills []byte

// ErrArtifactMissing is returned when a taxonomy file is configured but absent.
var ErrArtifactMissing = artifact.ErrMissing

// Category is a named group of canonical skills.
type Category struct {
	Name   string
	Skills []string
}

// Skills is an immutable skill taxonomy. Every skill is canonical, non-empty
// and belongs to exactly one category.
type Skills struct {
	categories []Category
	all        []string
	category   map[string]string
}

// NewSkills builds a taxonomy from ordered categories. Skills are
// canonicalized; a skill repeated across categories stays in the first one.
func NewSkills(categories []Category) *Skills {
	s := &Skills{category: make(map[string]string)}

	for _, c := range categories {
		kept := make([]string, 0, len(c.Skills))
		for _, raw := range c.Skills {
			skill := text.CanonicalSkill(raw)
			if skill == "" {
				continue
			}
			if _, dup := s.category[skill]; dup {
				continue
			}
			s.category[skill] = c.Name
			s.all = append(s.all, skill)
			kept = append(kept, skill)
		}
		s.categories = append(s.categories, Category{Name: c.Name, Skills: kept})
	}

	return s
}

// ParseSkills decodes a YAML document of the form `category: [skill, ...]`,
// keeping the category order of the document.
func ParseSkills(data []byte) (*Skills, error) {
	categories, err := decodeOrderedLists(data)
	if err != nil {
		return nil, fmt.Errorf("parse skill taxonomy: %w", err)
	}
	if len(categories) == 0 {
		return nil, errors.New("parse skill taxonomy: no categories defined")
	}
	return NewSkills(categories), nil
}

// LoadSkills reads the taxonomy from path, or returns the embedded default
// taxonomy when path is empty.
func LoadSkills(path string) (*Skills, error) {
	if path == "" {
		return ParseSkills(defaultSkills)
	}

	data, err := artifact.Read("skill taxonomy", path)
	if err != nil {
		return nil, err
	}
	return ParseSkills(data)
}

// All returns every skill in taxonomy order.
func (s *Skills) All() []string {
	out := make([]string, len(s.all))
	copy(out, s.all)
	return out
}

// Len returns the number of distinct skills.
func (s *Skills) Len() int { return len(s.all) }

// Contains reports whether skill is part of the taxonomy.
func (s *Skills) Contains(skill string) bool {
	_, ok := s.category[text.CanonicalSkill(skill)]
	return ok
}

// CategoryOf returns the category the skill belongs to.
func (s *Skills) CategoryOf(skill string) (string, bool) {
	c, ok := s.category[text.CanonicalSkill(skill)]
	return c, ok
}

// Categories returns the category names in taxonomy order.
func (s *Skills) Categories() []string {
	names := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		names = append(names, c.Name)
	}
	return names
}

// Group buckets the given skills by taxonomy category. Unknown skills are
// dropped. Each bucket is sorted.
func (s *Skills) Group(skills []string) map[string][]string {
	out := make(map[string][]string)
	for _, skill := range skills {
		if c, ok := s.CategoryOf(skill); ok {
			out[c] = append(out[c], text.CanonicalSkill(skill))
		}
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}

func decodeOrderedLists(data []byte) ([]Category, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", root.Line)
	}

	out := make([]Category, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		var items []string
		if err := value.Decode(&items); err != nil {
			return nil, fmt.Errorf("%q at line %d: %w", key.Value, key.Line, err)
		}
		out = append(out, Category{Name: key.Value, Skills: items})
	}

	return out, nil
}
