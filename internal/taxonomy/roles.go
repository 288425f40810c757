package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/resume-fit/internal/artifact"
	"github.com/spigell/resume-fit/internal/text"
)

//go:embed defaults/roles.yaml
var defaultRoles []byte

// Roles maps a lower-case job role to the skills it requires.
type Roles struct {
	required map[string][]string
	names    []string
}

// NewRoles builds a role taxonomy. Role names are lower-cased and trimmed,
// required skills canonicalized and de-duplicated.
func NewRoles(roles map[string][]string) *Roles {
	r := &Roles{required: make(map[string][]string, len(roles))}

	for name, skills := range roles {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		seen := make(map[string]struct{}, len(skills))
		list := make([]string, 0, len(skills))
		for _, raw := range skills {
			skill := text.CanonicalSkill(raw)
			if skill == "" {
				continue
			}
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			list = append(list, skill)
		}

		r.required[name] = list
		r.names = append(r.names, name)
	}

	sort.Strings(r.names)
	return r
}

// ParseRoles decodes a YAML document of the form `role: [skill, ...]`.
func ParseRoles(data []byte) (*Roles, error) {
	entries, err := decodeOrderedLists(data)
	if err != nil {
		return nil, fmt.Errorf("parse role taxonomy: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("parse role taxonomy: no roles defined")
	}

	roles := make(map[string][]string, len(entries))
	for _, e := range entries {
		roles[e.Name] = append(roles[e.Name], e.Skills...)
	}
	return NewRoles(roles), nil
}

// LoadRoles reads the role taxonomy from path, or returns the embedded
// default when path is empty.
func LoadRoles(path string) (*Roles, error) {
	if path == "" {
		return ParseRoles(defaultRoles)
	}

	data, err := artifact.Read("role taxonomy", path)
	if err != nil {
		return nil, err
	}
	return ParseRoles(data)
}

// Required returns the skills needed for role. The lookup is exact.
func (r *Roles) Required(role string) ([]string, bool) {
	skills, ok := r.required[role]
	if !ok {
		return nil, false
	}
	out := make([]string, len(skills))
	copy(out, skills)
	return out, true
}

// Uncovered returns, per role, the required skills the skill taxonomy does not
// know. Such skills can never be extracted from a resume, so the role always
// reports them as missing. Roles without gaps are omitted.
func (r *Roles) Uncovered(skills *Skills) map[string][]string {
	out := make(map[string][]string)
	if skills == nil {
		return out
	}
	for _, name := range r.names {
		for _, skill := range r.required[name] {
			if !skills.Contains(skill) {
				out[name] = append(out[name], skill)
			}
		}
	}
	return out
}

// Names returns the known roles in alphabetical order.
func (r *Roles) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
