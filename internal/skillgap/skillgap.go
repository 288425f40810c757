// Package skillgap compares a candidate's skills with the skills a target
// role requires.
package skillgap

import (
	"fmt"
	"sort"

	"github.com/spigell/resume-fit/internal/taxonomy"
	"github.com/spigell/resume-fit/internal/text"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const completeMessage = "Skill gap analysis complete."

// Result describes the gap between a candidate and a role.
type Result struct {
	Status         string   `json:"status"`
	Message        string   `json:"message"`
	MissingSkills  []string `json:"missing_skills"`
	ExistingSkills []string `json:"existing_skills"`
}

// Analyzer looks roles up in a role taxonomy.
type Analyzer struct {
	roles *taxonomy.Roles
}

// NewAnalyzer returns an analyzer over roles.
func NewAnalyzer(roles *taxonomy.Roles) *Analyzer {
	return &Analyzer{roles: roles}
}

// Analyze computes the gap for role. The role lookup is exact; an unknown
// role is reported in the result rather than as an error.
func (a *Analyzer) Analyze(studentSkills []string, role string) Result {
	var required []string
	ok := false
	if a.roles != nil {
		required, ok = a.roles.Required(role)
	}
	if !ok {
		existing := studentSkills
		if existing == nil {
			existing = []string{}
		}
		return Result{
			Status:         StatusError,
			Message:        fmt.Sprintf("Target role '%s' not found in our database.", role),
			MissingSkills:  []string{},
			ExistingSkills: existing,
		}
	}

	have := make(map[string]struct{}, len(studentSkills))
	for _, s := range studentSkills {
		have[text.CanonicalSkill(s)] = struct{}{}
	}

	missing, existing := []string{}, []string{}
	for _, skill := range required {
		if _, ok := have[skill]; ok {
			existing = append(existing, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(missing)
	sort.Strings(existing)

	return Result{
		Status:         StatusSuccess,
		Message:        completeMessage,
		MissingSkills:  missing,
		ExistingSkills: existing,
	}
}

// Roles returns the known role names.
func (a *Analyzer) Roles() []string {
	if a.roles == nil {
		return nil
	}
	return a.roles.Names()
}
