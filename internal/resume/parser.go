// Package resume turns raw résumé text into a ParsedResume.
package resume

import (
	"context"

	"github.com/spigell/resume-fit/internal/extract"
	"go.uber.org/zap"
)

// Parsed is the structured view of a résumé.
type Parsed struct {
	Name            *string  `json:"name"`
	Skills          []string `json:"skills"`
	Organizations   []string `json:"organizations"`
	Education       []string `json:"education"`
	ExperienceYears float64  `json:"experience_years"`
}

// Parser composes the individual extractors. It never fails: an extractor
// that cannot produce a value leaves the zero value in its field.
type Parser struct {
	skills     *extract.SkillExtractor
	entities   *extract.EntityExtractor
	experience *extract.ExperienceEstimator
	logger     *zap.Logger
}

// NewParser wires the extractors together.
func NewParser(skills *extract.SkillExtractor, entities *extract.EntityExtractor, experience *extract.ExperienceEstimator, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if entities == nil {
		entities = extract.NewEntityExtractor(nil, logger)
	}
	if experience == nil {
		experience = extract.NewExperienceEstimator(nil)
	}
	return &Parser{
		skills:     skills,
		entities:   entities,
		experience: experience,
		logger:     logger,
	}
}

// Parse extracts every résumé field from raw text.
func (p *Parser) Parse(ctx context.Context, raw string) Parsed {
	ents := p.entities.Extract(ctx, raw)

	parsed := Parsed{
		Name:            ents.Name,
		Skills:          p.ParseSkills(raw),
		Organizations:   ents.Organizations,
		Education:       extract.Education(raw),
		ExperienceYears: p.experience.Estimate(raw),
	}

	p.logger.Debug("resume parsed",
		zap.Bool("has_name", parsed.Name != nil),
		zap.Int("skills", len(parsed.Skills)),
		zap.Int("organizations", len(parsed.Organizations)),
		zap.Int("education", len(parsed.Education)),
		zap.Float64("experience_years", parsed.ExperienceYears),
	)

	return parsed
}

// ParseSkills runs only skill extraction. Job descriptions go through here.
func (p *Parser) ParseSkills(raw string) []string {
	if p.skills == nil {
		return []string{}
	}
	return p.skills.Extract(raw)
}
