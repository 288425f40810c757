// Package coach turns analysis results into model-written advice: a career
// roadmap and rewritten résumé sections. Every failure becomes an error slot
// in the result instead of an error return.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/spigell/resume-fit/internal/ai"
	"github.com/spigell/resume-fit/internal/logger"
	"go.uber.org/zap"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Optimization targets.
const (
	TargetSummary    = "summary"
	TargetExperience = "experience"
	TargetSkills     = "skills"
)

// Targets lists the optimization targets in report order.
var Targets = []string{TargetSummary, TargetExperience, TargetSkills}

const (
	DefaultRoadmapMonths = 3

	roadmapTemperature   float32 = 0.4
	optimizeTemperature  float32 = 0.2
	safetyMessage                = "Content was blocked by safety filters. Please try rephrasing your input."
	optimizeErrorMessage         = "An unexpected error occurred during optimization. Please check your API key and connection."
)

var (
	//go:embed prompts/roadmap.md
	roadmapTemplate string
	//go:embed prompts/optimizer.md
	optimizerTemplate string
	//go:embed prompts/summary.md
	summaryTask string
	//go:embed prompts/experience.md
	experienceTask string
	//go:embed prompts/skills.md
	skillsTask string
)

var errNoGenerator = errors.New("ai generator is not configured")

type targetPrompt struct {
	task  string
	label string
}

var targetPrompts = map[string]targetPrompt{
	TargetSummary:    {task: summaryTask, label: "Resume Content"},
	TargetExperience: {task: experienceTask, label: "Resume Experience Section"},
	TargetSkills:     {task: skillsTask, label: "Resume Skills Section"},
}

// Roadmap is the career_roadmap report slot.
type Roadmap struct {
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	TargetRole  string  `json:"target_role,omitempty"`
	Timeline    string  `json:"timeline,omitempty"`
	Roadmap     *string `json:"roadmap"`
	SourceModel string  `json:"source_model,omitempty"`
}

// Optimization is one resume_optimization report slot.
type Optimization struct {
	Status             string  `json:"status"`
	Message            string  `json:"message,omitempty"`
	ErrorDetails       string  `json:"error_details,omitempty"`
	OptimizationTarget string  `json:"optimization_target,omitempty"`
	OptimizedContent   *string `json:"optimized_content"`
	SourceModel        string  `json:"source_model,omitempty"`
}

// Options tunes the coach.
type Options struct {
	RoadmapMonths int
}

// Coach drives a Generator with the roadmap and optimizer prompts.
type Coach struct {
	generator ai.Generator
	months    int
	logger    *zap.Logger
}

// New builds a coach. A nil generator is allowed and yields error slots.
func New(generator ai.Generator, opts Options, log *zap.Logger) *Coach {
	months := opts.RoadmapMonths
	if months <= 0 {
		months = DefaultRoadmapMonths
	}
	return &Coach{generator: generator, months: months, logger: logger.OrNop(log)}
}

// Months returns the roadmap timeline length.
func (c *Coach) Months() int { return c.months }

// Roadmap asks for a week-by-week plan from currentSkills to role.
func (c *Coach) Roadmap(ctx context.Context, currentSkills, missingSkills []string, role string) Roadmap {
	if c.generator == nil {
		return roadmapError(errNoGenerator)
	}

	prompt := BuildRoadmapPrompt(currentSkills, missingSkills, role, c.months)

	start := time.Now()
	content, err := c.generator.Generate(ctx, prompt, roadmapTemperature)
	if err != nil {
		c.logger.Warn("roadmap generation failed",
			zap.String("target_role", role),
			zap.String("reason", ai.ReasonOf(err)),
			zap.Error(err),
		)
		return roadmapError(err)
	}

	c.logger.Debug("roadmap generated", zap.String("target_role", role), zap.Duration("took", time.Since(start)))

	content = strings.TrimSpace(content)
	return Roadmap{
		Status:      StatusSuccess,
		TargetRole:  role,
		Timeline:    fmt.Sprintf("%d months", c.months),
		Roadmap:     &content,
		SourceModel: ai.ModelOf(c.generator),
	}
}

// Optimize rewrites one résumé section for the job description.
func (c *Coach) Optimize(ctx context.Context, resumeText, jobDescription, target string) Optimization {
	prompt, err := BuildOptimizePrompt(resumeText, jobDescription, target)
	if err != nil {
		return optimizationError(err)
	}
	if c.generator == nil {
		return optimizationError(errNoGenerator)
	}

	content, err := c.generator.Generate(ctx, prompt, optimizeTemperature)
	if err != nil {
		c.logger.Warn("section optimization failed",
			zap.String("optimization_target", target),
			zap.String("reason", ai.ReasonOf(err)),
			zap.Error(err),
		)
		return optimizationError(err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return optimizationError(ai.NewGenerationError(ai.ReasonEmpty, errors.New("generator returned an empty response")))
	}

	return Optimization{
		Status:             StatusSuccess,
		OptimizationTarget: target,
		OptimizedContent:   &content,
		SourceModel:        ai.ModelOf(c.generator),
	}
}

// BuildRoadmapPrompt renders the roadmap template.
func BuildRoadmapPrompt(currentSkills, missingSkills []string, role string, months int) string {
	current := "None listed"
	if len(currentSkills) > 0 {
		current = strings.Join(currentSkills, ", ")
	}
	missing := "None"
	first := "the missing skills"
	if len(missingSkills) > 0 {
		missing = strings.Join(missingSkills, ", ")
		first = missingSkills[0]
	}

	return strings.NewReplacer(
		"{{CURRENT_SKILLS}}", current,
		"{{TARGET_ROLE}}", role,
		"{{MISSING_SKILLS}}", missing,
		"{{FIRST_MISSING_SKILL}}", first,
		"{{MONTHS}}", strconv.Itoa(months),
	).Replace(roadmapTemplate)
}

// BuildOptimizePrompt renders the optimizer template for target.
func BuildOptimizePrompt(resumeText, jobDescription, target string) (string, error) {
	tp, ok := targetPrompts[target]
	if !ok {
		return "", fmt.Errorf("invalid optimization target %q, choose from %s", target, strings.Join(Targets, ", "))
	}

	return strings.NewReplacer(
		"{{TASK}}", strings.TrimSpace(tp.task),
		"{{RESUME_LABEL}}", tp.label,
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(optimizerTemplate), nil
}

func roadmapError(err error) Roadmap {
	return Roadmap{
		Status:  StatusError,
		Message: fmt.Sprintf("An error occurred while generating the roadmap: %v", err),
	}
}

func optimizationError(err error) Optimization {
	message := optimizeErrorMessage
	if ai.ReasonOf(err) == ai.ReasonSafety {
		message = safetyMessage
	}
	return Optimization{
		Status:       StatusError,
		Message:      message,
		ErrorDetails: err.Error(),
	}
}
