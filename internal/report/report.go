// Package report assembles the complete résumé report out of the analysis
// components and the coaching collaborator.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/resume-fit/internal/ats"
	"github.com/spigell/resume-fit/internal/coach"
	"github.com/spigell/resume-fit/internal/logger"
	"github.com/spigell/resume-fit/internal/recommend"
	"github.com/spigell/resume-fit/internal/resume"
	"github.com/spigell/resume-fit/internal/similarity"
	"github.com/spigell/resume-fit/internal/skillgap"
	"go.uber.org/zap"
)

// Request is the input of a report.
type Request struct {
	ResumeText     string
	JobDescription string
	TargetRole     string
}

// JobDescription holds what was extracted from the job posting.
type JobDescription struct {
	Skills []string `json:"skills"`
}

// ResumeAnalysis is the resume_analysis section.
type ResumeAnalysis struct {
	Resume         resume.Parsed     `json:"resume"`
	JobDescription JobDescription    `json:"job_description"`
	Analysis       similarity.Result `json:"analysis"`
}

// Optimization is the resume_optimization section.
type Optimization struct {
	Summary    coach.Optimization `json:"summary"`
	Experience coach.Optimization `json:"experience"`
	Skills     coach.Optimization `json:"skills"`
}

// Report is the full output. Sections of disabled or skipped stages are nil.
type Report struct {
	ReportID              string                     `json:"report_id"`
	GeneratedAt           time.Time                  `json:"generated_at"`
	ResumeAnalysis        ResumeAnalysis             `json:"resume_analysis"`
	SkillGapAnalysis      *skillgap.Result           `json:"skill_gap_analysis,omitempty"`
	CareerRecommendations []recommend.Recommendation `json:"career_recommendations,omitempty"`
	ATSScore              *ats.Report                `json:"ats_score,omitempty"`
	CareerRoadmap         *coach.Roadmap             `json:"career_roadmap,omitempty"`
	ResumeOptimization    *Optimization              `json:"resume_optimization,omitempty"`
}

// Deps aggregates the components shared across all report stages. Only
// Parser and Similarity are required.
type Deps struct {
	Parser      *resume.Parser
	Similarity  *similarity.Scorer
	SkillGap    *skillgap.Analyzer
	Recommender *recommend.Recommender
	ATS         *ats.Scorer
	Coach       *coach.Coach
	Logger      *zap.Logger
}

// Options tunes the builder.
type Options struct {
	Recommendations int
	Now             func() time.Time
	NewID           func() string
}

// Builder runs the report stages.
type Builder struct {
	deps   Deps
	opts   Options
	stages []Stage
}

// NewBuilder creates a builder with the default stages. Stages whose
// component is missing from deps are disabled.
func NewBuilder(deps Deps, opts Options) *Builder {
	deps.Logger = logger.OrNop(deps.Logger)
	if opts.Recommendations <= 0 {
		opts.Recommendations = recommend.DefaultTopN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	b := &Builder{deps: deps, opts: opts, stages: DefaultStages(opts.Recommendations)}

	if deps.SkillGap == nil {
		b.Disable(StageSkillGap, "role taxonomy is not configured")
	}
	if deps.Recommender == nil {
		b.Disable(StageRecommendations, "recommender dataset is not configured")
	}
	if deps.ATS == nil {
		b.Disable(StageATS, "ats artifacts are not configured")
	}
	if deps.Coach == nil {
		b.Disable(StageRoadmap, "ai collaborator is disabled")
		b.Disable(StageOptimization, "ai collaborator is disabled")
	} else {
		for _, stage := range b.stages {
			if roadmap, ok := stage.(*roadmapStage); ok {
				roadmap.months = deps.Coach.Months()
			}
		}
	}

	return b
}

// Disable marks the named stage as disabled while keeping it in the list.
func (b *Builder) Disable(name, reason string) {
	DisableByName(b.stages, name, reason)
}

// Describe returns the status of every stage.
func (b *Builder) Describe() []StageStatus {
	return Describe(b.stages)
}

// Build runs every enabled stage and returns the report. It never fails:
// stage problems end up in the affected section.
func (b *Builder) Build(ctx context.Context, req Request) *Report {
	rep := &Report{
		ReportID:    b.opts.NewID(),
		GeneratedAt: b.opts.Now().UTC(),
	}

	log := logger.WithFields(b.deps.Logger, zap.String(logger.FieldReportID, rep.ReportID))
	start := time.Now()

	Run(ctx, b.deps, b.stages, &State{Request: req, Report: rep})

	log.Info("report built",
		zap.Int("score", rep.ResumeAnalysis.Analysis.Score),
		zap.String("match_level", rep.ResumeAnalysis.Analysis.MatchLevel),
		zap.Duration("took", time.Since(start)),
	)

	return rep
}

// Analyze produces the resume_analysis section on its own.
func Analyze(ctx context.Context, deps Deps, resumeText, jobDescription string) ResumeAnalysis {
	parsed := deps.Parser.Parse(ctx, resumeText)
	jobSkills := deps.Parser.ParseSkills(jobDescription)

	return ResumeAnalysis{
		Resume:         parsed,
		JobDescription: JobDescription{Skills: jobSkills},
		Analysis:       deps.Similarity.Score(ctx, parsed.Skills, jobSkills),
	}
}
