package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-fit/internal/coach"
	"github.com/spigell/resume-fit/internal/logger"
)

// Stage names, equal to the report section they fill.
const (
	StageResumeAnalysis  = "resume_analysis"
	StageSkillGap        = "skill_gap_analysis"
	StageRecommendations = "career_recommendations"
	StageATS             = "ats_score"
	StageRoadmap         = "career_roadmap"
	StageOptimization    = "resume_optimization"
)

// Stage is a single step of the report pipeline.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, st *State) (Step, error)
}

// State is shared by the stages of one report. Stages running concurrently
// write disjoint sections.
type State struct {
	Request Request
	Report  *Report
}

// Step describes the result of executing a stage.
type Step struct {
	Skipped bool
	Reason  string
}

// StageStatus represents runtime information about a stage.
type StageStatus struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// concurrentStage is implemented by stages that may run alongside their
// neighbours once every sequential stage before them has finished.
type concurrentStage interface {
	Concurrent() bool
}

type statusProvider interface {
	Status() StageStatus
}

// DefaultStages returns the report stages in section order.
func DefaultStages(recommendations int) []Stage {
	return []Stage{
		&resumeAnalysisStage{},
		&skillGapStage{},
		&recommendationsStage{topN: recommendations},
		&atsStage{},
		&roadmapStage{},
		&optimizationStage{},
	}
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Run executes the stages in order. Consecutive concurrent stages are
// started together and awaited before the next sequential stage.
func Run(ctx context.Context, deps Deps, stages []Stage, st *State) {
	log := logger.OrNop(deps.Logger)
	reportID := ""
	if st.Report != nil {
		reportID = st.Report.ReportID
	}

	var batch []Stage
	flush := func() {
		if len(batch) == 0 {
			return
		}
		g, gCtx := errgroup.WithContext(ctx)
		for _, stage := range batch {
			g.Go(func() error {
				apply(gCtx, deps, stage, st, logger.ForStage(log, reportID, stage.Name()))
				return nil
			})
		}
		_ = g.Wait()
		batch = nil
	}

	for _, stage := range stages {
		if !stage.IsEnabled() {
			log.Debug("report stage disabled", zap.String("name", stage.Name()))
			continue
		}

		if c, ok := stage.(concurrentStage); ok && c.Concurrent() {
			batch = append(batch, stage)
			continue
		}

		flush()
		apply(ctx, deps, stage, st, logger.ForStage(log, reportID, stage.Name()))
	}
	flush()
}

func apply(ctx context.Context, deps Deps, stage Stage, st *State, log *zap.Logger) {
	start := time.Now()
	info, err := stage.Apply(ctx, deps, st)

	status := "ok"
	switch {
	case err != nil:
		status = "failed"
	case info.Skipped:
		status = "skipped"
	}

	fields := []zap.Field{
		zap.String("name", stage.Name()),
		zap.String("status", status),
		zap.Duration("took", time.Since(start)),
	}
	if info.Reason != "" {
		fields = append(fields, zap.String("reason", info.Reason))
	}

	if err != nil {
		log.Warn("report stage", append(fields, zap.Error(err))...)
		return
	}
	log.Info("report stage", fields...)
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []StageStatus {
	statuses := make([]StageStatus, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, StageStatus{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the disabled flag shared by every stage.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) StageStatus {
	return StageStatus{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}

type resumeAnalysisStage struct{ toggle }

func (s *resumeAnalysisStage) Name() string { return StageResumeAnalysis }

func (s *resumeAnalysisStage) Apply(ctx context.Context, deps Deps, st *State) (Step, error) {
	if deps.Parser == nil || deps.Similarity == nil {
		return Step{}, fmt.Errorf("parser and similarity scorer are required")
	}
	st.Report.ResumeAnalysis = Analyze(ctx, deps, st.Request.ResumeText, st.Request.JobDescription)
	return Step{}, nil
}

func (s *resumeAnalysisStage) Status() StageStatus { return s.status(s.Name(), nil) }

type skillGapStage struct{ toggle }

func (s *skillGapStage) Name() string { return StageSkillGap }

func (s *skillGapStage) Apply(_ context.Context, deps Deps, st *State) (Step, error) {
	if strings.TrimSpace(st.Request.TargetRole) == "" {
		return Step{Skipped: true, Reason: "no target role"}, nil
	}
	result := deps.SkillGap.Analyze(st.Report.ResumeAnalysis.Resume.Skills, st.Request.TargetRole)
	st.Report.SkillGapAnalysis = &result
	return Step{}, nil
}

func (s *skillGapStage) Status() StageStatus { return s.status(s.Name(), nil) }

type recommendationsStage struct {
	toggle
	topN int
}

func (s *recommendationsStage) Name() string { return StageRecommendations }

func (s *recommendationsStage) Apply(_ context.Context, deps Deps, st *State) (Step, error) {
	st.Report.CareerRecommendations = deps.Recommender.Recommend(st.Report.ResumeAnalysis.Resume.Skills, s.topN)
	return Step{}, nil
}

func (s *recommendationsStage) Status() StageStatus {
	return s.status(s.Name(), map[string]string{"top_n": strconv.Itoa(s.topN)})
}

type atsStage struct{ toggle }

func (s *atsStage) Name() string { return StageATS }

func (s *atsStage) Apply(_ context.Context, deps Deps, st *State) (Step, error) {
	result := deps.ATS.Score(st.Request.ResumeText, st.Request.JobDescription)
	st.Report.ATSScore = &result
	return Step{}, nil
}

func (s *atsStage) Status() StageStatus { return s.status(s.Name(), nil) }

type roadmapStage struct {
	toggle
	months int
}

func (s *roadmapStage) Name() string { return StageRoadmap }

func (s *roadmapStage) Concurrent() bool { return true }

func (s *roadmapStage) Apply(ctx context.Context, deps Deps, st *State) (Step, error) {
	role := strings.TrimSpace(st.Request.TargetRole)
	if role == "" {
		return Step{Skipped: true, Reason: "no target role"}, nil
	}

	analysis := st.Report.ResumeAnalysis
	result := deps.Coach.Roadmap(ctx, analysis.Resume.Skills, analysis.Analysis.MissingSkills, role)
	st.Report.CareerRoadmap = &result

	if result.Status != coach.StatusSuccess {
		return Step{Reason: result.Message}, nil
	}
	return Step{}, nil
}

func (s *roadmapStage) Status() StageStatus {
	if s.months <= 0 {
		return s.status(s.Name(), nil)
	}
	return s.status(s.Name(), map[string]string{"months": strconv.Itoa(s.months)})
}

type optimizationStage struct{ toggle }

func (s *optimizationStage) Name() string { return StageOptimization }

func (s *optimizationStage) Concurrent() bool { return true }

func (s *optimizationStage) Apply(ctx context.Context, deps Deps, st *State) (Step, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]coach.Optimization, len(coach.Targets))
	)

	g, gCtx := errgroup.WithContext(ctx)
	for _, target := range coach.Targets {
		g.Go(func() error {
			result := deps.Coach.Optimize(gCtx, st.Request.ResumeText, st.Request.JobDescription, target)
			mu.Lock()
			results[target] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	st.Report.ResumeOptimization = &Optimization{
		Summary:    results[coach.TargetSummary],
		Experience: results[coach.TargetExperience],
		Skills:     results[coach.TargetSkills],
	}

	failed := make([]string, 0, len(coach.Targets))
	for _, target := range coach.Targets {
		if results[target].Status != coach.StatusSuccess {
			failed = append(failed, target)
		}
	}
	if len(failed) > 0 {
		return Step{Reason: "failed targets: " + strings.Join(failed, ", ")}, nil
	}
	return Step{}, nil
}

func (s *optimizationStage) Status() StageStatus {
	return s.status(s.Name(), map[string]string{"targets": strings.Join(coach.Targets, ",")})
}
