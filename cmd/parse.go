package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-fit/internal/report"
	"github.com/spigell/resume-fit/internal/resume"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract name, skills, organizations, education and experience from a resume",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		c := mustBuild(ctx, needs{parser: true})
		defer c.close()

		path, _ := cmd.Flags().GetString("resume")
		parsed := c.deps.Parser.Parse(ctx, readInput(c.logger, "resume", path))

		var out any = parsed
		if byCategory, _ := cmd.Flags().GetBool("by-category"); byCategory {
			out = categorized{Parsed: parsed, SkillsByCategory: c.skills.Group(parsed.Skills)}
		}

		if err := writeJSON(cmd, out); err != nil {
			c.logger.Fatal("writing the result", zap.Error(err))
		}
	},
}

// categorized extends the parse output with the skills grouped by taxonomy category.
type categorized struct {
	resume.Parsed
	SkillsByCategory map[string][]string `json:"skills_by_category"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Compare resume skills with job description skills",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		c := mustBuild(ctx, needs{parser: true, similarity: true})
		defer c.close()

		resumePath, _ := cmd.Flags().GetString("resume")
		jobPath, _ := cmd.Flags().GetString("job")

		analysis := report.Analyze(ctx, c.deps, readInput(c.logger, "resume", resumePath), readInput(c.logger, "job", jobPath))

		if err := writeJSON(cmd, analysis); err != nil {
			c.logger.Fatal("writing the result", zap.Error(err))
		}
	},
}

var atsCmd = &cobra.Command{
	Use:   "ats",
	Short: "Score a resume against a job description like an applicant tracking system",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		c := mustBuild(ctx, needs{ats: true})
		defer c.close()

		resumePath, _ := cmd.Flags().GetString("resume")
		jobPath, _ := cmd.Flags().GetString("job")

		result := c.deps.ATS.Score(readInput(c.logger, "resume", resumePath), readInput(c.logger, "job", jobPath))

		if err := writeJSON(cmd, result); err != nil {
			c.logger.Fatal("writing the result", zap.Error(err))
		}
	},
}

func init() {
	for _, cmd := range []*cobra.Command{parseCmd, matchCmd, atsCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringP("resume", "r", "", "resume text file, - reads stdin")
		cmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
	}
	parseCmd.Flags().Bool("by-category", false, "add the skills grouped by taxonomy category")

	for _, cmd := range []*cobra.Command{matchCmd, atsCmd} {
		cmd.Flags().String("job", "", "job description text file")
	}
}
