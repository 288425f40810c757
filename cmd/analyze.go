package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-fit/internal/report"
)

const promptNoRole = "(no target role)"

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the full report for a resume and a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume text file, - reads stdin")
	analyzeCmd.Flags().String("job", "", "job description text file")
	analyzeCmd.Flags().String("role", "", "target role for the skill gap and the roadmap")
	analyzeCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().Bool("no-prompt", false, "never ask for the target role interactively")
	analyzeCmd.Flags().StringSlice("skip", nil, "report stages to skip, e.g. career_roadmap,resume_optimization")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	c := mustBuild(ctx, needs{
		parser:      true,
		similarity:  true,
		skillGap:    true,
		ats:         true,
		recommender: true,
		coach:       true,
	})
	defer c.close()

	l := c.logger
	resumePath, _ := cmd.Flags().GetString("resume")
	jobPath, _ := cmd.Flags().GetString("job")

	req := report.Request{
		ResumeText:     readInput(l, "resume", resumePath),
		JobDescription: readInput(l, "job", jobPath),
	}

	req.TargetRole, _ = cmd.Flags().GetString("role")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	if strings.TrimSpace(req.TargetRole) == "" && !noPrompt && resumePath != "-" && jobPath != "-" && isTerminal(os.Stdin) {
		role, err := selectRole(c.roles.Names())
		if err != nil {
			l.Fatal("selecting a target role", zap.Error(err))
		}
		req.TargetRole = role
	}

	builder := report.NewBuilder(c.deps, report.Options{Recommendations: c.config.Matching.Recommendations})

	skip, _ := cmd.Flags().GetStringSlice("skip")
	for _, name := range skip {
		builder.Disable(strings.TrimSpace(name), "skip requested via flag")
	}

	l.Debug("report stages", zap.Any("stages", builder.Describe()))
	l.Info("starting the analysis", zap.String("version", version), zap.String("target_role", req.TargetRole))

	rep := builder.Build(ctx, req)

	if err := writeJSON(cmd, rep); err != nil {
		l.Fatal("writing the report", zap.Error(err))
	}
}

// selectRole offers the known roles. Choosing the empty entry or aborting
// with Ctrl+C leaves the role empty.
func selectRole(roles []string) (string, error) {
	prompt := promptui.Select{
		Label: "Choose a target role and press ENTER",
		Items: append([]string{promptNoRole}, roles...),
		Size:  10,
	}

	_, selected, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if selected == promptNoRole {
		return "", nil
	}
	return selected, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
