package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-fit/internal/skillgap"
)

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "List the skills a resume lacks for a target role",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		c := mustBuild(ctx, needs{parser: true, skillGap: true})
		defer c.close()

		path, _ := cmd.Flags().GetString("resume")
		text := readInput(c.logger, "resume", path)

		role, _ := cmd.Flags().GetString("role")
		if strings.TrimSpace(role) == "" && path != "-" && isTerminal(os.Stdin) {
			selected, err := selectRole(c.roles.Names())
			if err != nil {
				c.logger.Fatal("selecting a target role", zap.Error(err))
			}
			role = selected
		}

		result := c.deps.SkillGap.Analyze(c.deps.Parser.ParseSkills(text), role)
		if result.Status != skillgap.StatusSuccess {
			c.logger.Warn("skill gap analysis failed", zap.String("reason", result.Message))
		}

		if err := writeJSON(cmd, result); err != nil {
			c.logger.Fatal("writing the result", zap.Error(err))
		}
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles known to the role taxonomy",
	Run: func(cmd *cobra.Command, _ []string) {
		c := mustBuild(context.Background(), needs{skillGap: true})
		defer c.close()

		for _, name := range c.roles.Names() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				c.logger.Fatal("writing the result", zap.Error(err))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(gapCmd, rolesCmd)

	gapCmd.Flags().StringP("resume", "r", "", "resume text file, - reads stdin")
	gapCmd.Flags().String("role", "", "target role, see the roles command")
	gapCmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
}
