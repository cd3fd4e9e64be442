package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/presentation"
)

var lessonsJSON bool

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List modules and lessons",
	Long: `List every module and lesson with the learner's completion status.

Examples:
  vimgym lessons
  vimgym lessons --json | jq '.[].lessons[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnvironment(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer env.Close()

		dtos := presentation.FromModules(env.registry.Modules(), env.tracker)
		return presentation.NewFormatter(cmd.OutOrStdout(), lessonsJSON).FormatModules(dtos)
	},
}

func init() {
	lessonsCmd.Flags().BoolVar(&lessonsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(lessonsCmd)
}
