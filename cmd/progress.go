package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/presentation"
)

var progressJSON bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the learner's progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnvironment(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer env.Close()

		return presentation.NewFormatter(cmd.OutOrStdout(), progressJSON).FormatProgress(env.tracker.Summary())
	},
}

func init() {
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "print JSON")
	rootCmd.AddCommand(progressCmd)
}
