package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/mode"
)

var (
	practiceText string
	practiceFile string
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Open the free practice editor",
	Long: `Open the practice editor on sample text, on --text, or on the
contents of --file. Nothing is graded; the side panel suggests better
ways to do what you just did.

Examples:
  vimgym practice
  vimgym practice --text "hello world"
  vimgym practice --file main.go`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		text := practiceText
		if practiceFile != "" {
			data, err := os.ReadFile(practiceFile) //nolint:gosec // the user picks the file to practice on
			if err != nil {
				return fmt.Errorf("read practice file: %w", err)
			}
			text = string(data)
		}
		return runTUI(cmd.Context(), mode.ModePractice, text)
	},
}

func init() {
	practiceCmd.Flags().StringVarP(&practiceText, "text", "t", "", "text to edit")
	practiceCmd.Flags().StringVarP(&practiceFile, "file", "f", "", "file whose contents to edit (never written back)")
	practiceCmd.MarkFlagsMutuallyExclusive("text", "file")
	rootCmd.AddCommand(practiceCmd)
}
