package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/config"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/presentation"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/vim/command"
)

var (
	runText     string
	runKeys     string
	runSpaced   bool
	runStrict   bool
	runValidate bool
	runJSON     bool
)

// errRunFailed marks a strict run that stopped on a failing key.
var errRunFailed = errors.New("key sequence failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Feed keys to the editor without the TUI",
	Long: `Run a key sequence against text and print the resulting buffer.
Keys use Vim notation: "dwihello<Esc>" or, with --spaced, "d w i h <Esc>".
Without --text the buffer is read from stdin when it is piped.

Examples:
  vimgym run --text "hello world" --keys "wD"
  vimgym run --text "a b c" --keys "d w . ." --spaced --json
  vimgym run --text "abc" --keys "zq" --validate
  echo "a b c" | vimgym run --keys "dw"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		parse := command.ParseKeys
		if runSpaced {
			parse = command.ParseSequence
		}
		keys, err := parse(runKeys)
		if err != nil {
			return fmt.Errorf("parse keys: %w", err)
		}

		strict := runStrict
		if !cmd.Flags().Changed("strict") {
			strict = flags.New(loadFlags()).Enabled(flags.FlagStrictSequences)
		}

		text := runText
		if !cmd.Flags().Changed("text") {
			if piped, ok, err := pipedInput(cmd); err != nil {
				return err
			} else if ok {
				text = piped
			}
		}

		sim := simulator.New(text)
		if runValidate {
			ok, msg := sim.ValidateCommandSequence(keys)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errRunFailed
			}
			return nil
		}

		responses := sim.ExecuteCommandSequence(keys, strict)
		run := presentation.FromRun(sim, keys, responses)
		if err := presentation.NewFormatter(cmd.OutOrStdout(), runJSON).FormatRun(run); err != nil {
			return err
		}
		if strict && !run.Completed {
			return errRunFailed
		}
		return nil
	},
}

// loadFlags reads the flags section of the config without opening the
// database. A broken config leaves every flag at its default.
func loadFlags() map[string]bool {
	cfg, _, err := config.Load(newViper(), cfgFile)
	if err != nil {
		return nil
	}
	return cfg.Flags
}

func init() {
	runCmd.Flags().StringVar(&runText, "text", "", "initial buffer text")
	runCmd.Flags().StringVarP(&runKeys, "keys", "k", "", "keys to send")
	runCmd.Flags().BoolVar(&runSpaced, "spaced", false, "keys are space separated")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "stop at the first failing key and exit non-zero")
	runCmd.Flags().BoolVar(&runValidate, "validate", false, "only check that every key would succeed")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print JSON")
	_ = runCmd.MarkFlagRequired("keys")
	rootCmd.AddCommand(runCmd)
}
