package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/config"
	"github.com/zjrosen/vimgym/internal/mode/shared"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.users.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Username, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learners",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnvironment(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.Close()

		users, err := env.users.List(cmd.Context())
		if err != nil {
			return err
		}
		current := env.username()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "\tUSER\tSESSIONS\tLAST LOGIN")
		for _, u := range users {
			mark := ""
			if u.Username == current {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", mark, u.Username, u.Statistics.SessionsCompleted,
				shared.RelativeTime(u.LastLogin, time.Now()))
		}
		return w.Flush()
	},
}

var userSwitchCmd = &cobra.Command{
	Use:   "switch NAME",
	Short: "Make NAME the default learner",
	Long:  "Record NAME as the configured user. The learner must exist; see 'vimgym user create'.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.users.Login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path := env.cfgPath
		if path == "" {
			path = config.UserPath()
		}
		if path == "" {
			return errors.New("no config file to record the user in")
		}
		if err := config.SaveUser(path, u.Username); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now learning as %s\n", u.Username)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd, userListCmd, userSwitchCmd)
	rootCmd.AddCommand(userCmd)
}
