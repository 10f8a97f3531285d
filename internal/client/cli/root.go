package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamboard/internal/buildinfo"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

// Command builds a fresh command tree bound to a. The tree is rebuilt per
// command line so flag values never leak between shell commands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "teamboard",
		Short:         "Team bulletin board and task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          unknownCommand,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Parsed earlier by config.LoadConfig; declared so cobra accepts them.
	var (
		addr, dbPath, configPath string
		timeout                  int
	)
	root.PersistentFlags().StringVarP(&addr, "addr", "a", "", "address and port of the backend server")
	root.PersistentFlags().StringVarP(&dbPath, "local-db", "l", "", "local database path")
	root.PersistentFlags().IntVarP(&timeout, "timeout", "t", 0, "request timeout (in seconds)")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (JSON or YAML)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %s", common.ErrValidation, err)
	})

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.feedCmd(),
		a.postCmd(),
		a.replyCmd(),
		a.likeCmd(),
		a.deletePostCmd(),
		a.tasksCmd(),
		a.addTaskCmd(),
		a.deleteTaskCmd(),
		a.completionCmd("done", true),
		a.completionCmd("undone", false),
		a.profileCmd(),
		a.adminCmd(),
		a.importLegacyCmd(),
		a.shellCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  exactArgs(0),
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(a.out)
			},
		},
	)
	return root
}

func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unknown command %q, see %s --help", common.ErrValidation, args[0], cmd.CommandPath())
	}
	return nil
}

// exactArgs is cobra.ExactArgs with a message the user can act on.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: usage: %s", common.ErrValidation, cmd.UseLine())
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: usage: %s", common.ErrValidation, cmd.UseLine())
		}
		return nil
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
