package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
		Args:  unknownCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		a.emailListCmd("allowed", "Manage the registration allow-list", emailListOps{
			list:   a.sessions.GetAllowedEmails,
			add:    a.sessions.AddAllowedEmail,
			remove: a.sessions.RemoveAllowedEmail,
		}),
		a.emailListCmd("admins", "Manage the administrator list", emailListOps{
			list:   a.sessions.GetAdminEmails,
			add:    a.sessions.AddAdminEmail,
			remove: a.sessions.RemoveAdminEmail,
		}),
		a.usersCmd(),
		a.deleteUserCmd(),
		a.deleteAllPostsCmd(),
		a.progressCmd(),
	)
	return cmd
}

type emailListOps struct {
	list   func(ctx context.Context) ([]*models.EmailEntry, error)
	add    func(ctx context.Context, email string) (*models.EmailEntry, error)
	remove func(ctx context.Context, email string) error
}

func (a *App) emailListCmd(use, short string, ops emailListOps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := ops.list(cmd.Context())
			if err != nil {
				return err
			}
			a.printEmails(entries)
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <email>",
			Short: "Add an address",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := ops.add(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				a.printf("Added %s\n", e.Email)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <email>",
			Short: "Remove an address",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ops.remove(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
					return err
				}
				a.printf("Removed %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func (a *App) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every user profile",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.sessions.GetAllUsers(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				role := ""
				if ok, err := a.sessions.IsAdminEmail(cmd.Context(), u.Email); err == nil && ok {
					role = "  (admin)"
				}
				a.printf("%s  %s  %s%s\n", u.ID, u.Email, u.Username, role)
			}
			return nil
		},
	}
}

// confirm asks the user to type yes unless force is set.
func (a *App) confirm(force bool, question string) error {
	if force {
		return nil
	}
	answer, err := getSimpleText(a.reader, question+" Type yes to continue", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		return fmt.Errorf("%w: cancelled", common.ErrValidation)
	}
	return nil
}

func (a *App) deleteUserCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user's posts, the replies under them and the profile",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.sessions.IsAdmin() {
				_, err := a.requireSession()
				if err != nil {
					return err
				}
				return common.ErrForbidden
			}
			if err := a.confirm(yes, fmt.Sprintf("Delete user %s and all of their posts?", args[0])); err != nil {
				return err
			}
			if err := a.sessions.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")
	return cmd
}

func (a *App) deleteAllPostsCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all-posts",
		Short: "Delete every post and reply",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sessions.IsAdmin() {
				_, err := a.requireSession()
				if err != nil {
					return err
				}
				return common.ErrForbidden
			}
			if err := a.confirm(yes, "Delete every post?"); err != nil {
				return err
			}
			if err := a.sessions.DeleteAllPosts(cmd.Context()); err != nil {
				return err
			}
			a.printf("All posts deleted\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")
	return cmd
}

func (a *App) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Share of allow-listed members who posted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.syncFeed(cmd.Context()); err != nil {
				return err
			}
			p, err := a.feed.WeeklyProgress(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%d%% (%d of %d members posted)\n", p.Percent, p.Submitted, p.Total)
			return nil
		},
	}
}
