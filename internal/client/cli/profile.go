package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if _, err := a.sessions.FetchProfile(cmd.Context()); err != nil {
				return err
			}
			a.printProfile(a.sessions.Current())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "name <display name...>",
			Short: "Change your display name on the profile and on every post",
			Args:  minArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.sessions.UpdateUsername(cmd.Context(), joinArgs(args)); err != nil {
					return err
				}
				a.printf("Display name updated\n")
				return nil
			},
		},
		&cobra.Command{
			Use:   "color <#rrggbb>",
			Short: "Change your avatar colour",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.sessions.UpdateAvatarColor(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.printf("Avatar colour updated\n")
				return nil
			},
		},
		a.profileImageCmd(),
		&cobra.Command{
			Use:   "email <new email>",
			Short: "Change your sign-in email",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				err := a.withReauth(cmd.Context(), func() error {
					return a.sessions.UpdateEmail(cmd.Context(), args[0])
				})
				if err != nil {
					return err
				}
				a.printf("Email updated\n")
				return nil
			},
		},
		&cobra.Command{
			Use:   "password",
			Short: "Change your password",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := a.requireSession(); err != nil {
					return err
				}
				password, err := a.readPasswordString("New password")
				if err != nil {
					return err
				}
				err = a.withReauth(cmd.Context(), func() error {
					return a.sessions.UpdatePassword(cmd.Context(), password)
				})
				if err != nil {
					return err
				}
				a.printf("Password updated\n")
				return nil
			},
		},
	)
	return cmd
}

func (a *App) profileImageCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "image [file]",
		Short: "Upload a new avatar image, or remove it with --clear",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case remove && len(args) == 0:
				if err := a.sessions.UpdateAvatarImage(cmd.Context(), ""); err != nil {
					return err
				}
				a.printf("Avatar image removed\n")
				return nil
			case remove || len(args) != 1:
				return fmt.Errorf("%w: usage: %s", common.ErrValidation, cmd.UseLine())
			}

			if _, err := a.requireSession(); err != nil {
				return err
			}
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", common.ErrValidation, err)
			}
			key, err := a.sessions.UploadAvatarImage(cmd.Context(), http.DetectContentType(body), body)
			if err != nil {
				return err
			}
			a.printf("Avatar image uploaded as %s\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the avatar image")
	return cmd
}

// withReauth runs change and, when the backend asks for the current
// password first, prompts for it and finishes the change. A failed or
// abandoned prompt drops the pending change.
func (a *App) withReauth(ctx context.Context, change func() error) error {
	err := change()
	if !errors.Is(err, common.ErrReauthenticationRequired) {
		return err
	}

	a.printf("%s\n", common.UserMessage(err))
	password, err := a.readPasswordString("Current password")
	if err != nil {
		a.sessions.CancelCredentialChange()
		return err
	}
	if err := a.sessions.Reauthenticate(ctx, password); err != nil {
		a.sessions.CancelCredentialChange()
		return err
	}
	return nil
}
