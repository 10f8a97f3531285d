package cli

import (
	"github.com/dmitrijs2005/teamboard/internal/cryptox"
	"github.com/spf13/cobra"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptIfEmpty returns value, or asks for it when it is empty.
func (a *App) promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// readPasswordString asks for a password and wipes the read buffer.
func (a *App) readPasswordString(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer cryptox.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) registerCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with an allow-listed email address",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.promptIfEmpty(email, "Enter email"); err != nil {
				return err
			}
			if name, err = a.promptIfEmpty(name, "Enter display name"); err != nil {
				return err
			}
			password, err := a.readPasswordString("Enter password")
			if err != nil {
				return err
			}

			s, err := a.sessions.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			a.printf("Welcome, %s!\n", s.Profile.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.promptIfEmpty(email, "Enter email"); err != nil {
				return err
			}
			password, err := a.readPasswordString("Enter password")
			if err != nil {
				return err
			}

			s, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.printf("Signed in as %s\n", displayName(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored login",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if err := a.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			a.printProfile(s)
			return nil
		},
	}
}
