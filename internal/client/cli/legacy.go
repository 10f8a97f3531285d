package cli

import (
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

// importLegacyCmd seeds the local profile values an older client kept for a
// user. They are read once, the next time that user signs in without a
// profile on the backend.
func (a *App) importLegacyCmd() *cobra.Command {
	var p metadata.LegacyProfile
	cmd := &cobra.Command{
		Use:   "import-legacy <user-id>",
		Short: "Store a pre-migration profile for a user on this machine",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Username == "" {
				return fmt.Errorf("%w: --name is required", common.ErrValidation)
			}
			if err := metadata.SaveLegacyProfile(cmd.Context(), a.local, args[0], p); err != nil {
				return err
			}
			a.printf("Legacy profile stored for %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Username, "name", "", "display name")
	cmd.Flags().StringVar(&p.AvatarColor, "color", "", "avatar colour")
	cmd.Flags().StringVar(&p.AvatarImage, "image", "", "avatar image key")
	return cmd
}
