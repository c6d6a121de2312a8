package commands

import (
	"blog-admin/internal/auth"
	"fmt"
	"github.com/spf13/cobra"
	"time"
)

// TokenCmd issues a session token signed with the configured key, e.g. for scripted imports.
func TokenCmd(loadConfig configLoader) *cobra.Command {
	var (
		userId   uint
		username string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates a signed session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}

			token, expiresAt, err := auth.GenerateToken(cmd.Context(), auth.SettingsFromConfig(c), userId, username, roles)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().UintVar(&userId, "user-id", 0, "user id carried by the token")
	cmd.Flags().StringVar(&username, "username", "admin", "username carried by the token")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{"admin"}, "roles carried by the token")

	return cmd
}
