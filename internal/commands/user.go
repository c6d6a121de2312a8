package commands

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/database"
	"blog-admin/internal/environment"
	"blog-admin/internal/logging"
	"blog-admin/internal/models"
	"fmt"
	"github.com/spf13/cobra"
)

func UserCmd(loadConfig configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manages the users allowed to log in",
	}

	cmd.AddCommand(userCreateCmd(loadConfig))
	return cmd
}

func userCreateCmd(loadConfig configLoader) *cobra.Command {
	var user models.User

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a user with a bcrypt hashed password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user.Role != models.RoleAdmin && user.Role != models.RoleUser {
				return fmt.Errorf("unknown role %q", user.Role)
			}

			c, err := loadConfig()
			if err != nil {
				return err
			}

			logger := logging.InitLogging(c)
			db, err := database.InitDatabase(c, logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			service := &auth.AuthService{Env: environment.Environment(&database.GormRepository{DB: db}, logger)}
			if err = service.RegisterUser(cmd.Context(), &user); err != nil {
				return fmt.Errorf("failed to create user %s: %w", user.Username, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.Username, "username", "", "login name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().StringVar(&user.Password, "password", "", "password in plain text; only its hash is stored")
	cmd.Flags().StringVar(&user.Role, "role", models.RoleUser, "role of the user (admin or user)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
