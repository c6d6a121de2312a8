package commands

import (
	"blog-admin/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.json"

// NewRootCmd assembles the blog command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "blog",
		Short:         "Blog admin service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path of the JSON configuration file")

	loadConfig := func() (*config.Configuration, error) {
		return config.InitConfig(configPath)
	}

	rootCmd.AddCommand(
		ServeCmd(loadConfig),
		TokenCmd(loadConfig),
		UserCmd(loadConfig),
		HashPasswordCmd(),
	)

	return rootCmd
}

type configLoader func() (*config.Configuration, error)
