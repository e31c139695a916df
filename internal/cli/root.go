// Package cli holds the cobra commands of the letters binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/config"
	"github.com/iliyamo/letters/internal/logging"
)

// NewRootCommand builds the command tree. Subcommands load the configuration
// lazily so that --help works without a config file.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "letters",
		Short:         "Blogging backend for articles, series, categories and tags",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the TOML config file (default ./"+config.DefaultFile+")")

	load := func() (config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		logging.Init(cfg.Server.LogLevel, cfg.Server.LogPretty)
		return cfg, nil
	}

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newCreateAdminCommand(load),
		newFakeCommand(load),
		newConsumeCommand(load),
		newUsersCommand(load),
	)
	return root
}

type configLoader func() (config.Config, error)
