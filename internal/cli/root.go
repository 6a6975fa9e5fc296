package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/buildinfo"
	"github.com/matzehuels/archlayout/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The --config file is loaded in PersistentPreRunE, so every subcommand sees
// c.Config with file settings applied; command flags override them.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "archlayout lays out ArchiMate diagrams",
		Long:         `archlayout arranges ArchiMate elements into nested layer groups and computes positions for every node with a layered graph layout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/archlayout/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
