package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := c.Config.Cache.Backend
			if backend == config.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}

			store, _, err := c.Config.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open %s cache: %w", backend, err)
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared layout cache")
			printDetail("Backend: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where layouts are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, the server for remote ones.
func (c *CLI) cacheLocation() string {
	cc := c.Config.Cache
	switch cc.Backend {
	case config.BackendRedis:
		return "redis://" + cc.RedisAddr
	case config.BackendMongo:
		return cc.MongoURI + " (" + cc.MongoDatabase + "." + cc.MongoCollection + ")"
	case config.BackendNone:
		return "none"
	}
	if cc.Dir != "" {
		return cc.Dir
	}
	dir, err := config.CacheDir()
	if err != nil {
		return "none"
	}
	return dir
}
