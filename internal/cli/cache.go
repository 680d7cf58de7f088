package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the feed and artifact cache",
		Long: `Fetched feeds and rendered pages are cached in ~/.cache/timegrid, or in
Redis when [cache] backend = "redis".`,
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

// cacheDir is cache.dir from the config, else the user cache directory.
func cacheDir(cc config.CacheConfig) (string, error) {
	if cc.Dir != "" {
		return config.ExpandHome(cc.Dir), nil
	}
	return cache.DefaultDir()
}

// cacheLocation describes where the configured backend keeps entries.
func cacheLocation(cc config.CacheConfig) (string, error) {
	switch cc.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", cc.RedisAddr, cc.RedisDB), nil
	case config.BackendNone:
		return "", errors.New(errors.ErrCodeUnsupported, "caching is disabled (backend is %q)", cc.Backend)
	}
	dir, err := cacheDir(cc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "resolve cache directory")
	}
	return dir, nil
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached feeds and rendered pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			where, err := cacheLocation(cfg.Cache)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendRedis {
				cfg.Cache.Dir = where
			}

			store := c.newCache(cmd.Context(), cfg.Cache, false)
			defer store.Close()
			clearer, ok := store.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeStorage, "cache at %s is unavailable", where)
			}

			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", where)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			where, err := cacheLocation(cfg.Cache)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), where)
			return nil
		},
	}
}
