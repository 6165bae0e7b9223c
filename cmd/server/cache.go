package main

import (
	"fmt"

	"github.com/shelflog/backend/internal/domain"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the search cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired entries from the configured cache store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg.Cache, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		purger, ok := store.(domain.CachePurger)
		if !ok {
			return fmt.Errorf("cache type %q does not support purging", cfg.Cache.Type)
		}
		removed, err := purger.PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
}
