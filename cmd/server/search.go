package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <category> <query>",
	Short: "Run one search and print the records as JSON",
	Example: `  shelflog search book dune
  shelflog search music "abbey road"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.store.Close()

		records, err := a.service.Search(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		// Let the cache write land before the store is closed
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.service.Drain(ctx); err != nil {
			logger.Warn("cache write did not finish", "err", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}
