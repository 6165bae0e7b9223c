package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd runs the HTTP server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "shelflog",
	Short: "Search movies, shows, anime, manga, games, books and music",
	Long: `Shelflog answers category searches by fanning out to one external
catalog per category (OMDb, Jikan, MangaDex, RAWG, Open Library, Spotify)
and caching normalized results for a week.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, searchCmd, cacheCmd)
}
