package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crossword",
	Short: "Crossword puzzle generator and collaborative solving server",
	Long: `crossword lays out word lists as crossword grids.

Run "crossword serve" for the HTTP API, or "crossword gen" to lay out a
word list from the command line.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
