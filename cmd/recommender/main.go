// Command recommender scrapes the assessment catalog, indexes it and serves
// recommendations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFlag string

var rootCmd = &cobra.Command{
	Use:   "recommender",
	Short: "Assessment recommender",
	Long: "Scrapes the public assessment catalog into a snapshot, embeds it into a vector index " +
		"and serves POST /recommend over HTTP.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "",
		"config environment: local, dev, prod (default: $ENV or local)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
