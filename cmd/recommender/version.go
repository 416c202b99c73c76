package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recommender/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("recommender " + version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
