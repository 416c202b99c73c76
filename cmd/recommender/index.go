package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog snapshot and rebuild the vector index",
	Long: "Loads the catalog snapshot, drops the existing index and recreates it from scratch. " +
		"Fails if the snapshot is missing, not a list, or has no valid records.",
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexIn string

func init() {
	indexCmd.Flags().StringVarP(&indexIn, "in", "i", "", "snapshot path (default: catalog.path from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	path := a.cfg.Catalog.Path
	if indexIn != "" {
		path = indexIn
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, repo, _ := a.buildIndex(store)
	rep, err := svc.BuildFromSnapshot(ctx, path)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}

	fmt.Printf("Indexed %d records (%d skipped) into %s in %s\n",
		rep.Indexed, rep.Skipped, repo.IndexName(), rep.Duration.Round(time.Millisecond))
	return nil
}
