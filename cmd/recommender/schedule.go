package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recommender/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Scrape and reindex on a cron schedule",
	Long:  "Runs scrape followed by index on schedule.cron. Runs never overlap.",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	idx, _, _ := a.buildIndex(store)
	job := schedule.RefreshJob(a.buildIngest(), idx)

	return schedule.New(a.cfg.Schedule.Cron, job, a.cfg.Schedule.RunOnStart, a.logger).Run(ctx)
}
