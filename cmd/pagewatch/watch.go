package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/run"
	"github.com/pagewatch/pagewatch/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Audit on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(historyPath())
			if err != nil {
				return err
			}
			defer store.Close()

			comparer := baseline.NewComparer(baseline.NewStore(cfg.BaselineDir))
			runner := run.NewRunner(cfg, comparer)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watch.New(cfg, runner, store).Run(ctx)
		},
	}
}
