package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs and HTML reports over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(historyPath())
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, cfgPath, store).Run(ctx)
		},
	}
}
