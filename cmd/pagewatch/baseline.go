package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/run"
)

func baselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage stored baselines",
	}
	cmd.AddCommand(baselineUpdateCmd())
	return cmd
}

func baselineUpdateCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "update [pages...]",
		Short: "Overwrite baselines with a fresh extraction",
		Long: `Update visits each page and stores the current extraction as the new
baseline, skipping comparison. Use after an intentional content change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := cfg.SelectPages(args)
			if err != nil {
				return err
			}

			kinds := []baseline.Kind{baseline.KindMetaTags, baseline.KindJSONLD}
			if kindFlag != "" {
				kind := baseline.Kind(kindFlag)
				if !kind.Valid() {
					return fmt.Errorf("unknown kind %q (want %q or %q)",
						kindFlag, baseline.KindMetaTags, baseline.KindJSONLD)
				}
				kinds = []baseline.Kind{kind}
			}

			comparer := baseline.NewComparer(baseline.NewStore(cfg.BaselineDir))
			runner := run.NewRunner(cfg, comparer)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runner.UpdateBaselines(ctx, pages, kinds); err != nil {
				return err
			}
			fmt.Printf("updated %d page(s)\n", len(pages))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "limit to one baseline kind (meta-tags or json-ld)")
	return cmd
}
