package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/report"
	"github.com/pagewatch/pagewatch/internal/run"
)

func reportCmd() *cobra.Command {
	var (
		runID  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a recorded run to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(historyPath())
			if err != nil {
				return err
			}
			defer store.Close()

			var result *run.Run
			if runID == "" {
				result, err = store.LatestRun()
			} else {
				result, err = store.GetRun(runID)
			}
			if err != nil {
				return err
			}

			switch format {
			case "markdown", "md":
				fmt.Print(report.Markdown(result))
				return nil
			case "html":
				return report.HTML(os.Stdout, result)
			case "json":
				return report.JSON(os.Stdout, result)
			default:
				return fmt.Errorf("unknown format %q (want markdown, html or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID (defaults to the latest run)")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, html or json")
	return cmd
}
