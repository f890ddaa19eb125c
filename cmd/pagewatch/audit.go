package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/report"
	"github.com/pagewatch/pagewatch/internal/run"
)

var errAuditFailed = fmt.Errorf("audit failed")

func auditCmd() *cobra.Command {
	var staticFile string

	cmd := &cobra.Command{
		Use:   "audit [pages...]",
		Short: "Audit pages against their stored baselines",
		Long: `Audit launches a browser, visits each configured page and compares the
extracted meta tags and JSON-LD against the stored baselines. On the first
run for a page the extraction becomes the baseline and the page passes.

With --static the HTML is read from a file instead of a live browser;
exactly one page must be named so the comparison knows which baseline to
use. Exits non-zero when any page drifted or errored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := cfg.SelectPages(args)
			if err != nil {
				return err
			}

			comparer := baseline.NewComparer(baseline.NewStore(cfg.BaselineDir))
			runner := run.NewRunner(cfg, comparer)

			var result *run.Run
			if staticFile != "" {
				if len(pages) != 1 {
					return fmt.Errorf("--static requires exactly one page argument")
				}
				result, err = auditStatic(runner, pages[0], staticFile)
			} else {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				result, err = runner.Run(ctx, pages)
			}
			if err != nil {
				return err
			}

			if err := recordRun(result); err != nil {
				return err
			}
			if err := writeReports(result); err != nil {
				return err
			}

			printSummary(result)
			if !result.Passed {
				return errAuditFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&staticFile, "static", "", "audit from an HTML file instead of a live browser")
	return cmd
}

func auditStatic(runner *run.Runner, page config.Page, path string) (*run.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result := &run.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	pr := runner.AuditHTML(page, f)
	result.Pages = append(result.Pages, *pr)
	result.FinishedAt = time.Now().UTC()
	result.Passed = pr.Passed
	return result, nil
}

func recordRun(result *run.Run) error {
	store, err := history.Open(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(result)
}

// writeReports drops the markdown and JSON renderings of a run into the
// report directory, named by run ID.
func writeReports(result *run.Run) error {
	if err := baseline.EnsureDir(cfg.ReportDir); err != nil {
		return err
	}

	mdPath := filepath.Join(cfg.ReportDir, result.ID+".md")
	if err := os.WriteFile(mdPath, []byte(report.Markdown(result)), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", mdPath, err)
	}

	jsonPath := filepath.Join(cfg.ReportDir, result.ID+".json")
	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("write report %s: %w", jsonPath, err)
	}
	defer f.Close()
	return report.JSON(f, result)
}

func printSummary(result *run.Run) {
	for _, p := range result.Pages {
		status := "PASS"
		if !p.Passed {
			status = "FAIL"
		}
		fmt.Printf("%-6s %s\n", status, p.Page)
	}
	fmt.Printf("run %s: %d page(s), report %s\n",
		result.ID, len(result.Pages), filepath.Join(cfg.ReportDir, result.ID+".md"))
}
