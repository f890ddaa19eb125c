package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/logging"
)

var (
	cfgPath string
	cfg     *config.Config
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagewatch",
		Short: "SEO baseline regression harness",
		Long: `Pagewatch audits pages in a real browser, extracts meta tags and
JSON-LD structured data, and compares them field by field against stored
baselines. Drift shows up as a failing run with a per-field diff.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; real env vars win over file entries.
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "pagewatch.yaml", "path to config file")

	cmd.AddCommand(auditCmd())
	cmd.AddCommand(baselineCmd())
	cmd.AddCommand(reportCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(watchCmd())
	return cmd
}

func historyPath() string {
	return filepath.Join(cfg.DataDir, "pagewatch.db")
}
