// Package config loads the pagewatch.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pagewatch/pagewatch/internal/audit"
	"github.com/pagewatch/pagewatch/internal/browser"
)

// Page is one monitored page.
type Page struct {
	// Name is used verbatim as the baseline filename stem, so it should be
	// filesystem-safe ("home", "pricing").
	Name string `yaml:"name"`
	URL  string `yaml:"url"`

	// Budgets are optional per-page performance bounds.
	Budgets audit.Budgets `yaml:"budgets,omitempty"`
}

// Server configures the report server.
type Server struct {
	Addr string `yaml:"addr"`
}

// Logging configures the slog default handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full harness configuration. It is loaded once and passed
// into components at construction; nothing reads it from package state.
type Config struct {
	Pages []Page `yaml:"pages"`

	BaselineDir string `yaml:"baselineDir"`
	DataDir     string `yaml:"dataDir"`
	ReportDir   string `yaml:"reportDir"`

	Browser browser.Config `yaml:"browser"`
	Server  Server         `yaml:"server"`
	Logging Logging        `yaml:"logging"`

	// Schedule is a standard 5-field cron expression for watch mode.
	Schedule string `yaml:"schedule,omitempty"`
}

// DefaultConfig returns the defaults applied before the YAML is merged in.
func DefaultConfig() *Config {
	return &Config{
		BaselineDir: "baselines",
		DataDir:     "data",
		ReportDir:   "reports",
		Browser:     browser.DefaultConfig(),
		Server:      Server{Addr: "127.0.0.1:8710"},
		Logging:     Logging{Level: "info", Format: "text"},
		Schedule:    "0 6 * * *",
	}
}

// Load reads the config file at path, expanding ${ENV} references before
// parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for the mistakes that would
// otherwise surface as confusing failures mid-run.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("no pages configured")
	}
	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("page %d has no name", i)
		}
		if p.Name != filepath.Base(p.Name) {
			return fmt.Errorf("page name %q must not contain path separators", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate page name %q", p.Name)
		}
		seen[p.Name] = true
		if p.URL == "" {
			return fmt.Errorf("page %q has no url", p.Name)
		}
	}
	return nil
}

// FindPage returns the page config by name.
func (c *Config) FindPage(name string) (Page, bool) {
	for _, p := range c.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// SelectPages resolves CLI page arguments to configured pages. With no
// arguments every configured page is selected; an unknown name is an error.
func (c *Config) SelectPages(names []string) ([]Page, error) {
	if len(names) == 0 {
		return c.Pages, nil
	}
	pages := make([]Page, 0, len(names))
	for _, name := range names {
		p, ok := c.FindPage(name)
		if !ok {
			return nil, fmt.Errorf("unknown page %q", name)
		}
		pages = append(pages, p)
	}
	return pages, nil
}
