// Package ui renders search sessions: a plain-text renderer for pipes and
// one-shot commands, and an interactive bubbletea program for terminals.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Config configures session rendering.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	ShowURLs   bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithShowURLs prints each result's URL under its summary.
func WithShowURLs(show bool) ConfigOption {
	return func(c *Config) {
		c.ShowURLs = show
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:   output,
		ShowURLs: true,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if DetectNoColor() || !IsTTY(output) {
		cfg.NoColor = true
	}

	return cfg
}

// Interactive reports whether the TUI should be used. Plain output is chosen
// when forced, when output is not a terminal, or in CI.
func Interactive(cfg Config) bool {
	if cfg.ForcePlain {
		return false
	}
	if !IsTTY(cfg.Output) {
		return false
	}
	return !DetectCI()
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	// Check if it's a file that's a terminal
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
