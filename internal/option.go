package internal

import (
	"io"

	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mcp    bool
	stdout io.Writer
	stderr io.Writer
	files  migration.FileChecker
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCP serves the MCP tools on stdio instead of running a migration.
func WithMCP() Option {
	return func(a *application) {
		a.mcp = true
	}
}

// WithOutput redirects the migration output and the logs.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithFileChecker replaces the file existence checker.
func WithFileChecker(files migration.FileChecker) Option {
	return func(a *application) {
		a.files = files
	}
}
