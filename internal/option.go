package internal

import (
	"io"
	"os"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	console io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithConsole overrides where console logs go (stdout by default). The MCP
// stdio transport owns stdout, so that command logs to stderr.
func WithConsole(w io.Writer) Option {
	return func(a *application) {
		a.console = w
	}
}

func newApplication(opts []Option) *application {
	app := &application{
		version: "dev",
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}
