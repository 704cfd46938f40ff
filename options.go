package db

import (
	"io"
	"log/slog"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOutput sets where InitializeDatabase writes its status line. Defaults
// to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Provider) {
		if w != nil {
			p.out = w
		}
	}
}
