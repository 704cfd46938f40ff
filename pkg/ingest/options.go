package ingest

import (
	"io"
	"log/slog"

	"github.com/TechXTT/dbload/internal/plugin"
)

type options struct {
	logger   *slog.Logger
	hooks    plugin.Hooks
	registry Registry
	rules    map[string]Rule
	workers  int
}

// Option configures a Validator, Persister or Loader. Each component
// ignores options it has no use for.
type Option func(*options)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHooks installs lifecycle hooks on the loader.
func WithHooks(h plugin.Hooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// WithRegistry replaces the loader's readers.
func WithRegistry(r Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithRules replaces the per-table validation rules.
func WithRules(rules map[string]Rule) Option {
	return func(o *options) {
		if rules != nil {
			o.rules = rules
		}
	}
}

// WithWorkers bounds how many files are read and validated at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		hooks:    plugin.Nop{},
		registry: DefaultRegistry(','),
		rules:    DefaultRules(),
		workers:  4,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
