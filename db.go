// Package db hands out engines and sessions for the configured database and
// reports whether it can be reached.
package db

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/TechXTT/dbload/pkg/config"
	"github.com/TechXTT/dbload/pkg/runtime"
)

// Provider creates engines and sessions from one immutable configuration.
// It is safe for concurrent use.
type Provider struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

// NewProvider binds a provider to cfg. An empty database URL falls back to
// config.DefaultDatabaseURL.
func NewProvider(cfg config.Config, opts ...Option) *Provider {
	if cfg.DB.URL == "" {
		cfg.DB.URL = config.DefaultDatabaseURL
	}
	p := &Provider{
		cfg:    cfg,
		logger: slog.Default(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns a copy of the provider's configuration.
func (p *Provider) Config() config.Config { return p.cfg }

// URL returns the configured database URL.
func (p *Provider) URL() string { return p.cfg.DB.URL }

// GetEngine builds a new engine for the configured URL. No connection is made
// until the engine is first used.
func (p *Provider) GetEngine() (*runtime.Engine, error) {
	e, err := runtime.Connect(p.cfg.DB.URL, runtime.PoolOptionsFrom(p.cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}
	p.logger.Debug("engine created", "driver", e.Driver(), "url", e.URL())
	return e, nil
}

// GetSession returns a new session bound to e, with autocommit and
// autoflush disabled.
func (p *Provider) GetSession(e *runtime.Engine) (*runtime.Session, error) {
	s, err := runtime.NewSession(e)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	p.logger.Debug("session opened", "session", s.ID().String())
	return s, nil
}

// InitializeDatabase checks that e can run SELECT 1 and writes one line with
// the outcome to the provider's output. It never fails; the result carries
// the cause when the database is unreachable.
func (p *Provider) InitializeDatabase(ctx context.Context, e *runtime.Engine) runtime.Connectivity {
	res := runtime.Check(ctx, e, p.cfg.DB.CheckTimeout, p.logger)
	if res.URL == "" {
		res.URL = p.cfg.DB.URL
	}
	fmt.Fprintln(p.out, res.Message())
	return res
}
