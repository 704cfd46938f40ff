package runtime

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/TechXTT/dbload/pkg/config"
)

// PoolOptions are applied to the engine's pool. Zero values keep the
// database/sql defaults; a negative MaxIdleConns keeps no idle connections.
// In-memory sqlite engines ignore the connection lifetimes and always keep
// their single connection idle, since closing it discards the database.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// BusyTimeout becomes the busy_timeout pragma on sqlite connections.
	BusyTimeout time.Duration
}

// PoolOptionsFrom copies the pool settings out of the database config.
func PoolOptionsFrom(cfg config.Database) PoolOptions {
	return PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		BusyTimeout:     cfg.BusyTimeout,
	}
}

// Engine is a configured, reusable handle on one database and its pool.
// It is safe for concurrent use. Connections are opened on first use.
type Engine struct {
	db     *sqlx.DB
	url    string
	target config.Target
	// pinned engines run on a single connection.
	pinned bool
}

// Connect builds an engine for a database URL. It performs no I/O.
func Connect(url string, opts PoolOptions) (*Engine, error) {
	target, err := config.ParseURL(url)
	if err != nil {
		return nil, err
	}
	dsn := target.DSN
	if target.Driver == config.DriverSQLite {
		dsn = sqliteDSN(target, opts.BusyTimeout)
	}
	db, err := sqlx.Open(target.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s engine: %w", target.Driver, err)
	}
	// every connection to :memory: would see its own empty database
	pinned := target.Path == ":memory:"
	applyPool(db.DB, opts, pinned)
	return &Engine{db: db, url: url, target: target, pinned: pinned}, nil
}

// NewEngine wraps an already opened pool. driverName selects the placeholder
// style used when rebinding session statements.
func NewEngine(db *sql.DB, driverName, url string) *Engine {
	return &Engine{
		db:     sqlx.NewDb(db, driverName),
		url:    url,
		target: config.Target{Driver: driverName},
	}
}

// URL returns the database URL the engine was built from.
func (e *Engine) URL() string { return e.url }

// Driver returns the database/sql driver name.
func (e *Engine) Driver() string { return e.target.Driver }

// Target returns the resolved driver target.
func (e *Engine) Target() config.Target { return e.target }

// DB exposes the underlying pool.
func (e *Engine) DB() *sqlx.DB { return e.db }

// Rebind rewrites '?' placeholders for the engine's driver.
func (e *Engine) Rebind(query string) string { return e.db.Rebind(query) }

// Close releases the pool. Sessions bound to the engine fail afterwards.
func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) valid() bool { return e != nil && e.db != nil }

func applyPool(db *sql.DB, opts PoolOptions, pinned bool) {
	if pinned {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	switch {
	case opts.MaxIdleConns > 0:
		db.SetMaxIdleConns(opts.MaxIdleConns)
	case opts.MaxIdleConns < 0:
		db.SetMaxIdleConns(0)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

// sqliteDSN adds the busy_timeout pragma unless the URL already sets one.
func sqliteDSN(target config.Target, busy time.Duration) string {
	if busy <= 0 || strings.Contains(target.Query, "busy_timeout") {
		return target.DSN
	}
	sep := "?"
	if target.Query != "" {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", target.DSN, sep, busy.Milliseconds())
}
