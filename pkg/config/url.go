package config

import (
	"errors"
	"fmt"
	"strings"
)

// Driver names registered by the database/sql drivers this module links.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrEmptyURL       = errors.New("config: database url is empty")
	ErrUnsupportedURL = errors.New("config: unsupported database url")
)

// Target is a database URL resolved to a driver name and a driver DSN.
type Target struct {
	Driver string
	DSN    string
	// Path is the database file for sqlite targets, ":memory:" for in-memory ones.
	Path string
	// Query is the raw query string carried over from the URL, without '?'.
	Query string
}

// ParseURL resolves SQLAlchemy-style URLs:
//
//	sqlite:///relative/path.db    -> relative/path.db
//	sqlite:////absolute/path.db   -> /absolute/path.db
//	sqlite:// or sqlite:///:memory: -> :memory:
//	postgres://... / postgresql+driver://... -> lib/pq URL with sslmode=disable by default
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrEmptyURL
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Target{}, fmt.Errorf("%w: %q has no scheme", ErrUnsupportedURL, raw)
	}
	// Drop the "+driver" suffix of dialect names such as postgresql+psycopg2.
	dialect, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch dialect {
	case "sqlite", "sqlite3":
		return parseSQLite(rest), nil
	case "postgres", "postgresql":
		return Target{Driver: DriverPostgres, DSN: postgresDSN("postgres://" + rest)}, nil
	default:
		return Target{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
	}
}

func parseSQLite(rest string) Target {
	path, query, _ := strings.Cut(rest, "?")
	// The host part is always empty for sqlite; the first slash separates it from the path.
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == ":memory:" {
		path = ":memory:"
	}
	dsn := path
	if query != "" {
		dsn += "?" + query
	}
	return Target{Driver: DriverSQLite, DSN: dsn, Path: path, Query: query}
}

// postgresDSN disables SSL unless the URL sets sslmode itself.
func postgresDSN(dsn string) string {
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "sslmode=disable"
}
