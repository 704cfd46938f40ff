package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDatabaseURL points at a database file next to the working directory.
const DefaultDatabaseURL = "sqlite:///./app_data.db"

// Config holds all settings for the provider, the loader and logging.
type Config struct {
	DB   Database
	Load Loader
	Log  Logging
}

// Database configures the engine. Zero pool values leave the driver defaults
// in place and a negative DB_MAX_IDLE_CONNS keeps no idle connections.
// In-memory sqlite URLs run on one connection that is never recycled, so the
// lifetime settings do not apply to them, and a zero DB_CHECK_TIMEOUT is
// bounded to one second there.
type Database struct {
	URL             string        `env:"DATABASE_URL" envDefault:"sqlite:///./app_data.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"0"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"0s"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"0s"`
	BusyTimeout     time.Duration `env:"DB_BUSY_TIMEOUT" envDefault:"5s"`
	CheckTimeout    time.Duration `env:"DB_CHECK_TIMEOUT" envDefault:"0s"`
}

// Loader configures the file ingestion pipeline.
type Loader struct {
	FilesDir      string `env:"FILES_DIR" envDefault:"files"`
	Workers       int    `env:"LOAD_WORKERS" envDefault:"4"`
	RulesFile     string `env:"RULES_FILE"`
	TextDelimiter string `env:"TEXT_DELIMITER" envDefault:","`
}

// Logging configures the slog handler and the optional rotating log file.
type Logging struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"false"`
}

// Load reads .env files (missing files are ignored) and then the process
// environment. With no arguments godotenv looks for ./.env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in defaults without looking at the environment.
func Default() Config {
	var cfg Config
	// Parsing against an empty environment only applies envDefault tags.
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
