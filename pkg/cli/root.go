package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechXTT/dbload/internal/logging"
	"github.com/TechXTT/dbload/pkg/config"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "v0.1.0"

// globals are the persistent flags shared by every command.
type globals struct {
	envFile     string
	databaseURL string
	logLevel    string
}

// setup loads configuration, applies flag overrides and builds the logger.
// The returned func releases the log file.
func (g *globals) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	var files []string
	if g.envFile != "" {
		if _, err := os.Stat(g.envFile); err != nil {
			return nil, nil, nil, fmt.Errorf("env file: %w", err)
		}
		files = append(files, g.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, nil, err
	}
	if g.databaseURL != "" {
		cfg.DB.URL = g.databaseURL
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, func() { _ = closer.Close() }, nil
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}

// NewRootCmd builds the top-level `dbload` command.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "dbload",
		Short:         "dbload - check a database and load data files into it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", "", "dotenv file to load before the environment (default ./.env if present)")
	pf.StringVar(&g.databaseURL, "database-url", "", "database URL, overrides DATABASE_URL")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error; overrides LOG_LEVEL")

	root.AddCommand(NewCheckCmd(g))
	root.AddCommand(NewLoadCmd(g))
	root.AddCommand(NewVersionCmd())
	return root
}

// Exitf writes a formatted message to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
