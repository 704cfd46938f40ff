package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/dbload"
	"github.com/TechXTT/dbload/pkg/ingest"
)

// NewLoadCmd builds `load`: check the database, then read, validate and
// persist every supported file in the files directory. An unreachable
// database or a missing directory is reported and the command still
// succeeds unless --strict is set; files that cannot be written show up as
// failures in the summary.
func NewLoadCmd(g *globals) *cobra.Command {
	var (
		dir     string
		rules   string
		workers int
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load csv, json, txt and xlsx files into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, done, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer done()
			if dir == "" {
				dir = cfg.Load.FilesDir
			}
			if rules == "" {
				rules = cfg.Load.RulesFile
			}
			if workers <= 0 {
				workers = cfg.Load.Workers
			}
			delim, err := parseDelimiter(cfg.Load.TextDelimiter)
			if err != nil {
				return err
			}

			opts := []ingest.Option{
				ingest.WithLogger(logger),
				ingest.WithWorkers(workers),
				ingest.WithRegistry(ingest.DefaultRegistry(delim)),
			}
			if rules != "" {
				set, err := ingest.LoadRules(rules)
				if err != nil {
					return err
				}
				opts = append(opts, ingest.WithRules(set))
			}

			out := cmd.OutOrStdout()
			p := db.NewProvider(*cfg, db.WithLogger(logger), db.WithOutput(out))
			engine, err := p.GetEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			if res := p.InitializeDatabase(cmd.Context(), engine); !res.OK && strict {
				return fmt.Errorf("load aborted: %w", res.Err)
			}

			persister, err := ingest.NewPersister(engine, opts...)
			if err != nil {
				return err
			}
			rep, err := ingest.NewLoader(persister, opts...).LoadDir(cmd.Context(), dir)
			if errors.Is(err, ingest.ErrFilesDirMissing) && !strict {
				fmt.Fprintf(out, "Error: directory '%s' does not exist. Create it and place your files there.\n", dir)
				return nil
			}
			if err != nil {
				return err
			}
			printReport(out, rep)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory with input files (default FILES_DIR)")
	cmd.Flags().StringVar(&rules, "rules", "", "JSON validation rules file (default RULES_FILE, else built-in rules)")
	cmd.Flags().IntVar(&workers, "workers", 0, "files read and validated concurrently (default LOAD_WORKERS)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the database is unreachable or the directory is missing")
	return cmd
}

// parseDelimiter accepts a single character or a Go-quoted escape such as `\t`.
func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	if unq, err := strconv.Unquote(`"` + s + `"`); err == nil {
		s = unq
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("text delimiter %q: want a single character", s)
	}
	return r, nil
}

func printReport(w io.Writer, rep *ingest.Report) {
	if len(rep.Files) == 0 {
		fmt.Fprintf(w, "No files found in '%s'.\n", rep.Dir)
		return
	}
	fmt.Fprintf(w, "Processed %d file(s) from %s\n", len(rep.Files), rep.Dir)
	if len(rep.Loaded) > 0 {
		fmt.Fprintln(w, "Loaded:")
		for _, l := range rep.Loaded {
			fmt.Fprintf(w, "  %s -> %s (%d rows)\n", l.File, l.Table, l.Rows)
		}
	} else {
		fmt.Fprintln(w, "No files were loaded.")
	}
	if len(rep.Failed) > 0 {
		fmt.Fprintln(w, "Failed:")
		for _, f := range rep.Failed {
			fmt.Fprintf(w, "  %s: %v\n", f.File, f.Err)
		}
	} else {
		fmt.Fprintln(w, "All files were processed without errors.")
	}
}
