package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/TechXTT/dbload/internal/plugin"
)

// Loaded records a file written to the database.
type Loaded struct {
	File    string
	Table   string
	Rows    int
	Created bool
	Stats   Stats
}

// Failure records a file that was skipped and why.
type Failure struct {
	File string
	Err  error
}

// Report summarises a LoadDir run.
type Report struct {
	Dir    string
	Files  []string
	Loaded []Loaded
	Failed []Failure
}

// OK reports whether every file was loaded.
func (r *Report) OK() bool { return len(r.Failed) == 0 }

// Rows returns the total rows written.
func (r *Report) Rows() int {
	n := 0
	for _, l := range r.Loaded {
		n += l.Rows
	}
	return n
}

// Loader reads, validates and persists every supported file in a directory.
type Loader struct {
	persister *Persister
	registry  Registry
	rules     map[string]Rule
	hooks     plugin.Hooks
	workers   int
	logger    *slog.Logger
}

func NewLoader(p *Persister, opts ...Option) *Loader {
	o := applyOptions(opts)
	return &Loader{
		persister: p,
		registry:  o.registry,
		rules:     o.rules,
		hooks:     o.hooks,
		workers:   o.workers,
		logger:    o.logger,
	}
}

// prepared is the outcome of reading and validating one file.
type prepared struct {
	file  plugin.File
	frame *Frame
	stats Stats
	err   error
}

// LoadDir loads the regular files of dir in name order. Per-file problems
// are recorded in the report; only a missing directory or a cancelled
// context is returned as an error.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFilesDirMissing, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	rep := &Report{Dir: dir}
	for _, e := range entries {
		if e.Type().IsRegular() {
			rep.Files = append(rep.Files, e.Name())
		}
	}
	sort.Strings(rep.Files)
	l.logger.Info("files found", "dir", dir, "count", len(rep.Files))

	results := make([]prepared, len(rep.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, name := range rep.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.prepare(filepath.Join(dir, name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		l.persist(ctx, rep, res)
	}
	l.logger.Info("load finished", "loaded", len(rep.Loaded), "failed", len(rep.Failed), "rows", rep.Rows())
	return rep, nil
}

func (l *Loader) prepare(path string) prepared {
	name := filepath.Base(path)
	res := prepared{file: plugin.File{
		Name:  name,
		Path:  path,
		Ext:   FileType(name),
		Table: TableName(name),
	}}
	log := l.logger.With("file", name)

	rd, ok := l.registry.Lookup(res.file.Ext)
	if !ok {
		res.err = fmt.Errorf("%w: %q", ErrUnsupportedFile, res.file.Ext)
		return res
	}
	f, err := rd.Read(path)
	if err != nil {
		res.err = fmt.Errorf("read %s: %w", name, err)
		return res
	}
	if f.Empty() {
		res.err = fmt.Errorf("read %s: %w", name, ErrEmptyFrame)
		return res
	}
	log.Info("file read", "rows", f.Len(), "columns", len(f.Columns))

	rule, ok := l.rules[res.file.Table]
	if !ok {
		log.Info("no validation rule for table; only duplicates are removed", "table", res.file.Table)
	}
	clean, st := NewValidator(rule, WithLogger(log)).ValidateAndClean(f)
	res.stats = st
	if clean.Empty() {
		res.err = fmt.Errorf("validate %s: %w", name, ErrEmptyFrame)
		return res
	}
	res.frame = clean
	return res
}

func (l *Loader) persist(ctx context.Context, rep *Report, res prepared) {
	file := res.file
	fail := func(err error) {
		l.logger.Error("file not loaded", "file", file.Name, "err", err)
		rep.Failed = append(rep.Failed, Failure{File: file.Name, Err: err})
		l.hooks.AfterLoad(ctx, file, 0, err)
	}
	if res.err != nil {
		fail(res.err)
		return
	}
	if err := l.hooks.BeforeLoad(ctx, file); err != nil {
		fail(fmt.Errorf("before load: %w", err))
		return
	}
	created, err := l.persister.CreateTable(ctx, res.frame, file.Table)
	if err != nil {
		fail(err)
		return
	}
	rows, err := l.persister.Save(ctx, res.frame, file.Table)
	if err != nil {
		fail(err)
		return
	}
	rep.Loaded = append(rep.Loaded, Loaded{
		File:    file.Name,
		Table:   file.Table,
		Rows:    rows,
		Created: created,
		Stats:   res.stats,
	})
	l.hooks.AfterLoad(ctx, file, rows, nil)
}
