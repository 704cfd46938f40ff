package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TechXTT/dbload/internal/core"
	"github.com/TechXTT/dbload/pkg/internal/typeconv"
	"github.com/TechXTT/dbload/pkg/runtime"
)

// Persister writes frames to tables through engine sessions.
type Persister struct {
	engine *runtime.Engine
	logger *slog.Logger
}

func NewPersister(e *runtime.Engine, opts ...Option) (*Persister, error) {
	if e == nil || e.DB() == nil {
		return nil, runtime.ErrInvalidHandle
	}
	o := applyOptions(opts)
	return &Persister{engine: e, logger: o.logger}, nil
}

// Engine returns the engine the persister writes through.
func (p *Persister) Engine() *runtime.Engine { return p.engine }

// CreateTable creates table with one nullable column per frame column unless
// it already exists. It reports whether the table was created.
func (p *Persister) CreateTable(ctx context.Context, f *Frame, table string) (bool, error) {
	exists, err := core.HasTable(ctx, p.engine.DB(), p.engine.Driver(), table)
	if err != nil {
		return false, err
	}
	if exists {
		p.logger.Info("table exists, leaving it unchanged", "table", table)
		return false, nil
	}

	tb := core.NewTable(table).IfNotExists()
	for _, c := range f.Columns {
		tb.Column(c.Name, typeconv.SQLType(c.Kind, p.engine.Driver()))
	}
	ddl, err := tb.Build()
	if err != nil {
		return false, err
	}

	s, err := runtime.NewSession(p.engine)
	if err != nil {
		return false, err
	}
	defer s.Close()
	if _, err := s.Exec(ctx, ddl); err != nil {
		return false, fmt.Errorf("create table %s: %w", table, err)
	}
	if err := s.Commit(ctx); err != nil {
		return false, fmt.Errorf("create table %s: %w", table, err)
	}
	p.logger.Info("table created", "table", table, "columns", len(f.Columns))
	return true, nil
}

// Save appends every row of f to table in one transaction and returns the
// number of rows written.
func (p *Persister) Save(ctx context.Context, f *Frame, table string) (int, error) {
	if f.Empty() {
		return 0, nil
	}
	insert, err := core.NewInsert(table).Columns(f.Names()...).Build()
	if err != nil {
		return 0, err
	}

	s, err := runtime.NewSession(p.engine)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	for _, row := range f.Rows {
		if err := s.Add(insert, row...); err != nil {
			return 0, err
		}
	}
	if err := s.Commit(ctx); err != nil {
		return 0, fmt.Errorf("save %s: %w", table, err)
	}
	p.logger.Info("rows saved", "table", table, "rows", len(f.Rows), "session", s.ID().String())
	return len(f.Rows), nil
}

// Count returns the number of rows in table.
func (p *Persister) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := p.engine.DB().GetContext(ctx, &n, core.CountQuery(table)); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
