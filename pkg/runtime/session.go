package runtime

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// statement is a write staged on a session until the next flush.
type statement struct {
	query string
	args  []any
}

// Session is a unit of work bound to one engine. Writes staged with Add are
// sent only by Flush or Commit, and nothing is committed implicitly. A
// transaction is begun on first database use and lives until Commit,
// Rollback or Close.
//
// A Session is not safe for concurrent use; each logical operation should
// obtain its own.
type Session struct {
	id      uuid.UUID
	engine  *Engine
	tx      *sqlx.Tx
	pending []statement
	closed  bool
}

// NewSession creates a session bound to e. It performs no I/O.
func NewSession(e *Engine) (*Session, error) {
	if !e.valid() {
		return nil, ErrInvalidHandle
	}
	return &Session{id: uuid.New(), engine: e}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Engine returns the engine the session was created on.
func (s *Session) Engine() *Engine { return s.engine }

// AutoCommit is always false: Commit must be called explicitly.
func (s *Session) AutoCommit() bool { return false }

// AutoFlush is always false: reads never send staged writes.
func (s *Session) AutoFlush() bool { return false }

// Pending returns the number of staged statements.
func (s *Session) Pending() int { return len(s.pending) }

// InTransaction reports whether a transaction is open.
func (s *Session) InTransaction() bool { return s.tx != nil }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Begin opens the session's transaction. It is a no-op when one is open.
func (s *Session) Begin(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}
	tx, err := s.engine.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Add stages a write. query uses '?' placeholders.
func (s *Session) Add(query string, args ...any) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.pending = append(s.pending, statement{query: s.engine.Rebind(query), args: args})
	return nil
}

// Flush sends staged writes inside the session transaction without committing.
// On failure the statements not yet sent stay staged.
func (s *Session) Flush(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.Begin(ctx); err != nil {
		return err
	}
	for i, st := range s.pending {
		if _, err := s.tx.ExecContext(ctx, st.query, st.args...); err != nil {
			s.pending = s.pending[i:]
			return fmt.Errorf("flush statement %d: %w", i+1, err)
		}
	}
	s.pending = s.pending[:0]
	return nil
}

// Commit flushes staged writes and commits the transaction.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards staged writes and rolls back the open transaction.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.pending = nil
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// Close rolls back anything uncommitted and releases the session.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	return err
}

// Exec runs a statement immediately inside the session transaction. Staged
// writes are not flushed first.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.Begin(ctx); err != nil {
		return nil, err
	}
	return s.tx.ExecContext(ctx, s.engine.Rebind(query), args...)
}

// Select scans all rows of query into dest, a pointer to a slice.
func (s *Session) Select(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}
	return s.tx.SelectContext(ctx, dest, s.engine.Rebind(query), args...)
}

// Get scans a single row of query into dest.
func (s *Session) Get(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}
	return s.tx.GetContext(ctx, dest, s.engine.Rebind(query), args...)
}
