package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(db, "sqlmock", "sqlite:///./mock.db"), mock
}

func TestNewSession_InvalidHandle(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = NewSession(&Engine{})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestNewSession_BoundAndDistinct(t *testing.T) {
	engine, mock := newMockEngine(t)

	first, err := NewSession(engine)
	require.NoError(t, err)
	second, err := NewSession(engine)
	require.NoError(t, err)

	assert.Same(t, engine, first.Engine())
	assert.Same(t, engine, second.Engine())
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.False(t, first.AutoCommit())
	assert.False(t, first.AutoFlush())
	assert.False(t, first.InTransaction())

	// Creating sessions never touches the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_AddStagesWithoutIO(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "b"))
	assert.Equal(t, 2, s.Pending())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_FlushDoesNotCommit(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO notes`).WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 0, s.Pending())
	assert.True(t, s.InTransaction())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_CommitFlushesThenCommits(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO notes`).WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO notes`).WithArgs("b").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "b"))
	require.NoError(t, s.Commit(context.Background()))
	assert.False(t, s.InTransaction())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_CommitWithNothingToDo(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	require.NoError(t, s.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ReadsDoNotFlush(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	var count int
	require.NoError(t, s.Get(context.Background(), &count, `SELECT COUNT(*) FROM notes`))
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, s.Pending())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_FlushFailureKeepsUnsentStatements(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	boom := errors.New("constraint failed")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO notes`).WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO notes`).WithArgs("b").WillReturnError(boom)
	mock.ExpectRollback()

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "b"))
	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "c"))

	err = s.Flush(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.Pending())

	require.NoError(t, s.Rollback())
	assert.Equal(t, 0, s.Pending())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_CloseRollsBack(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM notes`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectRollback()

	_, err = s.Exec(context.Background(), `DELETE FROM notes`)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"), ErrSessionClosed)
	assert.ErrorIs(t, s.Flush(context.Background()), ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(context.Background()), ErrSessionClosed)
	var count int
	assert.ErrorIs(t, s.Get(context.Background(), &count, `SELECT 1`), ErrSessionClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_BeginFailure(t *testing.T) {
	engine, mock := newMockEngine(t)
	s, err := NewSession(engine)
	require.NoError(t, err)

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	require.NoError(t, s.Add(`INSERT INTO notes (content) VALUES (?)`, "a"))
	err = s.Commit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.Equal(t, 1, s.Pending())
	require.NoError(t, mock.ExpectationsWereMet())
}
