package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/dbload/internal/plugin"
)

type recordingHooks struct {
	mu     sync.Mutex
	before []string
	after  []string
	veto   string
}

func (h *recordingHooks) BeforeLoad(_ context.Context, f plugin.File) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = append(h.before, f.Name)
	if f.Name == h.veto {
		return errors.New("vetoed")
	}
	return nil
}

func (h *recordingHooks) AfterLoad(_ context.Context, f plugin.File, rows int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	h.after = append(h.after, f.Name+":"+status)
}

func seedFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "id,name,email,age,join_date\n"+
		"1,Ann,ann@example.com,30,2024-01-02\n"+
		"1,Ann,ann@example.com,30,2024-01-02\n"+
		"2,Bob,bob@example.com,41,2024-02-03\n")
	writeFile(t, dir, "products.json", `[{"product_id": "P1", "name": "Pen", "price": 1.5, "stock": 3}]`)
	writeFile(t, dir, "notes.txt", "remember the milk\ncall home\n")
	writeFile(t, dir, "empty.csv", "")
	writeFile(t, dir, "orders.csv", "order_id,user_id\nO1,abc\n")
	writeFile(t, dir, "report.pdf", "%PDF")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	return dir
}

func TestLoader_LoadDir(t *testing.T) {
	ctx := context.Background()
	e := newSQLiteEngine(t)
	p, err := NewPersister(e)
	require.NoError(t, err)
	hooks := &recordingHooks{}

	rep, err := NewLoader(p, WithHooks(hooks), WithWorkers(2)).LoadDir(ctx, seedFiles(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"empty.csv", "notes.txt", "orders.csv", "products.json", "report.pdf", "users.csv"}, rep.Files)
	require.Len(t, rep.Loaded, 3)
	assert.Equal(t, "notes", rep.Loaded[0].Table)
	assert.Equal(t, 2, rep.Loaded[0].Rows)
	assert.Equal(t, "products", rep.Loaded[1].Table)
	assert.Equal(t, "users", rep.Loaded[2].Table)
	assert.Equal(t, 2, rep.Loaded[2].Rows)
	assert.Equal(t, 1, rep.Loaded[2].Stats.Duplicates)
	assert.True(t, rep.Loaded[2].Created)
	assert.Equal(t, 5, rep.Rows())
	assert.False(t, rep.OK())

	failed := map[string]error{}
	for _, f := range rep.Failed {
		failed[f.File] = f.Err
	}
	require.Len(t, failed, 3)
	assert.ErrorIs(t, failed["empty.csv"], ErrEmptyFrame)
	assert.ErrorIs(t, failed["orders.csv"], ErrEmptyFrame)
	assert.ErrorIs(t, failed["report.pdf"], ErrUnsupportedFile)

	// hooks run in name order; BeforeLoad only for files that reached persistence
	assert.Equal(t, []string{"notes.txt", "products.json", "users.csv"}, hooks.before)
	assert.Equal(t, []string{
		"empty.csv:failed", "notes.txt:ok", "orders.csv:failed",
		"products.json:ok", "report.pdf:failed", "users.csv:ok",
	}, hooks.after)

	count, err := p.Count(ctx, "users")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestLoader_HookVeto(t *testing.T) {
	p, err := NewPersister(newSQLiteEngine(t))
	require.NoError(t, err)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello\n")

	rep, err := NewLoader(p, WithHooks(&recordingHooks{veto: "notes.txt"})).LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, rep.Loaded)
	require.Len(t, rep.Failed, 1)
	require.ErrorContains(t, rep.Failed[0].Err, "vetoed")
}

func TestLoader_CustomRules(t *testing.T) {
	p, err := NewPersister(newSQLiteEngine(t))
	require.NoError(t, err)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "keep\n\nthird\n")

	rules := map[string]Rule{"notes": {Types: []FieldType{{"content", KindString}}}}
	rep, err := NewLoader(p, WithRules(rules)).LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, rep.Loaded, 1)
	assert.Equal(t, 3, rep.Loaded[0].Rows)
}

func TestLoader_MissingDir(t *testing.T) {
	p, err := NewPersister(newSQLiteEngine(t))
	require.NoError(t, err)
	_, err = NewLoader(p).LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrFilesDirMissing)
}

func TestLoader_CancelledContext(t *testing.T) {
	p, err := NewPersister(newSQLiteEngine(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLoader(p).LoadDir(ctx, seedFiles(t))
	require.ErrorIs(t, err, context.Canceled)
}
