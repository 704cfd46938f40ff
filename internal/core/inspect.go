package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	sqliteHasTable   = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
	postgresHasTable = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
)

// HasTable reports whether table exists in the database behind q.
func HasTable(ctx context.Context, q sqlx.QueryerContext, driver, table string) (bool, error) {
	query := sqliteHasTable
	if driver == "postgres" {
		query = postgresHasTable
	}
	var name string
	err := sqlx.GetContext(ctx, q, &name, query, table)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return true, nil
}
