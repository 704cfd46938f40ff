// File: internal/core/builder.go
package core

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes an identifier for sqlite and postgres.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TableBuilder assembles a CREATE TABLE statement
type TableBuilder struct {
	table       string
	columns     []string
	ifNotExists bool
}

func NewTable(table string) *TableBuilder {
	return &TableBuilder{table: table}
}

// Column appends a nullable column definition
func (tb *TableBuilder) Column(name, sqlType string) *TableBuilder {
	tb.columns = append(tb.columns, QuoteIdent(name)+" "+sqlType)
	return tb
}

// IfNotExists guards against a concurrent creator
func (tb *TableBuilder) IfNotExists() *TableBuilder {
	tb.ifNotExists = true
	return tb
}

// Build assembles the DDL
func (tb *TableBuilder) Build() (string, error) {
	if tb.table == "" {
		return "", fmt.Errorf("create table: empty table name")
	}
	if len(tb.columns) == 0 {
		return "", fmt.Errorf("create table %s: no columns", tb.table)
	}
	parts := []string{"CREATE TABLE"}
	if tb.ifNotExists {
		parts = append(parts, "IF NOT EXISTS")
	}
	parts = append(parts, QuoteIdent(tb.table), "("+strings.Join(tb.columns, ", ")+")")
	return strings.Join(parts, " "), nil
}

// InsertBuilder assembles a single-row INSERT with '?' placeholders
type InsertBuilder struct {
	table   string
	columns []string
}

func NewInsert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (ib *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	ib.columns = append(ib.columns, cols...)
	return ib
}

// Build assembles the statement; callers rebind placeholders per driver
func (ib *InsertBuilder) Build() (string, error) {
	if len(ib.columns) == 0 {
		return "", fmt.Errorf("insert into %s: no columns", ib.table)
	}
	quoted := make([]string, len(ib.columns))
	marks := make([]string, len(ib.columns))
	for i, c := range ib.columns {
		quoted[i] = QuoteIdent(c)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(ib.table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return query, nil
}

// CountQuery returns the row count statement for a table
func CountQuery(table string) string {
	return "SELECT COUNT(*) FROM " + QuoteIdent(table)
}
