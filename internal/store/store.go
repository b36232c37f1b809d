// Package store writes flattened tables into a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/engagekit/lp/internal/mapper"
)

// Open opens a SQLite database at dsn with WAL journaling and a single
// connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return db, nil
}

// Save creates one table per kind (if missing) and appends every row, all
// in a single transaction. It returns the number of rows written.
func Save(ctx context.Context, db *sql.DB, tables ...*mapper.Table) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	written := 0
	for _, tbl := range tables {
		if tbl == nil {
			continue
		}
		n, err := saveTable(ctx, tx, tbl)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("table %s: %w", tbl.Kind, err)
		}
		written += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func saveTable(ctx context.Context, tx *sql.Tx, tbl *mapper.Table) (int, error) {
	name := quote(string(tbl.Kind))
	cols := make([]string, len(tbl.Columns))
	defs := make([]string, len(tbl.Columns))
	marks := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		cols[i] = quote(c)
		defs[i] = quote(c) + " TEXT"
		marks[i] = "?"
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range tbl.Rows {
		values := row.Values(tbl.Columns)
		args := make([]any, len(values))
		for i, v := range values {
			args[i], err = Text(v)
			if err != nil {
				return 0, fmt.Errorf("column %s: %w", tbl.Columns[i], err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
	}
	return len(tbl.Rows), nil
}

// Text renders a decoded JSON value as column text. nil stays nil (NULL);
// objects and arrays are JSON encoded.
func Text(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
