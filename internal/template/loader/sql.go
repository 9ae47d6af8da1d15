package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"time"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("template loader: invalid table name %q", table)
	}
	return nil
}

func loadSQL(ctx context.Context, db *sql.DB, table, name string) ([]byte, pkgtemplate.Version, error) {
	if db == nil {
		return nil, pkgtemplate.Version{}, errors.New("template loader: database is not configured")
	}
	if name == "" {
		return nil, pkgtemplate.Version{}, errors.New("template loader: template name is required")
	}
	if err := validTable(table); err != nil {
		return nil, pkgtemplate.Version{}, err
	}

	var (
		body    string
		updated int64
	)
	query := "SELECT body, updated_at FROM " + table + " WHERE name = ?"
	err := db.QueryRowContext(ctx, query, name).Scan(&body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgtemplate.Version{}, fmt.Errorf("template loader: %q: %w", name, fs.ErrNotExist)
	}
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}
	return []byte(body), sqlVersion(updated, len(body)), nil
}

func statSQL(ctx context.Context, db *sql.DB, table, name string) (pkgtemplate.Version, error) {
	if db == nil {
		return pkgtemplate.Version{}, errors.New("template loader: database is not configured")
	}
	if err := validTable(table); err != nil {
		return pkgtemplate.Version{}, err
	}

	var (
		size    int
		updated int64
	)
	query := "SELECT length(CAST(body AS BLOB)), updated_at FROM " + table + " WHERE name = ?"
	err := db.QueryRowContext(ctx, query, name).Scan(&size, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return pkgtemplate.Version{}, fmt.Errorf("template loader: %q: %w", name, fs.ErrNotExist)
	}
	if err != nil {
		return pkgtemplate.Version{}, err
	}
	return sqlVersion(updated, size), nil
}

func sqlVersion(updated int64, size int) pkgtemplate.Version {
	return pkgtemplate.Version{ModTime: time.Unix(0, updated), Size: int64(size)}
}

// EnsureSchema creates the template table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if db == nil {
		return errors.New("template loader: database is not configured")
	}
	if table == "" {
		table = pkgtemplate.DefaultTable
	}
	if err := validTable(table); err != nil {
		return err
	}
	stmt := "CREATE TABLE IF NOT EXISTS " + table + ` (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("template loader: create table %s: %w", table, err)
	}
	return nil
}

// Put inserts or replaces the template stored under name, stamping it with
// the current time.
func Put(ctx context.Context, db *sql.DB, table, name, body string) error {
	if db == nil {
		return errors.New("template loader: database is not configured")
	}
	if name == "" {
		return errors.New("template loader: template name is required")
	}
	if table == "" {
		table = pkgtemplate.DefaultTable
	}
	if err := validTable(table); err != nil {
		return err
	}
	stmt := "INSERT INTO " + table + ` (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, stmt, name, body, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("template loader: put %q: %w", name, err)
	}
	return nil
}
