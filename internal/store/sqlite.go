package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	team       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (team, kind)
);
`

// SQLiteBackend keeps every team document as a row of a single table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Read returns the stored document body.
func (b *SQLiteBackend) Read(ctx context.Context, team string, doc Doc) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE team = ? AND kind = ?`, team, string(doc)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", doc, err)
	}
	return body, nil
}

const upsertDocument = `
INSERT INTO documents (team, kind, body, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(team, kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, team string, doc Doc, data []byte) error {
	_, err := ex.ExecContext(ctx, upsertDocument,
		team, string(doc), data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", doc, err)
	}
	return nil
}

// Write upserts the document row.
func (b *SQLiteBackend) Write(ctx context.Context, team string, doc Doc, data []byte) error {
	return upsert(ctx, b.db, team, doc, data)
}

// WriteBatch upserts every entry in one transaction.
func (b *SQLiteBackend) WriteBatch(ctx context.Context, team string, entries []Entry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, e := range entries {
		if err := upsert(ctx, tx, team, e.Doc, e.Data); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Exists reports whether a row exists for the document.
func (b *SQLiteBackend) Exists(ctx context.Context, team string, doc Doc) (bool, error) {
	var n int
	err := b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE team = ? AND kind = ?`, team, string(doc)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", doc, err)
	}
	return n > 0, nil
}

// Teams lists every team with at least one document.
func (b *SQLiteBackend) Teams(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT team FROM documents ORDER BY team`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, name)
	}
	return teams, rows.Err()
}
