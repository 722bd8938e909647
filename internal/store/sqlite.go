package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	content         TEXT NOT NULL,
	words           INTEGER NOT NULL DEFAULT 0,
	characters      INTEGER NOT NULL DEFAULT 0,
	reading_minutes INTEGER NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_updated_at ON documents (updated_at DESC);
`

const selectDocument = `SELECT id, title, content, words, characters, reading_minutes, created_at, updated_at FROM documents`

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path. An empty path opens a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// A second connection would see a different in-memory database, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, id, content string, opts ...SaveOption) (Document, error) {
	if err := checkID("save", id); err != nil {
		return Document{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("save %s: %w", id, err)
	}
	defer tx.Rollback()

	prev, err := scanDocument(tx.QueryRowContext(ctx, selectDocument+` WHERE id = ?`, id))
	switch {
	case errors.Is(err, ErrNotFound):
		prev = nil
	case err != nil:
		return Document{}, fmt.Errorf("save %s: %w", id, err)
	}

	doc := revise(prev, id, content, opts, s.now().UTC())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, words, characters, reading_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			words = excluded.words,
			characters = excluded.characters,
			reading_minutes = excluded.reading_minutes,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Title, doc.Content,
		doc.Stats.Words, doc.Stats.Characters, doc.Stats.ReadingMinutes,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return Document{}, fmt.Errorf("save %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("save %s: %w", id, err)
	}
	return doc, nil
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context, id string) (Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx, selectDocument+` WHERE id = ?`, id))
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", id, err)
	}
	return *doc, nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocument+` ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return docs, nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc              Document
		created, updated int64
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content,
		&doc.Stats.Words, &doc.Stats.Characters, &doc.Stats.ReadingMinutes,
		&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.CreatedAt = time.Unix(0, created).UTC()
	doc.UpdatedAt = time.Unix(0, updated).UTC()
	return &doc, nil
}
