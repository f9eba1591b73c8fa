// Package catalog persists metadata about stored documents in SQLite. The
// filesystem remains the source of truth for file content; the catalog only
// records what was ingested, when, and with what asset outcome, so the reader
// UI can show a library without walking the store.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/google/uuid"
)

// Entry is one cataloged document.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path,omitempty"`
	Title      string    `json:"title,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ingestion is one ingestion event for a document.
type Ingestion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	AssetsCopied  int       `json:"assets_copied"`
	AssetsSkipped int       `json:"assets_skipped"`
	CreatedAt     time.Time `json:"created_at"`
}

// Catalog is a SQLite-backed document catalog.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		source_path TEXT,
		title TEXT,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(name);

	CREATE TABLE IF NOT EXISTS ingestions (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		assets_copied INTEGER NOT NULL DEFAULT 0,
		assets_skipped INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_ingestions_document_id ON ingestions(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or updates the catalog row for a document. Re-ingesting the
// same stored name updates the existing row in place.
func (c *Catalog) Upsert(ctx context.Context, e *Entry) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, source_path, title, size_bytes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   source_path = excluded.source_path,
		   title = excluded.title,
		   size_bytes = excluded.size_bytes,
		   updated_at = excluded.updated_at`,
		e.ID, e.Name, e.SourcePath, e.Title, e.SizeBytes, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Get returns a cataloged document by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, source_path, title, size_bytes, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &e.SourcePath, &e.Title, &e.SizeBytes, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a document row (and its ingestion history) by ID. Deleting
// an unknown ID is a no-op.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM ingestions WHERE document_id = ?`, id); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// List returns cataloged documents, most recently updated first.
func (c *Catalog) List(ctx context.Context, offset, limit int) ([]*Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, source_path, title, size_bytes, created_at, updated_at
		 FROM documents ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.SourcePath, &e.Title, &e.SizeBytes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// RecordIngestion appends one ingestion event for a document and returns it.
func (c *Catalog) RecordIngestion(ctx context.Context, documentID string, copied, skipped int) (*Ingestion, error) {
	ing := &Ingestion{
		ID:            uuid.New().String(),
		DocumentID:    documentID,
		AssetsCopied:  copied,
		AssetsSkipped: skipped,
		CreatedAt:     time.Now(),
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO ingestions (id, document_id, assets_copied, assets_skipped, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ing.ID, ing.DocumentID, ing.AssetsCopied, ing.AssetsSkipped, ing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// Ingestions returns the ingestion history for a document, newest first.
func (c *Catalog) Ingestions(ctx context.Context, documentID string) ([]*Ingestion, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, document_id, assets_copied, assets_skipped, created_at
		 FROM ingestions WHERE document_id = ? ORDER BY created_at DESC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ings []*Ingestion
	for rows.Next() {
		var ing Ingestion
		if err := rows.Scan(&ing.ID, &ing.DocumentID, &ing.AssetsCopied, &ing.AssetsSkipped, &ing.CreatedAt); err != nil {
			return nil, err
		}
		ings = append(ings, &ing)
	}
	return ings, rows.Err()
}

// Count returns the total number of cataloged documents.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}
