package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id          VARCHAR PRIMARY KEY,
	comic       VARCHAR NOT NULL,
	chapter     VARCHAR NOT NULL,
	source      VARCHAR,
	dir         VARCHAR NOT NULL,
	epub_path   VARCHAR,
	pages       INTEGER,
	failed      INTEGER,
	finished_at TIMESTAMP
)`

func InitDuckDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Repository keeps the history of finished chapter downloads.
type Repository struct {
	db *sql.DB
}

func NewDuckDBRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) SaveDownload(d *Download) error {
	if d.FinishedAt.IsZero() {
		d.FinishedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO downloads (id, comic, chapter, source, dir, epub_path, pages, failed, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Comic, d.Chapter, d.Source, d.Dir, d.EPUBPath, d.Pages, d.Failed, d.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	return nil
}

// ListDownloads returns the history, newest first.
func (r *Repository) ListDownloads() ([]*Download, error) {
	rows, err := r.db.Query(
		`SELECT id, comic, chapter, source, dir, epub_path, pages, failed, finished_at
		 FROM downloads ORDER BY finished_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var out []*Download
	for rows.Next() {
		var (
			d      Download
			source sql.NullString
			epub   sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Comic, &d.Chapter, &source, &d.Dir, &epub, &d.Pages, &d.Failed, &d.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		d.Source = source.String
		d.EPUBPath = epub.String
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
