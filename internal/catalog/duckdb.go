// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrank/internal/logging"
)

// DuckDBStore reads the catalog from a catalog_items table. String lists
// are stored as JSON text.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore wraps an open DuckDB handle. Call CreateTable before use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

const itemColumns = `id, type, title, subtitle, description, image_url, url,
	genres, directors, year, tags, view_count, vote_count, rating, published_at, updated_at`

// CreateTable creates catalog_items and its indexes if missing.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS catalog_items (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			subtitle TEXT,
			description TEXT,
			image_url TEXT,
			url TEXT NOT NULL,
			genres TEXT NOT NULL DEFAULT '[]',
			directors TEXT NOT NULL DEFAULT '[]',
			year INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			view_count BIGINT NOT NULL DEFAULT 0,
			vote_count BIGINT NOT NULL DEFAULT 0,
			rating DOUBLE NOT NULL DEFAULT 0,
			published_at TIMESTAMP,
			updated_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_catalog_type ON catalog_items(type);
	`
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create catalog schema: %w", err)
		}
	}
	logging.Info().Msg("Catalog table created/verified")
	return nil
}

// Upsert writes items, replacing rows with the same id.
func (s *DuckDBStore) Upsert(ctx context.Context, items ...Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	query := `INSERT OR REPLACE INTO catalog_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range items {
		it := &items[i]
		_, err := tx.ExecContext(ctx, query,
			it.ID, string(it.Type), it.Title, it.Subtitle, it.Description, it.ImageURL, it.URL,
			marshalList(it.Genres), marshalList(it.Directors), it.Year, marshalList(it.Tags),
			it.ViewCount, it.VoteCount, it.Rating, nullTime(it.PublishedAt), nullTime(it.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert catalog item %s: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog upsert: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *DuckDBStore) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get catalog item %s: %w", id, err)
	}
	return it, nil
}

// List implements Store.
func (s *DuckDBStore) List(ctx context.Context, types []ContentType) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items`
	var args []interface{}
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += ` WHERE type IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		it                              Item
		typ                             string
		subtitle, description, imageURL sql.NullString
		genres, directors, tags         string
		published, updated              sql.NullTime
	)
	err := row.Scan(
		&it.ID, &typ, &it.Title, &subtitle, &description, &imageURL, &it.URL,
		&genres, &directors, &it.Year, &tags, &it.ViewCount, &it.VoteCount, &it.Rating,
		&published, &updated,
	)
	if err != nil {
		return Item{}, err
	}
	it.Type = ContentType(typ)
	it.Subtitle = subtitle.String
	it.Description = description.String
	it.ImageURL = imageURL.String
	it.Genres = unmarshalList(genres)
	it.Directors = unmarshalList(directors)
	it.Tags = unmarshalList(tags)
	if published.Valid {
		it.PublishedAt = published.Time.UTC()
	}
	if updated.Valid {
		it.UpdatedAt = updated.Time.UTC()
	}
	return it, nil
}

func marshalList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalList(raw string) []string {
	var out []string
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
