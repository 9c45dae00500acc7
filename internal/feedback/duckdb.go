// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/logging"
)

// DuckDBStore persists feedback in recommendation_feedback and the served
// ledger in recommendation_served. Served items are stored as JSON text.
type DuckDBStore struct {
	db *sql.DB
}

var _ Store = (*DuckDBStore)(nil)

// NewDuckDBStore wraps an open DuckDB handle. Call CreateTables before use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTables creates the feedback tables and indexes if missing.
func (s *DuckDBStore) CreateTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS recommendation_feedback (
			id TEXT PRIMARY KEY,
			recommendation_id TEXT NOT NULL,
			session_id TEXT,
			content_id TEXT NOT NULL,
			content_type TEXT NOT NULL,
			list_position INTEGER NOT NULL,
			action TEXT NOT NULL,
			algorithm TEXT,
			ts TIMESTAMP NOT NULL,
			dwell_ms BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_feedback_ts ON recommendation_feedback(ts);
		CREATE INDEX IF NOT EXISTS idx_feedback_rec ON recommendation_feedback(recommendation_id);
		CREATE TABLE IF NOT EXISTS recommendation_served (
			recommendation_id TEXT PRIMARY KEY,
			session_id TEXT,
			context_type TEXT NOT NULL,
			context_id TEXT,
			served_at TIMESTAMP NOT NULL,
			items TEXT NOT NULL DEFAULT '[]'
		);
		CREATE INDEX IF NOT EXISTS idx_served_at ON recommendation_served(served_at);
	`
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create feedback schema: %w", err)
		}
	}
	logging.Info().Msg("Feedback tables created/verified")
	return nil
}

// AppendFeedback implements Store. Re-delivered records with a known id are
// ignored.
//
//nolint:gocritic // hugeParam: f mirrors the MemoryStore signature
func (s *DuckDBStore) AppendFeedback(ctx context.Context, f Feedback) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendation_feedback
			(id, recommendation_id, session_id, content_id, content_type, list_position, action, algorithm, ts, dwell_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		f.ID, f.RecommendationID, nullString(f.SessionID), f.ContentID, string(f.ContentType),
		f.Position, string(f.Action), nullString(f.Algorithm), f.Timestamp.UTC(), f.DwellTime,
	)
	if err != nil {
		return fmt.Errorf("insert feedback %s: %w", f.ID, err)
	}
	return nil
}

// AppendServed implements Store.
//
//nolint:gocritic // hugeParam: sv mirrors the MemoryStore signature
func (s *DuckDBStore) AppendServed(ctx context.Context, sv Served) error {
	if err := sv.Validate(); err != nil {
		return err
	}
	items, err := json.Marshal(sv.Items)
	if err != nil {
		return fmt.Errorf("encode served items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recommendation_served
			(recommendation_id, session_id, context_type, context_id, served_at, items)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (recommendation_id) DO NOTHING`,
		sv.RecommendationID, nullString(sv.SessionID), sv.ContextType, nullString(sv.ContextID),
		sv.ServedAt.UTC(), string(items),
	)
	if err != nil {
		return fmt.Errorf("insert served %s: %w", sv.RecommendationID, err)
	}
	return nil
}

// ListFeedback implements Store.
func (s *DuckDBStore) ListFeedback(ctx context.Context, since time.Time) ([]Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recommendation_id, session_id, content_id, content_type, list_position, action, algorithm, ts, dwell_ms
		FROM recommendation_feedback
		WHERE ts >= ?
		ORDER BY ts, id`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var (
			f                   Feedback
			session, algorithm  sql.NullString
			contentType, action string
		)
		if err := rows.Scan(&f.ID, &f.RecommendationID, &session, &f.ContentID, &contentType,
			&f.Position, &action, &algorithm, &f.Timestamp, &f.DwellTime); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		f.SessionID = session.String
		f.Algorithm = algorithm.String
		f.ContentType = catalog.ContentType(contentType)
		f.Action = Action(action)
		f.Timestamp = f.Timestamp.UTC()
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

// ListServed implements Store.
func (s *DuckDBStore) ListServed(ctx context.Context, since time.Time) ([]Served, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recommendation_id, session_id, context_type, context_id, served_at, items
		FROM recommendation_served
		WHERE served_at >= ?
		ORDER BY served_at, recommendation_id`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list served: %w", err)
	}
	defer rows.Close()

	var out []Served
	for rows.Next() {
		var (
			sv                 Served
			session, contextID sql.NullString
			items              string
		)
		if err := rows.Scan(&sv.RecommendationID, &session, &sv.ContextType, &contextID, &sv.ServedAt, &items); err != nil {
			return nil, fmt.Errorf("scan served: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &sv.Items); err != nil {
			return nil, fmt.Errorf("decode served items %s: %w", sv.RecommendationID, err)
		}
		sv.SessionID = session.String
		sv.ContextID = contextID.String
		sv.ServedAt = sv.ServedAt.UTC()
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate served: %w", err)
	}
	return out, nil
}

// Evict implements Store.
func (s *DuckDBStore) Evict(ctx context.Context, before time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin feedback eviction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	total := 0
	for _, q := range []string{
		`DELETE FROM recommendation_feedback WHERE ts < ?`,
		`DELETE FROM recommendation_served WHERE served_at < ?`,
	} {
		res, err := tx.ExecContext(ctx, q, before.UTC())
		if err != nil {
			return 0, fmt.Errorf("evict feedback: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("evict feedback rows: %w", err)
		}
		total += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit feedback eviction: %w", err)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
