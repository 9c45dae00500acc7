// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Key layout:
//
//	ev/<kind>/<session>/<ts:8>/<id>   -> JSON event
//	age/<kind>/<ts:8><session>/<id>   -> empty, drives eviction in time order
//
// ts is the big-endian UnixNano timestamp so keys sort chronologically.
const (
	eventKeyPrefix = "ev/"
	ageKeyPrefix   = "age/"
)

// BadgerStore persists events in BadgerDB. Each entry also carries a TTL
// equal to its kind's retention, so badger drops it even if an explicit
// eviction never runs.
type BadgerStore struct {
	db        *badger.DB
	retention Retention
	now       func() time.Time
}

var (
	_ Store         = (*BadgerStore)(nil)
	_ SessionLister = (*BadgerStore)(nil)
)

// NewBadgerStore wraps an open badger handle. The caller owns db.
func NewBadgerStore(db *badger.DB, retention Retention) *BadgerStore {
	if retention == nil {
		retention = DefaultRetention()
	}
	return &BadgerStore{db: db, retention: retention, now: time.Now}
}

// OpenBadger opens (creating if needed) a badger database at dir, or an
// in-memory one when dir is empty.
func OpenBadger(dir string, syncWrites bool) (*badger.DB, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create behavior dir %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir).WithSyncWrites(syncWrites)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open behavior store: %w", err)
	}
	return db, nil
}

// SetClock overrides the time source used by Evict.
func (s *BadgerStore) SetClock(now func() time.Time) {
	s.now = now
}

// Append implements Store.
func (s *BadgerStore) Append(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if bytes.IndexByte([]byte(e.ID), '/') >= 0 {
		return fmt.Errorf("%w: event id contains '/'", ErrInvalidEvent)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ts := encodeTimestamp(e.Timestamp)
	ttl := s.retention.For(e.Kind)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(eventKey(e.Kind, e.SessionID, ts, e.ID), data).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set event: %w", err)
		}
		if err := txn.SetEntry(badger.NewEntry(ageKey(e.Kind, ts, e.SessionID, e.ID), nil).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set age index: %w", err)
		}
		return nil
	})
}

// Query implements Store.
func (s *BadgerStore) Query(ctx context.Context, sessionID string, kind Kind, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidSessionID(sessionID) {
		return nil, nil
	}

	prefix := eventPrefix(kind, sessionID)
	var out []Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var e Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	return out, nil
}

// Evict implements Store. It walks the age index from the oldest entry and
// stops at the first one inside the window, so the cost is proportional to
// what is removed.
func (s *BadgerStore) Evict(ctx context.Context, kind Kind, maxAge time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(ageKeyPrefix + string(kind) + "/")
	cutoff := encodeTimestamp(s.now().Add(-maxAge))

	var doomed [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			rest := key[len(prefix):]
			if len(rest) < 8 || bytes.Compare(rest[:8], cutoff) >= 0 {
				break
			}
			session, id, ok := splitAgeTail(rest[8:])
			if !ok {
				doomed = append(doomed, key)
				continue
			}
			var ts [8]byte
			copy(ts[:], rest[:8])
			doomed = append(doomed, key, eventKey(kind, session, ts[:], id))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s age index: %w", kind, err)
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	removed := 0
	for _, key := range doomed {
		if err := wb.Delete(key); err != nil {
			return removed, fmt.Errorf("delete expired %s event: %w", kind, err)
		}
		if bytes.HasPrefix(key, []byte(eventKeyPrefix)) {
			removed++
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush %s eviction: %w", kind, err)
	}
	return removed, nil
}

// Sessions implements SessionLister.
func (s *BadgerStore) Sessions(ctx context.Context, kind Kind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(eventKeyPrefix + string(kind) + "/")
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		for it.ValidForPrefix(prefix) {
			rest := it.Item().Key()[len(prefix):]
			end := bytes.IndexByte(rest, '/')
			if end <= 0 {
				it.Next()
				continue
			}
			session := string(rest[:end])
			out = append(out, session)
			// '0' sorts right after '/', so this skips the rest of the session
			it.Seek([]byte(string(prefix) + session + "0"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s sessions: %w", kind, err)
	}
	return out, nil
}

func encodeTimestamp(t time.Time) []byte {
	n := t.UnixNano()
	if n < 0 {
		n = 0
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

func eventPrefix(kind Kind, sessionID string) []byte {
	return []byte(eventKeyPrefix + string(kind) + "/" + sessionID + "/")
}

func eventKey(kind Kind, sessionID string, ts []byte, id string) []byte {
	key := eventPrefix(kind, sessionID)
	key = append(key, ts...)
	key = append(key, '/')
	return append(key, id...)
}

func ageKey(kind Kind, ts []byte, sessionID, id string) []byte {
	key := []byte(ageKeyPrefix + string(kind) + "/")
	key = append(key, ts...)
	key = append(key, sessionID...)
	key = append(key, '/')
	return append(key, id...)
}

func splitAgeTail(tail []byte) (session, id string, ok bool) {
	i := bytes.IndexByte(tail, '/')
	if i <= 0 || i == len(tail)-1 {
		return "", "", false
	}
	return string(tail[:i]), string(tail[i+1:]), true
}
