// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"context"
	"sync"
	"time"
)

// DefaultRetention is how long feedback and served records are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Store persists feedback and the served-recommendation ledger. List calls
// return records at or after since, oldest first.
type Store interface {
	AppendFeedback(ctx context.Context, f Feedback) error
	AppendServed(ctx context.Context, s Served) error
	ListFeedback(ctx context.Context, since time.Time) ([]Feedback, error)
	ListServed(ctx context.Context, since time.Time) ([]Served, error)
	// Evict removes records older than before and returns how many went.
	Evict(ctx context.Context, before time.Time) (int, error)
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	feedback []Feedback
	served   []Served
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AppendFeedback implements Store.
//
//nolint:gocritic // hugeParam: stored by value
func (m *MemoryStore) AppendFeedback(ctx context.Context, f Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = insertSorted(m.feedback, f, func(x Feedback) time.Time { return x.Timestamp })
	return nil
}

// AppendServed implements Store.
//
//nolint:gocritic // hugeParam: stored by value
func (m *MemoryStore) AppendServed(ctx context.Context, s Served) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.Items = append([]ServedItem(nil), s.Items...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.served = insertSorted(m.served, s, func(x Served) time.Time { return x.ServedAt })
	return nil
}

// ListFeedback implements Store.
func (m *MemoryStore) ListFeedback(ctx context.Context, since time.Time) ([]Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Feedback
	for i := range m.feedback {
		if !m.feedback[i].Timestamp.Before(since) {
			out = append(out, m.feedback[i])
		}
	}
	return out, nil
}

// ListServed implements Store.
func (m *MemoryStore) ListServed(ctx context.Context, since time.Time) ([]Served, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Served
	for i := range m.served {
		if m.served[i].ServedAt.Before(since) {
			continue
		}
		s := m.served[i]
		s.Items = append([]ServedItem(nil), s.Items...)
		out = append(out, s)
	}
	return out, nil
}

// Evict implements Store.
func (m *MemoryStore) Evict(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	keptFeedback := m.feedback[:0]
	for i := range m.feedback {
		if m.feedback[i].Timestamp.Before(before) {
			n++
			continue
		}
		keptFeedback = append(keptFeedback, m.feedback[i])
	}
	m.feedback = keptFeedback

	keptServed := m.served[:0]
	for i := range m.served {
		if m.served[i].ServedAt.Before(before) {
			n++
			continue
		}
		keptServed = append(keptServed, m.served[i])
	}
	m.served = keptServed
	return n, nil
}

// insertSorted keeps list ordered by timestamp; equal timestamps keep
// insertion order.
func insertSorted[T any](list []T, v T, ts func(T) time.Time) []T {
	i := len(list)
	for i > 0 && ts(list[i-1]).After(ts(v)) {
		i--
	}
	list = append(list, v)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}
