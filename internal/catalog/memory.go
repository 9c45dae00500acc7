// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// MemoryStore keeps the catalog in memory. It is used for the JSON seed
// backend and throughout the tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryStore returns a store holding items. Later duplicates win.
func NewMemoryStore(items ...Item) *MemoryStore {
	s := &MemoryStore{items: make(map[string]Item, len(items))}
	for i := range items {
		s.items[items[i].ID] = cloneItem(items[i])
	}
	return s
}

// LoadFile reads a JSON array of items from path.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog seed %s: %w", path, err)
	}
	for i := range items {
		if items[i].ID == "" {
			return nil, fmt.Errorf("catalog seed item %d has no id", i)
		}
		if !items[i].Type.Valid() {
			return nil, fmt.Errorf("catalog seed item %s has unknown type %q", items[i].ID, items[i].Type)
		}
	}
	return NewMemoryStore(items...), nil
}

// Put inserts or replaces an item.
func (s *MemoryStore) Put(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = cloneItem(it)
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return cloneItem(it), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, types []ContentType) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if MatchesTypes(it.Type, types) {
			out = append(out, cloneItem(it))
		}
	}
	sortByID(out)
	return out, nil
}

// Len returns the number of items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
