// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package catalog is the read side of the content catalog: item attributes
// and engagement aggregates for movies, characters, reviews and guides.
//
// The recommender only reads through Store. Implementations are an
// in-memory store seeded from JSON, a DuckDB-backed store, and GuardedStore,
// which adds timeouts, a circuit breaker and an LRU in front of either.
package catalog

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when no item has the requested id.
var ErrNotFound = errors.New("catalog: item not found")

// ContentType identifies what kind of page an item is.
type ContentType string

const (
	TypeMovie     ContentType = "movie"
	TypeCharacter ContentType = "character"
	TypeReview    ContentType = "review"
	TypeGuide     ContentType = "guide"
)

// AllTypes lists every content type in display order.
var AllTypes = []ContentType{TypeMovie, TypeCharacter, TypeReview, TypeGuide}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case TypeMovie, TypeCharacter, TypeReview, TypeGuide:
		return true
	}
	return false
}

// Item is one catalog entry. IDs are unique across all content types.
type Item struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle,omitempty"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	URL         string      `json:"url"`

	// Similarity features
	Genres    []string `json:"genres,omitempty"`
	Directors []string `json:"directors,omitempty"`
	Year      int      `json:"year,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	// Engagement aggregates
	ViewCount int64   `json:"viewCount"`
	VoteCount int64   `json:"voteCount"`
	Rating    float64 `json:"rating"`

	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Popularity is the aggregate the popularity ranking orders by.
func (it *Item) Popularity() int64 {
	return it.ViewCount + it.VoteCount
}

// Freshness is the later of the publish and update timestamps.
func (it *Item) Freshness() time.Time {
	if it.UpdatedAt.After(it.PublishedAt) {
		return it.UpdatedAt
	}
	return it.PublishedAt
}

// Era returns the decade of the item's year, or 0 when the year is unknown.
func (it *Item) Era() int {
	if it.Year <= 0 {
		return 0
	}
	return it.Year / 10 * 10
}

// Store reads catalog items.
type Store interface {
	// Get returns the item with id or ErrNotFound.
	Get(ctx context.Context, id string) (Item, error)

	// List returns all items of the given types (all types when empty),
	// ordered by id.
	List(ctx context.Context, types []ContentType) ([]Item, error)
}

// MatchesTypes reports whether t is allowed by the filter. An empty filter
// allows everything.
func MatchesTypes(t ContentType, types []ContentType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

func sortByID(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

// cloneItem copies the slices so callers cannot mutate stored items.
func cloneItem(it Item) Item {
	it.Genres = append([]string(nil), it.Genres...)
	it.Directors = append([]string(nil), it.Directors...)
	it.Tags = append([]string(nil), it.Tags...)
	return it
}
