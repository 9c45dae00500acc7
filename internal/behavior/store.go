// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"context"
	"time"
)

// Store is the session-scoped event log.
type Store interface {
	// Append persists a validated event.
	Append(ctx context.Context, e Event) error

	// Query returns one session's events of one kind, newest first. A limit
	// of zero or less returns every event.
	Query(ctx context.Context, sessionID string, kind Kind, limit int) ([]Event, error)

	// Evict removes events of kind older than maxAge and reports how many
	// were removed.
	Evict(ctx context.Context, kind Kind, maxAge time.Duration) (int, error)
}

// SessionLister enumerates sessions that have events of a kind. Only the
// anonymized similarity index is given this capability.
type SessionLister interface {
	Sessions(ctx context.Context, kind Kind) ([]string, error)
}

// SessionEvents loads every kind for one session. Kinds that fail to load
// are skipped and the first error is returned alongside the partial result.
func SessionEvents(ctx context.Context, s Store, sessionID string) (map[Kind][]Event, error) {
	out := make(map[Kind][]Event, len(Kinds))
	var firstErr error
	for _, k := range Kinds {
		events, err := s.Query(ctx, sessionID, k, 0)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[k] = events
	}
	return out, firstErr
}
