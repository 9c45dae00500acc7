// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package behavior captures what a visitor does during one session: page
// views, searches and content interactions.
//
// Events are append-only and keyed by session. Each kind lives in its own
// key namespace with its own retention window, and nothing in the Store
// contract reads across sessions. The narrower SessionLister exists only
// for the similarity index.
package behavior

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
)

// ErrInvalidEvent is wrapped by every validation failure.
var ErrInvalidEvent = errors.New("behavior: invalid event")

// Kind is an event namespace.
type Kind string

const (
	KindPageView    Kind = "page_view"
	KindSearch      Kind = "search"
	KindInteraction Kind = "interaction"
)

// Kinds lists every event kind.
var Kinds = []Kind{KindPageView, KindSearch, KindInteraction}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPageView, KindSearch, KindInteraction:
		return true
	}
	return false
}

// InteractionKind is what the visitor did with a piece of content.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionTagClick InteractionKind = "tag_click"
	InteractionComment  InteractionKind = "comment"
	InteractionLike     InteractionKind = "like"
	InteractionShare    InteractionKind = "share"
	InteractionFavorite InteractionKind = "favorite"
)

// Valid reports whether k is a known interaction.
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionView, InteractionTagClick, InteractionComment,
		InteractionLike, InteractionShare, InteractionFavorite:
		return true
	}
	return false
}

// PageView is one rendered page.
type PageView struct {
	PageType    string              `json:"pageType"`
	EntityID    string              `json:"entityId,omitempty"`
	ContentType catalog.ContentType `json:"contentType,omitempty"`
	DwellTime   int64               `json:"dwellTime"`   // milliseconds
	ScrollDepth float64             `json:"scrollDepth"` // percent, 0-100
}

// Search is one submitted query.
type Search struct {
	Query          string   `json:"query"`
	ResultCount    int      `json:"resultCount"`
	ClickedResults []string `json:"clickedResults,omitempty"`
}

// Interaction is one explicit action on a content item.
type Interaction struct {
	ContentType catalog.ContentType `json:"contentType"`
	ContentID   string              `json:"contentId"`
	Interaction InteractionKind     `json:"interaction"`
	Tag         string              `json:"tag,omitempty"`
}

// Event is a single behavior record. Exactly one payload matching Kind is
// set. Events are never modified after Append.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`

	PageView    *PageView    `json:"pageView,omitempty"`
	Search      *Search      `json:"search,omitempty"`
	Interaction *Interaction `json:"interaction,omitempty"`
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSessionID reports whether id is usable as a storage key component.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Validate checks the envelope and the payload for e.Kind.
func (e *Event) Validate() error {
	if !ValidSessionID(e.SessionID) {
		return fmt.Errorf("%w: bad session id %q", ErrInvalidEvent, e.SessionID)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}

	switch e.Kind {
	case KindPageView:
		pv := e.PageView
		if pv == nil || pv.PageType == "" {
			return fmt.Errorf("%w: page view needs a page type", ErrInvalidEvent)
		}
		if pv.DwellTime < 0 || pv.ScrollDepth < 0 || pv.ScrollDepth > 100 {
			return fmt.Errorf("%w: dwell %d / scroll %.1f out of range", ErrInvalidEvent, pv.DwellTime, pv.ScrollDepth)
		}
		if pv.ContentType != "" && !pv.ContentType.Valid() {
			return fmt.Errorf("%w: unknown content type %q", ErrInvalidEvent, pv.ContentType)
		}
	case KindSearch:
		if e.Search == nil || e.Search.Query == "" || e.Search.ResultCount < 0 {
			return fmt.Errorf("%w: search needs a query", ErrInvalidEvent)
		}
	case KindInteraction:
		in := e.Interaction
		if in == nil || in.ContentID == "" || !in.ContentType.Valid() || !in.Interaction.Valid() {
			return fmt.Errorf("%w: interaction needs content and a known kind", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}

// Clone returns a deep copy.
func (e *Event) Clone() Event {
	c := *e
	if e.PageView != nil {
		pv := *e.PageView
		c.PageView = &pv
	}
	if e.Search != nil {
		s := *e.Search
		s.ClickedResults = append([]string(nil), e.Search.ClickedResults...)
		c.Search = &s
	}
	if e.Interaction != nil {
		in := *e.Interaction
		c.Interaction = &in
	}
	return c
}

// Retention maps each kind to its maximum age.
type Retention map[Kind]time.Duration

// DefaultRetention keeps page views shortest and interactions longest.
func DefaultRetention() Retention {
	return Retention{
		KindPageView:    7 * 24 * time.Hour,
		KindSearch:      14 * 24 * time.Hour,
		KindInteraction: 30 * 24 * time.Hour,
	}
}

// For returns the window for k, falling back to the default.
func (r Retention) For(k Kind) time.Duration {
	if d, ok := r[k]; ok && d > 0 {
		return d
	}
	return DefaultRetention()[k]
}
