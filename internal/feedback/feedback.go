// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
)

// ErrInvalidAction is returned for feedback actions other than view, click
// and dismiss.
var ErrInvalidAction = errors.New("invalid feedback action")

// ErrInvalidRecord is returned for records missing required fields.
var ErrInvalidRecord = errors.New("invalid feedback record")

// Action is what a visitor did with a recommended item.
type Action string

const (
	// ActionView is an impression: the item was rendered in view.
	ActionView    Action = "view"
	ActionClick   Action = "click"
	ActionDismiss Action = "dismiss"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionClick, ActionDismiss:
		return true
	}
	return false
}

// EngagedDwell is the dwell time (milliseconds) after which a click counts
// as engaged.
const EngagedDwell int64 = 10_000

// Feedback is one visitor action on one recommended item. Records are
// append-only.
type Feedback struct {
	ID               string              `json:"id"`
	RecommendationID string              `json:"recommendationId" validate:"required,max=64"`
	SessionID        string              `json:"sessionId,omitempty" validate:"omitempty,max=64"`
	ContentID        string              `json:"contentId" validate:"required,max=256"`
	ContentType      catalog.ContentType `json:"contentType" validate:"required"`
	Position         int                 `json:"position" validate:"gte=0,lte=1000"`
	Action           Action              `json:"action" validate:"required"`
	Algorithm        string              `json:"algorithm,omitempty" validate:"omitempty,max=32"`
	Timestamp        time.Time           `json:"timestamp"`
	DwellTime        int64               `json:"dwellTime,omitempty" validate:"gte=0"` // milliseconds
}

// Validate checks the fields the analytics depend on.
func (f *Feedback) Validate() error {
	if !f.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, f.Action)
	}
	if f.RecommendationID == "" || f.ContentID == "" {
		return fmt.Errorf("%w: recommendation and content ids are required", ErrInvalidRecord)
	}
	if !f.ContentType.Valid() {
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidRecord, f.ContentType)
	}
	if f.Position < 0 || f.DwellTime < 0 {
		return fmt.Errorf("%w: negative position or dwell time", ErrInvalidRecord)
	}
	return nil
}

// Engaged reports whether f is a click followed by a long enough visit.
func (f *Feedback) Engaged() bool {
	return f.Action == ActionClick && f.DwellTime >= EngagedDwell
}

// ServedItem is one slot of a served recommendation list.
type ServedItem struct {
	ContentID   string              `json:"contentId"`
	ContentType catalog.ContentType `json:"contentType"`
	Position    int                 `json:"position"`
	Algorithm   string              `json:"algorithm"`
	Strategy    string              `json:"strategy"`
}

// Served records a recommendation list that was actually returned to a
// visitor. It is written once per response and attributes later feedback to
// the strategy that placed each item.
type Served struct {
	RecommendationID string       `json:"recommendationId"`
	SessionID        string       `json:"sessionId,omitempty"`
	ContextType      string       `json:"contextType"`
	ContextID        string       `json:"contextId,omitempty"`
	ServedAt         time.Time    `json:"servedAt"`
	Items            []ServedItem `json:"items"`
}

// Validate checks the ledger entry.
func (s *Served) Validate() error {
	if s.RecommendationID == "" {
		return fmt.Errorf("%w: served list without recommendation id", ErrInvalidRecord)
	}
	if s.ServedAt.IsZero() {
		return fmt.Errorf("%w: served list without timestamp", ErrInvalidRecord)
	}
	return nil
}
