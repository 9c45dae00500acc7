// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Action   string `json:"action" validate:"required,oneof=view click dismiss"`
	Position int    `json:"position" validate:"gte=0,lte=49"`
	Query    string `json:"query" validate:"omitempty,max=8"`
	Limit    int    `json:"limit" validate:"min=1,max=50"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantMsg   string
	}{
		{
			name: "valid",
			req:  sampleRequest{Action: "click", Position: 2, Limit: 10},
		},
		{
			name:      "missing action",
			req:       sampleRequest{Limit: 10},
			wantField: "action",
			wantMsg:   "action is required",
		},
		{
			name:      "bad action",
			req:       sampleRequest{Action: "purchase", Limit: 10},
			wantField: "action",
			wantMsg:   "action must be one of: view click dismiss",
		},
		{
			name:      "position too large",
			req:       sampleRequest{Action: "view", Position: 50, Limit: 10},
			wantField: "position",
			wantMsg:   "position must be less than or equal to 49",
		},
		{
			name:      "query too long",
			req:       sampleRequest{Action: "view", Query: "way too long", Limit: 10},
			wantField: "query",
			wantMsg:   "query must be at most 8 characters",
		},
		{
			name:      "limit too high",
			req:       sampleRequest{Action: "view", Limit: 51},
			wantField: "limit",
			wantMsg:   "limit must be at most 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Fields[0].Field, tt.wantField)
			}
			if verr.Fields[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Fields[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&sampleRequest{Action: "nope", Limit: 0})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("expected multi-field details, got %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "limit must be at least 1") {
		t.Errorf("message = %q", apiErr.Message)
	}
}
