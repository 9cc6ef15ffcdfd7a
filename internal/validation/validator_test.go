// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package validation

import (
	"strings"
	"testing"
)

type recommendationParams struct {
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	ProductID int64  `json:"product_id" validate:"gte=0"`
	UserID    string `json:"user_id,omitempty" validate:"omitempty,max=16,identifier"`
}

type rebuildParams struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Mode      string `json:"mode" validate:"omitempty,oneof=sync async"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{"valid recommendation", &recommendationParams{Limit: 10, ProductID: 3, UserID: "u-1"}, "", ""},
		{"zero limit allowed", &recommendationParams{}, "", ""},
		{"limit too large", &recommendationParams{Limit: 101}, "limit", "limit must be less than or equal to 100"},
		{"negative limit", &recommendationParams{Limit: -1}, "limit", "limit must be greater than or equal to 0"},
		{"negative product", &recommendationParams{ProductID: -4}, "product_id", "product_id must be greater than or equal to 0"},
		{"user id with space", &recommendationParams{UserID: "bob smith"}, "user_id", "user_id must not contain whitespace or control characters"},
		{"user id with newline", &recommendationParams{UserID: "bob\n"}, "user_id", "user_id must not contain whitespace or control characters"},
		{"user id too long", &recommendationParams{UserID: strings.Repeat("u", 17)}, "user_id", "user_id must be at most 16 characters"},
		{"missing product", &rebuildParams{}, "product_id", "product_id is required"},
		{"bad mode", &rebuildParams{ProductID: 1, Mode: "later"}, "mode", "mode must be one of: sync async"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&recommendationParams{Limit: 500})
	apiErr := single.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "limit" || apiErr.Details["tag"] != "lte" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&recommendationParams{Limit: 500, ProductID: -1})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "limit") || !strings.Contains(apiErr.Message, "product_id") {
		t.Errorf("Message = %q", apiErr.Message)
	}

	empty := &RequestValidationError{}
	if empty.ToAPIError().Message != "Validation failed" || empty.Error() != "validation failed" {
		t.Error("empty error formatting changed")
	}
}
