package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestWriteError verifies the standardized error envelope.
func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, context.Background(), http.StatusBadRequest, ErrCodeInvalidInput, "urgency_hours must be positive when set")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("code = %s", resp.Error.Code)
	}
	if resp.Error.Message != "urgency_hours must be positive when set" {
		t.Errorf("message = %s", resp.Error.Message)
	}
}

// TestStatusCodeMapping verifies the recommended status for each code.
func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusCodeMapping(tt.code); got != tt.expected {
			t.Errorf("StatusCodeMapping(%s) = %d, expected %d", tt.code, got, tt.expected)
		}
	}
}
