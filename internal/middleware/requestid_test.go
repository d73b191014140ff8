package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// TestRequestIDGenerated verifies a UUID is generated when the header is
// absent.
func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/rank", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Fatal("expected a generated request ID in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("request ID is not a valid UUID: %s", captured)
	}
	if rec.Header().Get(RequestIDHeader) != captured {
		t.Error("response header does not match the context request ID")
	}
}

// TestRequestIDPropagated verifies an inbound header is reused.
func TestRequestIDPropagated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/rank", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != "client-supplied-id" {
		t.Errorf("expected client-supplied-id, got %s", captured)
	}
	if rec.Header().Get(RequestIDHeader) != "client-supplied-id" {
		t.Error("inbound request ID not echoed in the response")
	}
}

// TestGetRequestIDMissing verifies the accessor on an empty context.
func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty string, got %s", got)
	}
}
