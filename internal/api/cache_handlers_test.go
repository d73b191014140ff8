package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/lexmatch/internal/featurecache"
)

// TestPurgeLawyer tests DELETE /lawyers/{id}/cache.
func TestPurgeLawyer(t *testing.T) {
	store := featurecache.NewMemoryStore(time.Minute)
	ctx := context.Background()
	if err := store.Set(ctx, "adv-1", "maturity", featurecache.Entry{Score: 0.7, ComputedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	h := NewCacheHandlers(store)

	rec := httptest.NewRecorder()
	h.PurgeLawyer(rec, httptest.NewRequest(http.MethodDelete, "/lawyers/adv-1/cache", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := store.Get(ctx, "adv-1", "maturity"); err != featurecache.ErrNotFound {
		t.Errorf("entry survived the purge: %v", err)
	}
}

// TestPurgeLawyerBadPath verifies malformed paths return 404.
func TestPurgeLawyerBadPath(t *testing.T) {
	h := NewCacheHandlers(featurecache.NewMemoryStore(time.Minute))

	for _, path := range []string{"/lawyers//cache", "/lawyers/adv-1", "/other/adv-1/cache"} {
		rec := httptest.NewRecorder()
		h.PurgeLawyer(rec, httptest.NewRequest(http.MethodDelete, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("path %s: status = %d, expected 404", path, rec.Code)
		}
	}
}

// TestPurgeLawyerWrongMethod verifies non-DELETE methods are rejected.
func TestPurgeLawyerWrongMethod(t *testing.T) {
	h := NewCacheHandlers(featurecache.NewMemoryStore(time.Minute))

	rec := httptest.NewRecorder()
	h.PurgeLawyer(rec, httptest.NewRequest(http.MethodGet, "/lawyers/adv-1/cache", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
