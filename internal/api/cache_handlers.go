package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/lexmatch/internal/featurecache"
	"github.com/onnwee/lexmatch/internal/middleware"
)

// CacheHandlers holds dependencies for feature-cache HTTP handlers.
type CacheHandlers struct {
	store featurecache.Store
}

// NewCacheHandlers creates a new CacheHandlers instance.
func NewCacheHandlers(store featurecache.Store) *CacheHandlers {
	return &CacheHandlers{
		store: store,
	}
}

// PurgeLawyer handles DELETE /lawyers/{id}/cache: invalidates every cached
// feature for one lawyer. Upstream profile services call this when a
// lawyer's resume, maturity data or reviews change.
func (h *CacheHandlers) PurgeLawyer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	// Path shape: /lawyers/{id}/cache
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "lawyers" || parts[2] != "cache" || parts[1] == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Not found")
		return
	}
	lawyerID := parts[1]

	if err := h.store.Purge(r.Context(), lawyerID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		slog.ErrorContext(ctx, "cache purge failed", "lawyer_id", lawyerID, "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Cache purge failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
