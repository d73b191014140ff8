package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/lexmatch/internal/middleware"
)

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlers provides health and readiness check endpoints for
// Kubernetes probes.
type HealthHandlers struct {
	// Feature cache checker (optional; nil with the in-process store)
	cacheChecker HealthChecker

	// Calibration file checker (optional)
	calibrationChecker HealthChecker
}

// HealthHandlersConfig configures the health check handlers.
type HealthHandlersConfig struct {
	CacheChecker       HealthChecker
	CalibrationChecker HealthChecker
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		cacheChecker:       config.CacheChecker,
		calibrationChecker: config.CalibrationChecker,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
// Returns 200 if the application is running and can serve requests.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	// Liveness is simple: if we can respond, we're alive
	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}

// Ready handles GET /ready (readiness probe).
// Returns 200 if the application is ready to serve traffic; checks the
// feature cache and calibration file and returns 503 if a dependency is
// unavailable.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.cacheChecker != nil {
		if err := h.cacheChecker.HealthCheck(ctx); err != nil {
			checks["cache"] = "error"
			healthy = false
			slog.WarnContext(ctx, "cache health check failed", "error", err)
		} else {
			checks["cache"] = "ok"
		}
	} else {
		// In-process cache has no external dependency
		checks["cache"] = "ok"
	}

	if h.calibrationChecker != nil {
		if err := h.calibrationChecker.HealthCheck(ctx); err != nil {
			checks["calibration"] = "error"
			healthy = false
			slog.WarnContext(ctx, "calibration health check failed", "error", err)
		} else {
			checks["calibration"] = "ok"
		}
	}

	status := "ready"
	code := http.StatusOK
	if !healthy {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode ready response", "error", err)
	}
}
