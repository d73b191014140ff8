// Package main contains integration tests for the API server wiring.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onnwee/lexmatch/internal/config"
	"github.com/onnwee/lexmatch/internal/ranking"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  8080,
		Env:                   "test",
		DefaultPreset:         ranking.DefaultPreset,
		CalibrationReloadSec:  300,
		MaxRadiusKm:           50,
		EquityFloor:           0.05,
		MinEpsilon:            0.02,
		RankConcurrency:       4,
		DefaultTopN:           5,
		MaxPerFirm:            2,
		AvailabilityTimeoutMS: 100,
		CacheTTLSec:           60,
		MaturityProvider:      "identity",
	}
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, cleanup, err := buildHandler(testConfig(), logger, nil)
	if err != nil {
		t.Fatalf("buildHandler failed: %v", err)
	}
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHealthAndReady(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestServerRank(t *testing.T) {
	srv := testServer(t)

	body := `{
		"case": {"id": "c-1", "area": "Trabalhista"},
		"candidates": [{
			"id": "adv-1",
			"expertise_tags": ["Trabalhista"],
			"kpi": {"success_rate": 0.8, "success_status": "verified", "monthly_capacity": 20}
		}]
	}`
	resp, err := http.Post(srv.URL+"/rank", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}

	var decoded struct {
		Count        int    `json:"count"`
		Preset       string `json:"preset"`
		DegradedMode bool   `json:"degraded_mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Count != 1 {
		t.Errorf("count = %d", decoded.Count)
	}
	if decoded.Preset != ranking.DefaultPreset {
		t.Errorf("preset = %s", decoded.Preset)
	}
	// No availability provider is configured in the test wiring.
	if !decoded.DegradedMode {
		t.Error("expected degraded mode without an availability provider")
	}
}

func TestServerPresets(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/presets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var decoded struct {
		Presets []struct {
			Name string `json:"name"`
		} `json:"presets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Presets) == 0 {
		t.Error("expected at least one preset")
	}
}

func TestServerCachePurge(t *testing.T) {
	srv := testServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/lawyers/adv-1/cache", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServerMetricsExposition(t *testing.T) {
	srv := testServer(t)

	// Drive one instrumented request so the counters have samples.
	resp, err := http.Get(srv.URL + "/presets")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "http_requests_total") {
		t.Error("exposition missing http_requests_total")
	}
}

func TestServerNotFound(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var decoded struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("404 body is not the error envelope: %v", err)
	}
	if decoded.Error.Code != "not_found" {
		t.Errorf("code = %s", decoded.Error.Code)
	}
}

// TestGracefulShutdown verifies a started server drains cleanly.
func TestGracefulShutdown(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, cleanup, err := buildHandler(testConfig(), logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Config.Shutdown(ctx); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
