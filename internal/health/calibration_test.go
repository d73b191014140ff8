package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestCalibrationChecker tests the calibration-file probe.
func TestCalibrationChecker(t *testing.T) {
	t.Run("empty path is healthy", func(t *testing.T) {
		if err := NewCalibrationChecker("").HealthCheck(context.Background()); err != nil {
			t.Errorf("expected healthy, got %v", err)
		}
	})

	t.Run("existing file is healthy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.json")
		if err := os.WriteFile(path, []byte(`{"area_match":0.3}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := NewCalibrationChecker(path).HealthCheck(context.Background()); err != nil {
			t.Errorf("expected healthy, got %v", err)
		}
	})

	t.Run("missing file is unhealthy", func(t *testing.T) {
		if err := NewCalibrationChecker("/nonexistent/weights.json").HealthCheck(context.Background()); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("directory is unhealthy", func(t *testing.T) {
		if err := NewCalibrationChecker(t.TempDir()).HealthCheck(context.Background()); err == nil {
			t.Error("expected an error for a directory")
		}
	})
}
