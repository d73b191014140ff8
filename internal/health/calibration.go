package health

import (
	"context"
	"fmt"
	"os"
)

// CalibrationChecker verifies the trained-weights calibration file is
// present and readable. An empty path is healthy: the service then serves
// built-in presets only.
type CalibrationChecker struct {
	path string
}

// NewCalibrationChecker creates a calibration-file health checker.
func NewCalibrationChecker(path string) *CalibrationChecker {
	return &CalibrationChecker{
		path: path,
	}
}

// HealthCheck stats the calibration file.
func (c *CalibrationChecker) HealthCheck(_ context.Context) error {
	if c.path == "" {
		return nil
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("calibration file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("calibration file %s is a directory", c.path)
	}
	return nil
}
