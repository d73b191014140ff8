package ranking

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestProviderGet tests preset resolution and fallback behavior.
func TestProviderGet(t *testing.T) {
	p := NewProvider(ProviderConfig{})

	tests := []struct {
		name           string
		preset         string
		expectedPreset string
	}{
		{"known preset", PresetExpert, PresetExpert},
		{"empty name falls back to default", "", DefaultPreset},
		{"unknown name falls back to default", "turbo", DefaultPreset},
		{"trained without calibration falls back to default", PresetTrained, DefaultPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, effective := p.Get(tt.preset)
			if effective != tt.expectedPreset {
				t.Errorf("effective preset = %q, expected %q", effective, tt.expectedPreset)
			}
			expected, _ := PresetWeights(tt.expectedPreset)
			if w != expected {
				t.Errorf("weights mismatch for preset %q", tt.preset)
			}
		})
	}
}

// TestProviderTrainedLifecycle tests calibration load, reload and
// last-known-good fallback.
func TestProviderTrainedLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"area_match": 0.5}`), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(ProviderConfig{CalibrationPath: path})

	w, effective := p.Get(PresetTrained)
	if effective != PresetTrained {
		t.Fatalf("effective preset = %q, expected trained", effective)
	}
	if w.AreaMatch != 0.5 {
		t.Errorf("AreaMatch = %f, expected 0.5", w.AreaMatch)
	}

	// Trained preset now appears in the preset list.
	found := false
	for _, name := range p.Presets() {
		if name == PresetTrained {
			found = true
		}
	}
	if !found {
		t.Error("trained preset missing from Presets() after successful load")
	}

	// A corrupted file on reload must keep the last-known-good vector.
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	p.Reload()

	w, effective = p.Get(PresetTrained)
	if effective != PresetTrained {
		t.Errorf("effective preset = %q, expected trained after failed reload", effective)
	}
	if w.AreaMatch != 0.5 {
		t.Errorf("AreaMatch = %f, expected last-known-good 0.5", w.AreaMatch)
	}

	// A fixed file replaces the snapshot.
	if err := os.WriteFile(path, []byte(`{"area_match": 0.7}`), 0o600); err != nil {
		t.Fatal(err)
	}
	p.Reload()

	w, _ = p.Get(PresetTrained)
	if w.AreaMatch != 0.7 {
		t.Errorf("AreaMatch = %f, expected 0.7 after reload", w.AreaMatch)
	}
}

// TestProviderStartStop tests the background reload job lifecycle.
func TestProviderStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"area_match": 0.4}`), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(ProviderConfig{
		CalibrationPath: path,
		ReloadInterval:  10 * time.Millisecond,
	})
	p.Start(context.Background())

	// Update the file and wait for at least one poll cycle.
	if err := os.WriteFile(path, []byte(`{"area_match": 0.6}`), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w, _ := p.Get(PresetTrained)
		if w.AreaMatch == 0.6 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	w, _ := p.Get(PresetTrained)
	if w.AreaMatch != 0.6 {
		t.Errorf("AreaMatch = %f, expected background reload to pick up 0.6", w.AreaMatch)
	}

	p.Stop()
	// Stopping twice is safe.
	p.Stop()
}

// TestProviderConcurrentReaders ensures Get is safe during reloads.
func TestProviderConcurrentReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"area_match": 0.5}`), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(ProviderConfig{CalibrationPath: path})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			p.Reload()
		}
	}()

	for i := 0; i < 1000; i++ {
		w, _ := p.Get(PresetTrained)
		if w.AreaMatch != 0.5 {
			t.Errorf("unexpected AreaMatch %f during concurrent reload", w.AreaMatch)
		}
	}
	<-done
}
