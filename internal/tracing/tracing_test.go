package tracing

import (
	"context"
	"testing"
)

// TestNewProviderDisabled verifies a disabled provider is inert but usable.
func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	if p.IsEnabled() {
		t.Error("expected disabled provider")
	}
	if p.Tracer("test") == nil {
		t.Error("disabled provider must still hand out a tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on disabled provider: %v", err)
	}
}

// TestNewProviderValidation verifies config validation.
func TestNewProviderValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing service name", Config{Enabled: true, SamplingRate: 1.0}},
		{"sampling rate above one", Config{Enabled: true, ServiceName: "lexmatch", SamplingRate: 1.5}},
		{"negative sampling rate", Config{Enabled: true, ServiceName: "lexmatch", SamplingRate: -0.1}},
		{"unknown exporter", Config{Enabled: true, ServiceName: "lexmatch", SamplingRate: 1.0, ExporterType: "jaeger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(tt.cfg); err == nil {
				t.Error("expected a config error")
			}
		})
	}
}

// TestStartSpanEndsCleanly verifies the helper round-trip without an
// installed exporter.
func TestStartSpanEndsCleanly(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "rank_candidates")
	if ctx == nil {
		t.Fatal("expected a derived context")
	}
	end(nil)

	_, end = StartCacheSpan(context.Background(), CacheOperationGet)
	end(context.Canceled) // error path must not panic
}
