// Package maturity converts raw professional-profile payloads from external
// enrichment providers into the normalized MaturityData consumed by the
// feature calculator. Providers are pluggable by configuration name;
// unknown names fall back to the identity adapter.
package maturity

import (
	"log/slog"
	"strconv"

	"github.com/onnwee/lexmatch/internal/match"
)

// Adapter converts a raw provider payload into normalized maturity data.
// Implementations must be total: any payload, including nil, yields a
// usable (possibly zero) MaturityData.
type Adapter interface {
	// Name returns the provider name this adapter handles.
	Name() string
	// Convert normalizes a raw payload. Missing or malformed fields
	// degrade to zero values, never to an error.
	Convert(raw map[string]any) match.MaturityData
}

// DefaultProvider is the registry fallback for unknown provider names.
const DefaultProvider = "identity"

// registry maps provider names to adapters. Populated at init; resolved
// once at startup via Resolve.
var registry = map[string]Adapter{}

// Register adds an adapter to the registry, replacing any previous adapter
// with the same name. Called from init functions of adapter files.
func Register(a Adapter) {
	registry[a.Name()] = a
}

// Resolve returns the adapter for a provider name. Unknown names log a
// warning and fall back to the identity adapter.
func Resolve(provider string) Adapter {
	if provider == "" {
		provider = DefaultProvider
	}
	a, ok := registry[provider]
	if !ok {
		slog.Warn("unknown maturity provider, falling back to identity adapter",
			"provider", provider)
		return registry[DefaultProvider]
	}
	return a
}

// Providers returns the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// IdentityAdapter passes through payloads that already use the normalized
// field names. It is the documented default for absent or pre-normalized
// data.
type IdentityAdapter struct{}

func (IdentityAdapter) Name() string { return DefaultProvider }

// Convert reads the normalized field names directly from the payload.
func (IdentityAdapter) Convert(raw map[string]any) match.MaturityData {
	return match.MaturityData{
		ExperienceYears:     asInt(raw["experience_years"]),
		NetworkStrength:     asInt(raw["network_strength"]),
		ReputationSignals:   asInt(raw["reputation_signals"]),
		ResponsivenessHours: asFloat(raw["responsiveness_hours"]),
	}
}

func init() {
	Register(IdentityAdapter{})
}

// asInt coerces a decoded JSON value to int, defaulting to 0.
func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// asFloat coerces a decoded JSON value to float64, defaulting to 0.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
