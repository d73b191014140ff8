// Package config provides configuration loading and validation for the
// matching service. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/onnwee/lexmatch/internal/ranking"
)

// Config holds all configuration values for the matching service.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Ranking
	DefaultPreset        string  `koanf:"default_preset"`
	CalibrationPath      string  `koanf:"calibration_path"`
	CalibrationReloadSec int     `koanf:"calibration_reload_sec"`
	EmbeddingDim         int     `koanf:"embedding_dim"`
	MaxRadiusKm          float64 `koanf:"max_radius_km"`
	EquityFloor          float64 `koanf:"equity_floor"`
	MinEpsilon           float64 `koanf:"min_epsilon"`
	RankConcurrency      int     `koanf:"rank_concurrency"`
	DefaultTopN          int     `koanf:"default_top_n"`

	// Diversity policy
	DiversityEnabled bool `koanf:"diversity_enabled"`
	MaxPerFirm       int  `koanf:"max_per_firm"`

	// Availability provider. AvailabilityURL empty means no live provider
	// is consulted and every request serves in degraded mode.
	AvailabilityURL       string `koanf:"availability_url"`
	AvailabilityTimeoutMS int    `koanf:"availability_timeout_ms"`

	// Feature cache. RedisAddr empty means the in-process store.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	CacheTTLSec   int    `koanf:"cache_ttl_sec"`

	// Maturity provider adapter
	MaturityProvider string `koanf:"maturity_provider"`

	// Tracing
	TracingEnabled bool   `koanf:"tracing_enabled"`
	OTLPEndpoint   string `koanf:"otlp_endpoint"`
}

// Configuration validation errors.
var (
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidPreset      = errors.New("DEFAULT_PRESET must name a known weight preset")
	ErrInvalidEquityFloor = errors.New("EQUITY_FLOOR must be between 0.0 and 1.0")
	ErrInvalidMinEpsilon  = errors.New("MIN_EPSILON must be between 0.0 and 1.0")
	ErrInvalidRadius      = errors.New("MAX_RADIUS_KM must be positive")
	ErrInvalidEmbedding   = errors.New("EMBEDDING_DIM must be non-negative")
	ErrMissingCalibration = errors.New("CALIBRATION_PATH is required when DEFAULT_PRESET is trained")
)

// Default values for non-secret configuration.
const (
	DefaultPort                  = 8080
	DefaultEnv                   = "development"
	DefaultCalibrationReloadSec  = 300
	DefaultMaxRadiusKm           = 50.0
	DefaultEquityFloor           = 0.05
	DefaultMinEpsilon            = 0.02
	DefaultRankConcurrency       = 8
	DefaultTopN                  = 5
	DefaultMaxPerFirm            = 2
	DefaultAvailabilityTimeoutMS = 1500
	DefaultCacheTTLSec           = 21600 // 6h
	DefaultMaturityProvider      = "identity"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error
// is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try LEXMATCH_PORT first, then PORT for conventional deploys
	port, portErr := getEnvIntOrDefaultMulti([]string{"LEXMATCH_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	reloadSec, reloadErr := getEnvIntOrDefault("CALIBRATION_RELOAD_SEC", k.Int("calibration_reload_sec"), DefaultCalibrationReloadSec)
	if reloadErr != nil {
		loadErrs = append(loadErrs, reloadErr)
	}
	embeddingDim, embErr := getEnvIntOrDefault("EMBEDDING_DIM", k.Int("embedding_dim"), 0)
	if embErr != nil {
		loadErrs = append(loadErrs, embErr)
	}
	concurrency, concErr := getEnvIntOrDefault("RANK_CONCURRENCY", k.Int("rank_concurrency"), DefaultRankConcurrency)
	if concErr != nil {
		loadErrs = append(loadErrs, concErr)
	}
	topN, topNErr := getEnvIntOrDefault("DEFAULT_TOP_N", k.Int("default_top_n"), DefaultTopN)
	if topNErr != nil {
		loadErrs = append(loadErrs, topNErr)
	}
	maxPerFirm, firmErr := getEnvIntOrDefault("MAX_PER_FIRM", k.Int("max_per_firm"), DefaultMaxPerFirm)
	if firmErr != nil {
		loadErrs = append(loadErrs, firmErr)
	}
	availTimeout, availErr := getEnvIntOrDefault("AVAILABILITY_TIMEOUT_MS", k.Int("availability_timeout_ms"), DefaultAvailabilityTimeoutMS)
	if availErr != nil {
		loadErrs = append(loadErrs, availErr)
	}
	cacheTTL, ttlErr := getEnvIntOrDefault("CACHE_TTL_SEC", k.Int("cache_ttl_sec"), DefaultCacheTTLSec)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	maxRadius, radiusErr := getEnvFloatOrDefault("MAX_RADIUS_KM", k.Float64("max_radius_km"), DefaultMaxRadiusKm)
	if radiusErr != nil {
		loadErrs = append(loadErrs, radiusErr)
	}
	equityFloor, floorErr := getEnvFloatOrDefault("EQUITY_FLOOR", k.Float64("equity_floor"), DefaultEquityFloor)
	if floorErr != nil {
		loadErrs = append(loadErrs, floorErr)
	}
	minEpsilon, epsErr := getEnvFloatOrDefault("MIN_EPSILON", k.Float64("min_epsilon"), DefaultMinEpsilon)
	if epsErr != nil {
		loadErrs = append(loadErrs, epsErr)
	}

	diversityEnabled := false
	if k.Exists("diversity_enabled") {
		diversityEnabled = k.Bool("diversity_enabled")
	}
	if val := os.Getenv("DIVERSITY_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			diversityEnabled = true
		case "false", "0", "no", "off":
			diversityEnabled = false
		}
	}

	tracingEnabled := false
	if k.Exists("tracing_enabled") {
		tracingEnabled = k.Bool("tracing_enabled")
	}
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                  port,
		Env:                   getEnvOrDefaultMulti([]string{"LEXMATCH_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DefaultPreset:         getEnvOrDefault("DEFAULT_PRESET", k.String("default_preset"), ranking.DefaultPreset),
		CalibrationPath:       getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		CalibrationReloadSec:  reloadSec,
		EmbeddingDim:          embeddingDim,
		MaxRadiusKm:           maxRadius,
		EquityFloor:           equityFloor,
		MinEpsilon:            minEpsilon,
		RankConcurrency:       concurrency,
		DefaultTopN:           topN,
		DiversityEnabled:      diversityEnabled,
		MaxPerFirm:            maxPerFirm,
		AvailabilityURL:       getEnvOrKoanf("AVAILABILITY_URL", k, "availability_url"),
		AvailabilityTimeoutMS: availTimeout,
		RedisAddr:             getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		RedisPassword:         getEnvOrKoanf("REDIS_PASSWORD", k, "redis_password"),
		CacheTTLSec:           cacheTTL,
		MaturityProvider:      getEnvOrDefault("MATURITY_PROVIDER", k.String("maturity_provider"), DefaultMaturityProvider),
		TracingEnabled:        tracingEnabled,
		OTLPEndpoint:          getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// CalibrationReloadInterval returns the trained-weights reload interval.
func (c *Config) CalibrationReloadInterval() time.Duration {
	return time.Duration(c.CalibrationReloadSec) * time.Second
}

// AvailabilityTimeout returns the availability hard deadline.
func (c *Config) AvailabilityTimeout() time.Duration {
	return time.Duration(c.AvailabilityTimeoutMS) * time.Millisecond
}

// CacheTTL returns the feature cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// Note: a zero value from a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all configuration values are coherent.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if !knownPreset(c.DefaultPreset) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPreset, c.DefaultPreset))
	}
	if c.DefaultPreset == ranking.PresetTrained && c.CalibrationPath == "" {
		errs = append(errs, ErrMissingCalibration)
	}
	if c.EquityFloor <= 0.0 || c.EquityFloor >= 1.0 {
		errs = append(errs, ErrInvalidEquityFloor)
	}
	if c.MinEpsilon <= 0.0 || c.MinEpsilon >= 1.0 {
		errs = append(errs, ErrInvalidMinEpsilon)
	}
	if c.MaxRadiusKm <= 0 {
		errs = append(errs, ErrInvalidRadius)
	}
	if c.EmbeddingDim < 0 {
		errs = append(errs, ErrInvalidEmbedding)
	}

	return errs
}

// knownPreset reports whether name is a selectable weight preset.
func knownPreset(name string) bool {
	if name == ranking.PresetTrained {
		return true
	}
	_, ok := ranking.PresetWeights(name)
	return ok
}

// LogSummary returns a summary of the configuration suitable for logging.
// Secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                    fmt.Sprintf("%d", c.Port),
		"env":                     c.Env,
		"default_preset":          c.DefaultPreset,
		"calibration_path":        c.CalibrationPath,
		"calibration_reload_sec":  fmt.Sprintf("%d", c.CalibrationReloadSec),
		"embedding_dim":           fmt.Sprintf("%d", c.EmbeddingDim),
		"max_radius_km":           fmt.Sprintf("%g", c.MaxRadiusKm),
		"equity_floor":            fmt.Sprintf("%g", c.EquityFloor),
		"min_epsilon":             fmt.Sprintf("%g", c.MinEpsilon),
		"rank_concurrency":        fmt.Sprintf("%d", c.RankConcurrency),
		"default_top_n":           fmt.Sprintf("%d", c.DefaultTopN),
		"diversity_enabled":       fmt.Sprintf("%t", c.DiversityEnabled),
		"max_per_firm":            fmt.Sprintf("%d", c.MaxPerFirm),
		"availability_url":        c.AvailabilityURL,
		"availability_timeout_ms": fmt.Sprintf("%d", c.AvailabilityTimeoutMS),
		"redis_addr":              c.RedisAddr,
		"redis_password":          maskSecret(c.RedisPassword),
		"cache_ttl_sec":           fmt.Sprintf("%d", c.CacheTTLSec),
		"maturity_provider":       c.MaturityProvider,
		"tracing_enabled":         fmt.Sprintf("%t", c.TracingEnabled),
		"otlp_endpoint":           c.OTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters
// followed by ****. If the secret is shorter than 8 characters, it's fully
// masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}
