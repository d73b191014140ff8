package ranking

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultReloadInterval is the default period between calibration file polls.
const DefaultReloadInterval = 5 * time.Minute

// ProviderConfig configures the weight provider.
type ProviderConfig struct {
	// CalibrationPath is the trained-weights file location. Empty disables
	// the trained vector; only presets are served.
	CalibrationPath string
	// ReloadInterval is the polling period for the calibration file.
	ReloadInterval time.Duration
	// Logger for provider activity.
	Logger *slog.Logger
	// Metrics for reload tracking, optional.
	Metrics *Metrics
}

// Provider resolves the active weight vector from named presets or from the
// periodically reloaded trained vector. It is safe for concurrent use: the
// trained snapshot is replaced wholesale under a brief write lock and never
// mutated in place while readers hold a reference.
type Provider struct {
	config ProviderConfig

	mu      sync.RWMutex
	trained Weights
	// trainedOK records whether a calibration file has ever loaded
	// successfully; until then the trained preset serves defaults.
	trainedOK bool

	jobMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewProvider creates a weight provider and performs the initial
// calibration load. Load failure is not fatal: the provider starts with
// default weights and keeps polling.
func NewProvider(config ProviderConfig) *Provider {
	if config.ReloadInterval <= 0 {
		config.ReloadInterval = DefaultReloadInterval
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	p := &Provider{
		config:  config,
		trained: DefaultWeights(),
	}
	p.Reload()
	return p
}

// Get resolves a preset name to a weight vector. Returns the vector and the
// effective preset name, which differs from the request when falling back:
// unknown names and the empty string resolve to the default preset, and
// "trained" resolves to the default preset until a calibration file has
// loaded successfully.
func (p *Provider) Get(preset string) (Weights, string) {
	if preset == PresetTrained {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.trainedOK {
			return p.trained, PresetTrained
		}
		return DefaultWeights(), DefaultPreset
	}

	if w, ok := PresetWeights(preset); ok {
		return w, preset
	}

	if preset != "" {
		p.config.Logger.Warn("unknown weight preset, falling back to default",
			"preset", preset,
			"fallback", DefaultPreset)
	}
	w, _ := PresetWeights(DefaultPreset)
	return w, DefaultPreset
}

// Presets returns the names a caller may request: the built-in presets plus
// "trained" when a calibration vector is active.
func (p *Provider) Presets() []string {
	names := PresetNames()
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.trainedOK {
		names = append(names, PresetTrained)
	}
	return names
}

// Reload re-reads the calibration file and swaps the trained snapshot.
// On failure the previous snapshot is kept; the error is logged, never
// surfaced to ranking callers. Returns the active trained vector.
func (p *Provider) Reload() Weights {
	if p.config.CalibrationPath == "" {
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.trained
	}

	loaded, err := LoadCalibration(p.config.CalibrationPath)
	if err != nil {
		if p.config.Metrics != nil {
			p.config.Metrics.IncReloadFailure()
		}
		p.config.Logger.Warn("weight reload failed, keeping previous vector",
			"path", p.config.CalibrationPath,
			"error", err)
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.trained
	}

	p.mu.Lock()
	p.trained = loaded
	p.trainedOK = true
	p.mu.Unlock()

	if p.config.Metrics != nil {
		p.config.Metrics.ObserveReload()
	}
	return loaded
}

// Start begins the background reload job. Returns immediately; the job runs
// in a goroutine until Stop is called or ctx is cancelled. Starting an
// already running provider is a no-op.
func (p *Provider) Start(ctx context.Context) {
	p.jobMu.Lock()
	defer p.jobMu.Unlock()
	if p.running || p.config.CalibrationPath == "" {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.run(ctx)
}

// Stop halts the background reload job and waits for it to exit.
func (p *Provider) Stop() {
	p.jobMu.Lock()
	defer p.jobMu.Unlock()
	if !p.running {
		return
	}
	close(p.stopCh)
	<-p.doneCh
	p.running = false
}

func (p *Provider) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Reload()
		case <-p.stopCh:
			p.config.Logger.Info("stopping weight reload job")
			return
		case <-ctx.Done():
			p.config.Logger.Info("weight reload job cancelled", "error", ctx.Err())
			return
		}
	}
}
