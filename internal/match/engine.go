package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/lexmatch/internal/availability"
	"github.com/onnwee/lexmatch/internal/featurecache"
	"github.com/onnwee/lexmatch/internal/geo"
	"github.com/onnwee/lexmatch/internal/ranking"
)

// Engine defaults.
const (
	// DefaultMinEpsilon is the absolute floor for the equity multiplier
	// applied to the raw score: even a fully loaded lawyer keeps at least
	// this fraction of their raw score, guaranteeing a distinguishing gap
	// over a zero score.
	DefaultMinEpsilon = 0.02

	// DefaultConcurrency bounds the per-request feature computation pool.
	DefaultConcurrency = 8

	// DefaultTopN is the result count when the caller does not request one.
	DefaultTopN = 5

	// DefaultMaxPerFirm caps same-firm results when the diversity policy
	// is enabled.
	DefaultMaxPerFirm = 2
)

// Cache kind prefixes for the slow-moving sub-features.
const (
	cacheKindMaturity      = "maturity"
	cacheKindQualification = "qualification"
)

// EngineConfig tunes the ranking engine. Zero values fall back to the
// package defaults.
type EngineConfig struct {
	EquityFloor         float64
	MinEpsilon          float64
	EmbeddingDim        int
	Concurrency         int
	AvailabilityTimeout time.Duration
	DefaultTopN         int
	MaxPerFirm          int
	Logger              *slog.Logger
	Metrics             *Metrics
}

// RankOptions are the per-request ranking parameters.
type RankOptions struct {
	// TopN is the number of results to return; <= 0 uses the engine default.
	TopN int
	// Preset names the weight vector; unknown names fall back to default.
	Preset string
	// DiversityEnabled turns on the same-firm cap for the result set.
	DiversityEnabled bool
	// MaxPerFirm overrides the engine's firm cap when > 0.
	MaxPerFirm int
}

// Engine runs the ranking pipeline: conflict filtering, concurrent feature
// computation, availability gating with degraded-mode fallback, weighted
// scoring, equity adjustment, deterministic ordering and diversity-aware
// top-N selection. An Engine is stateless per request apart from the shared
// feature cache and weight provider, and is safe for concurrent use.
type Engine struct {
	config  EngineConfig
	calc    *Calculator
	weights *ranking.Provider
	cache   featurecache.Store
	checker availability.Checker
}

// NewEngine creates a ranking engine. cache and checker may be nil: a nil
// cache computes every feature fresh, a nil checker means every request is
// served in degraded mode (no live availability provider configured).
func NewEngine(
	config EngineConfig,
	calc *Calculator,
	weights *ranking.Provider,
	cache featurecache.Store,
	checker availability.Checker,
) *Engine {
	if config.EquityFloor <= 0 {
		config.EquityFloor = DefaultEquityFloor
	}
	if config.MinEpsilon <= 0 {
		config.MinEpsilon = DefaultMinEpsilon
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if config.AvailabilityTimeout <= 0 {
		config.AvailabilityTimeout = availability.DefaultTimeout
	}
	if config.DefaultTopN <= 0 {
		config.DefaultTopN = DefaultTopN
	}
	if config.MaxPerFirm <= 0 {
		config.MaxPerFirm = DefaultMaxPerFirm
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if calc == nil {
		calc = NewCalculator(CalculatorConfig{})
	}

	return &Engine{
		config:  config,
		calc:    calc,
		weights: weights,
		cache:   cache,
		checker: checker,
	}
}

// availabilityResult carries the outcome of the concurrent availability
// query.
type availabilityResult struct {
	available map[string]bool
	degraded  bool
}

// RankResult is the full outcome of a ranking request. DegradedMode is the
// engine-level flag: it is true whenever the availability check failed, even
// if gating and validation left no results to carry it.
type RankResult struct {
	Results      []ScoreBreakdown
	Preset       string
	DegradedMode bool
}

// Rank scores the candidates against the case and returns the top-N with
// full breakdowns, sorted by fair score descending with deterministic
// tie-breaks (raw score descending, then lawyer ID ascending).
//
// Only structurally invalid input returns an error (wrapped
// ErrInvalidInput); an empty candidate list or a fully conflicted pool
// returns an empty, valid result. Cancellation of ctx aborts the request
// between candidates; no partial state is left behind.
func (e *Engine) Rank(ctx context.Context, cs *Case, lawyers []Lawyer, opts RankOptions) ([]ScoreBreakdown, error) {
	res, err := e.RankDetailed(ctx, cs, lawyers, opts)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}

// RankDetailed is Rank plus request-level metadata: the effective preset
// and whether the availability check ran degraded.
func (e *Engine) RankDetailed(ctx context.Context, cs *Case, lawyers []Lawyer, opts RankOptions) (RankResult, error) {
	tracer := otel.Tracer("lexmatch/match")
	ctx, span := tracer.Start(ctx, "match.rank")
	defer span.End()

	start := time.Now()

	weights, presetName := e.resolveWeights(opts.Preset)
	span.SetAttributes(
		attribute.String("match.preset", presetName),
		attribute.Int("match.candidates", len(lawyers)),
	)

	if err := cs.Validate(e.config.EmbeddingDim); err != nil {
		e.observe(presetName, StatusInvalidInput, start)
		return RankResult{Preset: presetName}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if len(lawyers) == 0 {
		e.observe(presetName, StatusEmpty, start)
		return RankResult{Results: []ScoreBreakdown{}, Preset: presetName}, nil
	}

	// Step 1: conflict-of-interest filter.
	eligible := FilterEligible(cs, lawyers)
	if e.config.Metrics != nil {
		e.config.Metrics.AddConflictExcluded(len(lawyers) - len(eligible))
		e.config.Metrics.ObserveCandidates(len(eligible))
	}
	if len(eligible) == 0 {
		e.observe(presetName, StatusEmpty, start)
		return RankResult{Results: []ScoreBreakdown{}, Preset: presetName}, nil
	}

	// Step 2: dispatch the availability query concurrently so it never
	// blocks feature computation. availability.Check is bounded by its
	// timeout and one retry, so this goroutine always finishes.
	ids := make([]string, len(eligible))
	for i, l := range eligible {
		ids[i] = l.ID
	}
	availCh := make(chan availabilityResult, 1)
	go func() {
		available, degraded := availability.Check(ctx, e.checker, ids, e.config.AvailabilityTimeout)
		availCh <- availabilityResult{available: available, degraded: degraded}
	}()

	// Step 3: fan-out feature computation over a bounded worker pool,
	// fan-in before sorting. Cooperative cancellation: the group context
	// aborts workers between candidates.
	breakdowns := make([]ScoreBreakdown, len(eligible))
	valid := make([]bool, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l := &eligible[i]
			if err := l.Validate(); err != nil {
				// A malformed candidate degrades to exclusion, not to a
				// request failure.
				e.config.Logger.Warn("skipping invalid candidate",
					"lawyer_id", l.ID,
					"error", err)
				return nil
			}
			breakdowns[i] = e.score(gctx, cs, l, weights, presetName)
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.observe(presetName, StatusCancelled, start)
		return RankResult{Preset: presetName}, err
	}

	avail := <-availCh
	if avail.degraded && e.config.Metrics != nil {
		e.config.Metrics.IncDegraded()
	}

	// Step 4: availability gating. An explicit false removes the
	// candidate; an absent entry means unknown and is never gating. In
	// degraded mode no gating happens and every result carries the flag.
	results := make([]ScoreBreakdown, 0, len(eligible))
	for i := range breakdowns {
		if !valid[i] {
			continue
		}
		b := breakdowns[i]
		if avail.degraded {
			b.DegradedMode = true
		} else if gated, ok := avail.available[b.LawyerID]; ok && !gated {
			continue
		}
		results = append(results, b)
	}

	// Step 5: deterministic ordering.
	sort.Slice(results, func(i, j int) bool {
		if results[i].FairScore != results[j].FairScore {
			return results[i].FairScore > results[j].FairScore
		}
		if results[i].RawScore != results[j].RawScore {
			return results[i].RawScore > results[j].RawScore
		}
		return results[i].LawyerID < results[j].LawyerID
	})

	// Step 6: top-N selection with optional diversity pass.
	topN := opts.TopN
	if topN <= 0 {
		topN = e.config.DefaultTopN
	}
	if topN > len(results) {
		topN = len(results)
	}

	selected := results[:topN]
	if opts.DiversityEnabled {
		maxPerFirm := opts.MaxPerFirm
		if maxPerFirm <= 0 {
			maxPerFirm = e.config.MaxPerFirm
		}
		selected = EnforceDiversity(selected, maxPerFirm, results[topN:])
	}

	status := StatusOK
	if len(selected) == 0 {
		status = StatusEmpty
	}
	e.observe(presetName, status, start)
	span.SetAttributes(
		attribute.Int("match.results", len(selected)),
		attribute.Bool("match.degraded", avail.degraded),
	)

	return RankResult{
		Results:      selected,
		Preset:       presetName,
		DegradedMode: avail.degraded,
	}, nil
}

// RankCase fetches the case and a candidate pool from the supplied sources
// and ranks. The pool fetch is pre-narrowed by the case's area and location
// so persistence can discard obvious non-matches before scoring.
func (e *Engine) RankCase(ctx context.Context, caseID string, cases CaseSource, candidates CandidateSource, opts RankOptions) ([]ScoreBreakdown, error) {
	if cases == nil || candidates == nil {
		return nil, fmt.Errorf("%w: case and candidate sources are required", ErrInvalidInput)
	}

	cs, err := cases.FetchCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetch case %s: %w", caseID, err)
	}

	pool, err := candidates.FetchCandidates(ctx, CandidateFilter{
		Area:   cs.Area,
		Center: cs.Coordinates,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for case %s: %w", caseID, err)
	}

	return e.Rank(ctx, cs, pool, opts)
}

// resolveWeights resolves the preset via the provider, or falls back to the
// built-in presets when the engine was built without one.
func (e *Engine) resolveWeights(preset string) (ranking.Weights, string) {
	if e.weights != nil {
		return e.weights.Get(preset)
	}
	if w, ok := ranking.PresetWeights(preset); ok {
		return w, preset
	}
	return ranking.DefaultWeights(), ranking.DefaultPreset
}

// score computes the full breakdown for one eligible candidate.
func (e *Engine) score(ctx context.Context, cs *Case, l *Lawyer, w ranking.Weights, preset string) ScoreBreakdown {
	features := FeatureVector{
		AreaMatch:      e.calc.AreaMatch(cs, l),
		CaseSimilarity: e.calc.CaseSimilarity(cs, l),
		SuccessRate:    e.calc.SuccessRate(l),
		GeoProximity:   e.calc.GeoProximity(cs, l),
		Maturity:       e.cached(ctx, l.ID, cacheKindMaturity, func() float64 { return e.calc.MaturityScore(l) }),
		Qualification:  e.cached(ctx, l.ID, cacheKindQualification+":"+canonicalArea(cs.Area), func() float64 { return e.calc.Qualification(cs, l) }),
		Review:         e.calc.ReviewScore(l),
		CapacityFit:    e.calc.CapacityFit(cs, l),
	}

	raw := dot(features, w)
	equity := EquityWeight(l.KPI, e.config.EquityFloor)

	// Fair-score blend: the raw score scaled by the equity multiplier,
	// floored at MinEpsilon so a strong raw score is dampened, never
	// erased. Monotonic in both raw score and equity weight.
	mult := equity
	if mult < e.config.MinEpsilon {
		mult = e.config.MinEpsilon
	}
	fair := raw * mult

	b := ScoreBreakdown{
		LawyerID:   l.ID,
		LawyerName: l.Name,
		FirmID:     l.FirmID,
		RawScore:   raw,
		EquityMult: mult,
		FairScore:  fair,
		Features:   features,
		Weights:    w.Map(),
		Preset:     preset,
	}
	if l.Coordinates != nil {
		b.CoarseLocation = geo.Encode(*l.Coordinates, geo.CoarsePrecision)
	}
	return b
}

// cached serves a slow-moving sub-score from the feature cache, computing
// and populating on miss. Cache failures degrade to a fresh computation.
func (e *Engine) cached(ctx context.Context, lawyerID, kind string, compute func() float64) float64 {
	if e.cache == nil {
		return compute()
	}

	entry, err := e.cache.Get(ctx, lawyerID, kind)
	if err == nil {
		return entry.Score
	}
	if !errors.Is(err, featurecache.ErrNotFound) {
		e.config.Logger.Warn("feature cache read failed, computing fresh",
			"lawyer_id", lawyerID,
			"kind", kind,
			"error", err)
	}

	score := compute()
	if err := e.cache.Set(ctx, lawyerID, kind, featurecache.Entry{
		Score:      score,
		ComputedAt: time.Now(),
	}); err != nil {
		e.config.Logger.Warn("feature cache write failed",
			"lawyer_id", lawyerID,
			"kind", kind,
			"error", err)
	}
	return score
}

// dot computes the weighted sum of features and weights. All features are
// pre-clamped to [0, 1] and all weights are non-negative, so the result is
// never negative.
func dot(f FeatureVector, w ranking.Weights) float64 {
	return f.AreaMatch*w.AreaMatch +
		f.CaseSimilarity*w.CaseSimilarity +
		f.SuccessRate*w.SuccessRate +
		f.GeoProximity*w.GeoProximity +
		f.Qualification*w.Qualification +
		f.Maturity*w.Maturity +
		f.Review*w.Review +
		f.CapacityFit*w.CapacityFit
}

// observe records request metrics when metrics are configured.
func (e *Engine) observe(preset, status string, start time.Time) {
	if e.config.Metrics == nil {
		return
	}
	e.config.Metrics.ObserveRequest(preset, status, time.Since(start).Seconds())
}
