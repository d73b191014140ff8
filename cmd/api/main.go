// Package main is the entry point for the matching API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/lexmatch/internal/api"
	"github.com/onnwee/lexmatch/internal/availability"
	"github.com/onnwee/lexmatch/internal/config"
	"github.com/onnwee/lexmatch/internal/featurecache"
	"github.com/onnwee/lexmatch/internal/health"
	"github.com/onnwee/lexmatch/internal/match"
	"github.com/onnwee/lexmatch/internal/maturity"
	"github.com/onnwee/lexmatch/internal/middleware"
	"github.com/onnwee/lexmatch/internal/ranking"
	"github.com/onnwee/lexmatch/internal/tracing"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Lexmatch Ranking API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Tracing is wired before any other component so their spans have a
	// live provider to attach to.
	tracer, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "lexmatch",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: 1.0,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	handler, cleanup, err := buildHandler(cfg, logger, tracer)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildHandler assembles the ranking engine, its dependencies, and the HTTP
// routing with the full middleware chain. The returned cleanup stops the
// background jobs and closes connections; callers must invoke it on
// shutdown.
func buildHandler(cfg *config.Config, logger *slog.Logger, tracer *tracing.Provider) (http.Handler, func(), error) {
	reg := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	matchMetrics := match.NewMetrics()
	rankingMetrics := ranking.NewMetrics()
	for _, register := range []func(prometheus.Registerer) error{
		httpMetrics.Register, matchMetrics.Register, rankingMetrics.Register,
	} {
		if err := register(reg); err != nil {
			return nil, nil, fmt.Errorf("metrics registration: %w", err)
		}
	}

	var cleanups []func()
	cleanup := func() {
		// Reverse order: later components may depend on earlier ones.
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Weight provider with periodic calibration reload.
	provider := ranking.NewProvider(ranking.ProviderConfig{
		CalibrationPath: cfg.CalibrationPath,
		ReloadInterval:  cfg.CalibrationReloadInterval(),
		Logger:          logger,
		Metrics:         rankingMetrics,
	})
	if cfg.CalibrationPath != "" {
		provider.Start(context.Background())
		cleanups = append(cleanups, provider.Stop)
	}

	// Feature cache: Redis when configured, in-process otherwise.
	var store featurecache.Store
	var cacheChecker api.HealthChecker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		cleanups = append(cleanups, func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		})
		store = featurecache.NewRedisStore(client, cfg.CacheTTL())
		cacheChecker = health.NewRedisChecker(client)
		logger.Info("feature cache backed by redis", "addr", cfg.RedisAddr)
	} else {
		mem := featurecache.NewMemoryStore(cfg.CacheTTL())
		mem.StartJanitor(featurecache.DefaultCleanupInterval)
		cleanups = append(cleanups, mem.StopJanitor)
		store = mem
		logger.Info("feature cache backed by in-process store")
	}

	// Live availability provider; absent means every request degrades.
	var checker availability.Checker
	if cfg.AvailabilityURL != "" {
		checker = availability.NewHTTPChecker(cfg.AvailabilityURL)
	} else {
		logger.Warn("no availability provider configured; ranking serves in degraded mode")
	}

	calc := match.NewCalculator(match.CalculatorConfig{MaxRadiusKm: cfg.MaxRadiusKm})
	engine := match.NewEngine(match.EngineConfig{
		EquityFloor:         cfg.EquityFloor,
		MinEpsilon:          cfg.MinEpsilon,
		EmbeddingDim:        cfg.EmbeddingDim,
		Concurrency:         cfg.RankConcurrency,
		AvailabilityTimeout: cfg.AvailabilityTimeout(),
		DefaultTopN:         cfg.DefaultTopN,
		MaxPerFirm:          cfg.MaxPerFirm,
		Logger:              logger,
		Metrics:             matchMetrics,
	}, calc, provider, store, checker)

	rankHandlers := api.NewRankHandlers(engine, nil, maturity.Resolve(cfg.MaturityProvider), api.RankDefaults{
		Preset:           cfg.DefaultPreset,
		TopN:             cfg.DefaultTopN,
		DiversityEnabled: cfg.DiversityEnabled,
		MaxPerFirm:       cfg.MaxPerFirm,
	})
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		CacheChecker:       cacheChecker,
		CalibrationChecker: health.NewCalibrationChecker(cfg.CalibrationPath),
	})
	cacheHandlers := api.NewCacheHandlers(store)

	mux := http.NewServeMux()
	mux.HandleFunc("/rank", rankHandlers.Rank)
	mux.HandleFunc("/explain", rankHandlers.Explain)
	mux.HandleFunc("/presets", rankHandlers.Presets)
	mux.HandleFunc("/lawyers/", cacheHandlers.PurgeLawyer)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"lexmatch-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain, outermost first: RequestID -> Logging -> Tracing
	// -> HTTPMetrics -> routes.
	handler := http.Handler(mux)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	if tracer != nil && tracer.IsEnabled() {
		handler = middleware.Tracing("lexmatch")(handler)
	}
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler, cleanup, nil
}
