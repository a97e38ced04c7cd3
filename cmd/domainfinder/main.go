package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/domain-finder/internal/api"
	"github.com/alvmarrod/domain-finder/internal/candidates"
	"github.com/alvmarrod/domain-finder/internal/config"
	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/evaluator"
	"github.com/alvmarrod/domain-finder/internal/export"
	"github.com/alvmarrod/domain-finder/internal/lookup"
	"github.com/alvmarrod/domain-finder/internal/memory"
	"github.com/alvmarrod/domain-finder/internal/run"
	"github.com/alvmarrod/domain-finder/internal/version"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("Domain Finder v%s starting...", version.Version)

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)

	logrus.Infof("Configuration loaded: workers=%d, timeout=%dms, export=%s/%s, cache_ttl=%dm",
		cfg.ConcurrentWorkers, cfg.RequestTimeoutMs, cfg.ExportDir, cfg.ExportFormat, *cfg.CacheTTLMinutes)

	if cfg.RapidAPIKey == "" {
		logrus.Warn("RAPIDAPI_KEY not set, every candidate will be rejected by the traffic lookup")
	}

	// Initialize lookup adapters
	opts := lookup.Options{
		Timeout:       cfg.RequestTimeout(),
		RatePerSecond: cfg.RateLimitPerSecond,
	}

	trafficOpts := opts
	trafficOpts.BaseURL = cfg.TrafficBaseURL
	var traffic lookup.TrafficSource = lookup.NewTraffic(cfg.RapidAPIKey, trafficOpts)

	var registration lookup.RegistrationSource = lookup.NewRegistration(lookup.NewWhoisResolver(opts), opts)

	archiveOpts := opts
	archiveOpts.BaseURL = cfg.ArchiveBaseURL
	var archive lookup.ArchiveSource = lookup.NewArchive(archiveOpts)

	// Wrap adapters with the cross-run lookup cache
	var caches []interface {
		Prune() int
		GetStats() (size, hits, misses int)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		trafficCache := memory.NewCache[domain.TrafficMetrics](lookup.NameTraffic, ttl)
		registrationCache := memory.NewCache[domain.RegistrationStatus](lookup.NameRegistration, ttl)
		archiveCache := memory.NewCache[domain.ArchiveHistory](lookup.NameArchive, ttl)
		caches = append(caches, trafficCache, registrationCache, archiveCache)

		traffic = lookup.CachedTraffic{Source: traffic, Cache: trafficCache}
		registration = lookup.CachedRegistration{Source: registration, Cache: registrationCache}
		archive = lookup.CachedArchive{Source: archive, Cache: archiveCache}
		logrus.Infof("Lookup cache enabled (ttl=%s)", ttl)
	}

	var evalOpts []evaluator.Option
	if !cfg.SkipArchiveLookup {
		evalOpts = append(evalOpts, evaluator.WithArchive(archive))
	}
	if cfg.RegistrarQuotes {
		quoteOpts := opts
		quoteOpts.BaseURL = cfg.RegistrarBaseURL
		evalOpts = append(evalOpts, evaluator.WithQuotes(lookup.NewRegistrarQuotes(quoteOpts)))
		logrus.Info("Registrar quotes enabled")
	}

	eval := evaluator.NewEvaluator(traffic, registration, evalOpts...)
	scheduler := evaluator.NewScheduler(eval, cfg.ConcurrentWorkers)

	// Initialize export stage
	exporter, err := export.NewExporter(cfg.ExportDir, cfg.ExportFormat)
	if err != nil {
		logrus.Fatalf("Failed to initialize exporter: %v", err)
	}

	manager := run.NewManager(scheduler, exporter, run.Settings{
		DefaultTLDs:     cfg.DefaultTLDs,
		DefaultMaxCheck: cfg.DefaultMaxCheck,
		MetricsPath:     cfg.MetricsPath,
	})

	provider := candidates.NewC99Provider(cfg.C99APIKey, lookup.Options{
		BaseURL: cfg.BulkBaseURL,
		Timeout: cfg.BulkTimeout(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.New(manager, provider, exporter, cfg.DefaultMinDR).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	logrus.Infof("Listening on %s", cfg.ListenAddr)

	// Prune expired cache entries periodically
	stopPrune := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, c := range caches {
					c.Prune()
				}
			case <-stopPrune:
				return
			}
		}
	}()

	// Setup signal handler for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logrus.Infof("Received signal: %v", sig)
	case err := <-errChan:
		logrus.Errorf("Server error: %v", err)
	}

	// Handle force quit on second signal
	go func() {
		sig := <-sigChan
		logrus.Warnf("Received second signal (%v) - forcing immediate exit!", sig)
		os.Exit(1)
	}()

	close(stopPrune)

	logrus.Info("Initiating graceful shutdown...")
	logrus.Info("Step 1/2: Stopping HTTP server...")
	if err := api.Shutdown(srv, 5*time.Second); err != nil {
		logrus.Errorf("HTTP shutdown failed: %v", err)
	}

	logrus.Info("Step 2/2: Waiting for the active search...")
	if manager.Active() {
		p := manager.Progress()
		logrus.Infof("Search %s still running (%d/%d checked)", p.SearchID, p.Current, p.Total)
	}
	if err := waitForRun(manager, 60*time.Second); err != nil {
		logrus.Warnf("Search did not finish in time: %v", err)
	}

	for _, c := range caches {
		size, hits, misses := c.GetStats()
		logrus.Infof("Lookup cache: %d entries, %d hits, %d misses", size, hits, misses)
	}

	logrus.Info("Graceful shutdown complete. Goodbye!")
}

// waitForRun blocks until the manager's live run finishes or timeout elapses
func waitForRun(m *run.Manager, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return m.Wait(ctx)
}
