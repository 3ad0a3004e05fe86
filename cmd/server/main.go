package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"liker/internal/browser"
	"liker/internal/config"
	"liker/internal/dispatch"
	"liker/internal/fulfillment"
	"liker/internal/httpapi"
	"liker/internal/httpserver"
	"liker/internal/logger"
	"liker/internal/metrics"
	"liker/internal/tracker"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address, overrides config and PORT")
	debug := flag.Bool("debug", false, "Enable detailed debug logging")
	simulate := flag.Bool("simulate", false, "Skip browser automation and report simulated success")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)

	if *addr != "" {
		cfg.Addr = *addr
	}
	if *debug {
		cfg.DebugMode = true
	}
	if *simulate {
		cfg.ForceSimulation = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Mode, cfg.DebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	acquirer := browser.NewRodAcquirer(launchOptions(cfg.Browser), log)
	if !cfg.ForceSimulation {
		if path, err := acquirer.ProbeBinary(); err != nil {
			log.Warn("no browser binary found, attempts will be simulated", "error", err)
		} else {
			log.Info("browser binary located", "path", path)
		}
	}

	var opts []fulfillment.Option
	if cfg.MessagesPath != "" {
		messages, err := fulfillment.LoadMessages(cfg.MessagesPath)
		if err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		opts = append(opts, fulfillment.WithMessages(messages))
	}
	orchestrator := fulfillment.NewOrchestrator(cfg, acquirer, m, log, opts...)

	store := tracker.NewStore()

	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	dispatcher := dispatch.New(workCtx, orchestrator, store, cfg.Fulfillment, m, log)

	handler := httpapi.New(store, dispatcher, tracker.NewIntake(store, m, log), m, log)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler, reg, cfg.API))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running",
			"addr", cfg.Addr,
			"target_url", cfg.TargetURL,
			"force_simulation", cfg.ForceSimulation,
			"max_concurrent", cfg.Fulfillment.MaxConcurrent,
			"strict_outcomes", cfg.Fulfillment.StrictOutcomes,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Abort in-flight attempts so their browsers close, then wait for the
	// outcomes to be recorded.
	cancelWork()
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Warn("background attempts still running at exit", "error", err)
	}
	return nil
}

func launchOptions(b config.BrowserConfig) browser.LaunchOptions {
	return browser.LaunchOptions{
		BinaryPath:     b.BinaryPath,
		CandidatePaths: b.CandidatePaths,
		Headless:       b.Headless,
		ViewportWidth:  b.ViewportWidth,
		ViewportHeight: b.ViewportHeight,
		LaunchTimeout:  b.LaunchTimeout.Std(),
		Args:           b.Args,
	}
}
