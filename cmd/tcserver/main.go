package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/bwf"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/exceptions"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/server"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if showVersion {
		fmt.Println(version.GetInfo().Banner("tcserver"))
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging, "tcserver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithField("version", version.GetInfo().Short()).Info("Starting timecode API server")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	reporter, err := exceptions.New(&cfg.Sentry)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize exception reporter")
	}
	defer reporter.Flush()

	store, err := history.New(&cfg.History, &cfg.Redis, log)
	if err != nil {
		log.WithError(err).Error("Failed to open history store")
		reporter.Flush()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		log.WithError(err).WithField("backend", cfg.History.Backend).Error("History store is unreachable")
		store.Close()
		reporter.Flush()
		os.Exit(1)
	}
	log.WithField("backend", cfg.History.Backend).Info("History store ready")

	opts := server.Options{
		Config:   cfg,
		Logger:   log,
		History:  store,
		Reporter: reporter,
	}
	// bwfmetaedit is optional for the API; health reports it when missing.
	if tool, err := bwf.NewMetaEdit(cfg.Batch.ToolPath, cfg.Batch.ToolTimeout, log); err == nil {
		opts.BWFTool = tool
	} else {
		log.WithError(err).Warn("bwfmetaedit not available")
	}

	// Start metrics server if enabled
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	srv := server.New(opts)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Error("Server error")
	}

	// Cleanup
	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close history store")
	}

	log.Info("Server shutdown complete")
}

// startMetricsServer starts the Prometheus metrics server
func startMetricsServer(cfg config.MetricsConfig, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics server error")
	}
}
