// Package main implements the entry point for the clusterd daemon.
// Clusterd maintains density-based clusters over an unbounded stream of
// points read as JSON lines from stdin, and reports cluster state and
// Prometheus metrics while running.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sea-shanty-2/clustering/config"
	"github.com/sea-shanty-2/clustering/engine"
	"github.com/sea-shanty-2/clustering/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "clusterd"
)

// streamPoint is the wire form of one inbound point. A missing id gets a
// generated one; a missing timestamp means "now".
type streamPoint struct {
	Key string    `json:"id"`
	V   []float64 `json:"vec"`
	TS  time.Time `json:"ts"`
}

func (p streamPoint) ID() string             { return p.Key }
func (p streamPoint) Vec() []float64         { return p.V }
func (p streamPoint) ArrivalTime() time.Time { return p.TS }

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	metricsRegistry, metricsServer, err := setupMetrics(cliCfg)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() { _ = metricsServer.Stop(5 * time.Second) }()
	}

	eng, err := createEngine(cfg, metricsRegistry)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	return runWithSignalHandling(eng, cliCfg)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting clusterd (streaming density clustering)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

// initializeConfiguration loads and validates configuration. An empty
// config path runs on defaults.
func initializeConfiguration(cliCfg *CLIConfig) (config.Engine, error) {
	if cliCfg.ConfigPath == "" {
		cfg := config.Default()
		slog.Info("No config file given, using defaults", "variant", cfg.Variant)
		return cfg, nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupMetrics creates the registry and, unless disabled, the scrape server.
func setupMetrics(cliCfg *CLIConfig) (*metric.MetricsRegistry, *metric.Server, error) {
	registry := metric.NewMetricsRegistry()

	if cliCfg.MetricsPort == 0 {
		slog.Debug("Metrics server disabled")
		return registry, nil, nil
	}

	server := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
	if err := server.Start(); err != nil {
		return nil, nil, fmt.Errorf("start metrics server: %w", err)
	}
	slog.Info("Metrics server started", "port", cliCfg.MetricsPort, "path", "/metrics")

	return registry, server, nil
}

func createEngine(cfg config.Engine, registry *metric.MetricsRegistry) (*engine.Engine[streamPoint], error) {
	return engine.New[streamPoint](cfg,
		engine.WithLogger[streamPoint](slog.Default()),
		engine.WithMetricsRegistry[streamPoint](registry),
	)
}

// runWithSignalHandling starts the engine and ingestion, then waits for a
// shutdown signal or end of input.
func runWithSignalHandling(eng *engine.Engine[streamPoint], cliCfg *CLIConfig) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	stop, err := eng.Start(signalCtx)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	ingestDone := make(chan error, 1)
	go func() { ingestDone <- ingest(signalCtx, eng, os.Stdin) }()

	reportTicker := time.NewTicker(cliCfg.ReportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-signalCtx.Done():
			slog.Info("Received shutdown signal")
			stop()
			report(eng)
			slog.Info("Clusterd shutdown complete")
			return nil

		case err := <-ingestDone:
			if err != nil && err != io.EOF {
				stop()
				return fmt.Errorf("ingest: %w", err)
			}
			slog.Info("Input stream closed, draining and exiting")
			drain(eng, cliCfg.ShutdownTimeout)
			stop()
			report(eng)
			return nil

		case <-reportTicker.C:
			report(eng)
		}
	}
}

// ingest reads one JSON point per line until EOF or cancellation.
func ingest(ctx context.Context, eng *engine.Engine[streamPoint], r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p streamPoint
		if err := json.Unmarshal(line, &p); err != nil {
			slog.Warn("Skipping malformed point", "error", err)
			continue
		}
		if len(p.V) == 0 {
			slog.Warn("Skipping point without coordinates", "id", p.Key)
			continue
		}
		if p.Key == "" {
			p.Key = uuid.NewString()
		}
		if p.TS.IsZero() {
			p.TS = time.Now()
		}

		if err := eng.Add(p); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// drain waits for the ingestion queue to empty, bounded by the shutdown
// timeout.
func drain(eng *engine.Engine[streamPoint], timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for eng.QueueLen() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := eng.QueueLen(); n > 0 {
		slog.Warn("Shutdown timeout with points still queued", "queued", n)
	}
}

// report logs a macro-clustering pass over the current state.
func report(eng *engine.Engine[streamPoint]) {
	groups := eng.Cluster()
	sizes := make([]int, 0, len(groups))
	for _, g := range groups {
		sizes = append(sizes, len(g))
	}
	slog.Info("Cluster state",
		"micro_clusters", eng.MicroClusterCount(),
		"macro_groups", len(groups),
		"group_sizes", sizes,
		"queued", eng.QueueLen())
}
