package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	ReportInterval  time.Duration
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("CLUSTERD_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: CLUSTERD_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("CLUSTERD_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: CLUSTERD_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("CLUSTERD_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: CLUSTERD_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("CLUSTERD_LOG_FORMAT", "json"),
		"Log format: json, text (env: CLUSTERD_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("CLUSTERD_METRICS_PORT", 9090),
		"Prometheus scrape port, 0 to disable (env: CLUSTERD_METRICS_PORT)")

	flag.DurationVar(&cfg.ReportInterval, "report-interval",
		getEnvDuration("CLUSTERD_REPORT_INTERVAL", 30*time.Second),
		"Interval between cluster state reports (env: CLUSTERD_REPORT_INTERVAL)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("CLUSTERD_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: CLUSTERD_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate config file exists when given
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate metrics port
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report interval must be positive: %s", cfg.ReportInterval)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Streaming Density Clustering

Usage: %s [options] < points.jsonl

Reads one JSON point per line from stdin: {"id": "...", "vec": [x, y, ...], "ts": "..."}

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run with custom config
  %s --config=/path/to/config.json < points.jsonl

  # Run with debug logging
  %s --log-level=debug --log-format=text < points.jsonl

  # Run with environment variables
  export CLUSTERD_CONFIG=/etc/clusterd/config.json
  export CLUSTERD_LOG_LEVEL=debug
  %s < points.jsonl

  # Validate configuration only
  %s --config=/path/to/config.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
