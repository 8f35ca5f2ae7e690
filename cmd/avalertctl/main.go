// Package main is a small command line tool for inspecting an avalertd
// cluster through the client library.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	avalert "github.com/vyrodovalexey/avalert-client"
	"github.com/vyrodovalexey/avalert-client/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	urls        string
	timeout     time.Duration
	logLevel    string
	ping        bool
	listTasks   bool
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Printf("avalertctl %s (commit %s)\n", version, gitCommit)
		return
	}

	logger := initLogger(flags.logLevel)
	defer func() { _ = logger.Sync() }()

	client, err := buildClient(flags, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avalertctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout+5*time.Second)
	defer cancel()

	switch {
	case flags.ping:
		runPing(ctx, client, flags.timeout)
	case flags.listTasks:
		runListTasks(ctx, client)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("AVALERT_CONFIG_PATH", ""),
		"Path to YAML configuration file")
	urls := flag.String("urls", getEnvOrDefault("AVALERT_URLS", "http://localhost:9092"),
		"Comma separated cluster host URLs")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-request timeout")
	logLevel := flag.String("log-level", getEnvOrDefault("AVALERT_LOG_LEVEL", "warn"),
		"Log level (debug, info, warn, error)")
	ping := flag.Bool("ping", false, "Probe all cluster hosts")
	listTasks := flag.Bool("list-tasks", false, "List tasks")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		urls:        *urls,
		timeout:     *timeout,
		logLevel:    *logLevel,
		ping:        *ping,
		listTasks:   *listTasks,
		showVersion: *showVersion,
	}
}

// initLogger builds the console logger.
func initLogger(level string) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "avalertctl: invalid log level: %v\n", err)
		os.Exit(2)
	}
	return logger
}

// buildClient constructs the client from a config file or flags.
func buildClient(flags cliFlags, logger observability.Logger) (*avalert.Client, error) {
	if flags.configPath != "" {
		return avalert.NewFromFile(flags.configPath, logger)
	}

	return avalert.New(avalert.Config{
		URLs:    strings.Split(flags.urls, ","),
		Timeout: flags.timeout,
		Logger:  logger,
	})
}

// runPing probes the cluster and prints one line per host.
func runPing(ctx context.Context, client *avalert.Client, timeout time.Duration) {
	for _, r := range client.Ping(ctx, timeout) {
		state := "offline"
		if r.Online {
			state = "online"
		}
		fmt.Printf("%-40s %-8s rtt=%-12s version=%s\n", r.URL, state, r.RTT, r.Version)
	}
}

// runListTasks prints the task listing.
func runListTasks(ctx context.Context, client *avalert.Client) {
	tasks, err := client.ListTasks(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avalertctl: list tasks: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-30s %-8s %-10s %s\n", "ID", "TYPE", "STATUS", "EXECUTING")
	for _, t := range tasks {
		fmt.Printf("%-30s %-8s %-10s %v\n", t.ID, t.Type, t.Status, t.Executing)
	}
}

// getEnvOrDefault returns the environment value or a fallback.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
