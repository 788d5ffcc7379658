package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/bounceland/internal/simulate"
)

// Default configuration constants.
const (
	defaultUsers      = 50
	defaultPresses    = 2000
	defaultDuplicates = 0.1
	defaultActions    = 0.5
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users      = flag.Int("users", defaultUsers, "Number of simulated users")
		presses    = flag.Int("presses", defaultPresses, "Number of distinct button presses")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of presses resubmitted with the same request id")
		actions    = flag.Float64("actions", defaultActions, "Share of presses sent as button actions")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file (default: simulate_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every failed press")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closer, err := simulate.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)

	_, err = simulate.Run(ctx, &simulate.Config{
		BaseURL:       *baseURL,
		Users:         *users,
		Interactions:  *presses,
		DuplicateRate: *duplicates,
		ActionRate:    *actions,
		Workers:       *workers,
		Timeout:       *timeout,
		LogFile:       *logFile,
		Verbose:       *verbose,
	})
	cancel()
	stop()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
