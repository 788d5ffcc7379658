package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/bounceland/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to the console and to logFile. An empty
// logFile gets a timestamped name. The returned closer releases the file.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "simulate_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Bounceland Simulator
====================

Presses poll buttons concurrently as simulated users, resubmits some presses
with the same request id, then checks the dataset for consistency.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -users int
        Number of simulated users (default 50)
  -presses int
        Number of distinct button presses (default 2000)
  -duplicates float
        Share of presses resubmitted with the same request id (default 0.1)
  -actions float
        Share of presses sent as button actions (default 0.5)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file (default: simulate_TIMESTAMP.log)
  -verbose
        Log every failed press
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -users 200 -presses 20000
  go run ./cmd/simulate -url http://localhost:8080 -duplicates 0.5
`)
}
