// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"time"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// OwnerID may post polls, import and reset. Empty allows everyone.
	OwnerID string `koanf:"owner_id"`

	// ChatID and the thread ids address the live poll messages.
	ChatID             int64 `koanf:"chat_id"`
	ThreadIDBounceland int64 `koanf:"thread_id_bounceland"`
	ThreadIDMeal       int64 `koanf:"thread_id_meal"`

	// StorageBackend selects where documents live: file or sqlite.
	StorageBackend string `koanf:"storage_backend"`
	DataDir        string `koanf:"data_dir"`
	SQLitePath     string `koanf:"sqlite_path"`

	// UpdateIntervalMS throttles edits of the live meal message,
	// BouncelandUpdateIntervalMS those of the Bounceland message. Zero
	// refreshes on every change.
	UpdateIntervalMS           int `koanf:"update_interval_ms"`
	BouncelandUpdateIntervalMS int `koanf:"bounceland_update_interval_ms"`

	// The meal poll is reposted weekly at MealPollDay MealPollHour:MealPollMinute
	// in SchedulerTimezone.
	SchedulerTimezone string `koanf:"scheduler_timezone"`
	MealPollDay       string `koanf:"meal_poll_day"`
	MealPollHour      int    `koanf:"meal_poll_hour"`
	MealPollMinute    int    `koanf:"meal_poll_minute"`

	// QueueSize bounds the refresh queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many interaction ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		Addr:                       ":9080",
		StorageBackend:             StorageFile,
		DataDir:                    "data",
		SQLitePath:                 "data/bounceland.db",
		UpdateIntervalMS:           1000,
		BouncelandUpdateIntervalMS: 0,
		SchedulerTimezone:          "Europe/Berlin",
		MealPollDay:                "sat",
		MealPollHour:               18,
		MealPollMinute:             0,
		QueueSize:                  1024,
		WorkerCount:                2,
		DedupeSize:                 10_000,
	}
}

// MealUpdateInterval returns the meal refresh throttle.
func (c *Config) MealUpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// BouncelandUpdateInterval returns the Bounceland refresh throttle.
func (c *Config) BouncelandUpdateInterval() time.Duration {
	return time.Duration(c.BouncelandUpdateIntervalMS) * time.Millisecond
}
