// Package simulate drives a running Bounceland service with concurrent
// button presses from simulated users and verifies the resulting dataset.
package simulate

import (
	"errors"
	"time"
)

// Errors reported by a simulation run.
var (
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrNoWeeks       = errors.New("dataset has no weeks")
	ErrInconsistent  = errors.New("dataset inconsistent")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Users         int           // Number of simulated users
	Interactions  int           // Number of distinct button presses
	DuplicateRate float64       // Share of presses resubmitted with the same request id
	ActionRate    float64       // Share of presses sent through /actions
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	LogFile       string        // Log file for run output
	Verbose       bool          // Log every failed press
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is empty"))
	case c.Users <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("users must be positive"))
	case c.Interactions < 0:
		return errors.Join(ErrInvalidConfig, errors.New("interactions must not be negative"))
	case c.Workers <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.DuplicateRate < 0 || c.DuplicateRate > 1 || c.ActionRate < 0 || c.ActionRate > 1:
		return errors.Join(ErrInvalidConfig, errors.New("rates must be within [0,1]"))
	}
	return nil
}

// Kind is the kind of button a simulated user presses.
type Kind string

// Press kinds.
const (
	KindMode Kind = "mode"
	KindWeek Kind = "week"
)

// Press is a single simulated button press.
type Press struct {
	RequestID string
	UserID    string
	Name      string
	Kind      Kind
	Mode      string
	WeekID    string
	Choice    string
	ViaAction bool
}

// Result classifies the outcome of one submitted press.
type Result string

// Press results.
const (
	ResultApplied   Result = "applied"
	ResultDuplicate Result = "duplicate"
	ResultFailed    Result = "failed"
)

// Stats holds run statistics.
type Stats struct {
	PressesGenerated int
	PressesSubmitted int
	Applied          int
	Duplicates       int
	Failed           int
	UsersVerified    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
