// Package config holds the runtime configuration shared by the agent
// and trainer commands.
package config

import (
	"fmt"
	"time"
)

// Config holds all agent and trainer settings.
type Config struct {
	// Simulator connection
	SimAddr string `mapstructure:"sim_addr"`
	Blue    bool   `mapstructure:"blue"`

	// GeometryPath points at the table geometry JSON; empty uses the
	// built-in default table.
	GeometryPath string `mapstructure:"geometry_path"`

	// Agent loop
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Training
	Episodes       int           `mapstructure:"episodes"`
	MaxSteps       int           `mapstructure:"max_steps"`
	StepDelay      time.Duration `mapstructure:"step_delay"`
	BatchSize      int           `mapstructure:"batch_size"`
	Shaper         string        `mapstructure:"shaper"`
	Parallel       int           `mapstructure:"parallel"`
	ReplayCapacity int           `mapstructure:"replay_capacity"`
	EpisodeDB      string        `mapstructure:"episode_db"`
	ReportPath     string        `mapstructure:"report_path"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		SimAddr:        "127.0.0.1:23336",
		Blue:           false,
		TickInterval:   20 * time.Millisecond,
		Episodes:       100,
		MaxSteps:       500,
		StepDelay:      20 * time.Millisecond,
		BatchSize:      32,
		Shaper:         "stability",
		Parallel:       1,
		ReplayCapacity: 100000,
		LogLevel:       "info",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SimAddr == "" {
		return fmt.Errorf("sim_addr is required")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.Episodes == 0 {
		return fmt.Errorf("episodes must be positive or -1 for unlimited")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}
	if c.Shaper != "stability" && c.Shaper != "attack" {
		return fmt.Errorf("shaper must be stability or attack, got %q", c.Shaper)
	}
	return nil
}
