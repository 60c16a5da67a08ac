package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"empty sim addr": func(c *Config) { c.SimAddr = "" },
		"zero tick":      func(c *Config) { c.TickInterval = 0 },
		"zero episodes":  func(c *Config) { c.Episodes = 0 },
		"zero batch":     func(c *Config) { c.BatchSize = 0 },
		"zero parallel":  func(c *Config) { c.Parallel = 0 },
		"unknown shaper": func(c *Config) { c.Shaper = "chaotic" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestUnlimitedEpisodesAllowed(t *testing.T) {
	cfg := Default()
	cfg.Episodes = -1
	assert.NoError(t, cfg.Validate())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := NewLogger("nonsense", "")
	assert.Equal(t, "info", logger.GetLevel().String())
}
