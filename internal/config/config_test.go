package config_test

import (
	"testing"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/config"
	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()
	require.NotNil(t, cfg)

	// Control loop.
	assert.Equal(t, 20, cfg.TickMS)
	assert.Equal(t, 20*time.Millisecond, cfg.Tick())

	// Sorting.
	assert.Equal(t, "COLLECT_ALL", cfg.SortingPolicy)
	assert.Equal(t, 300, cfg.EjectDurationMS)

	// Color classification.
	assert.Equal(t, 100.0, cfg.ProximityThreshold)
	assert.Equal(t, 0.3, cfg.MinSaturation)
	assert.Equal(t, 0.1, cfg.MinBrightness)
	assert.Equal(t, 20.0, cfg.RedHueMax)
	assert.Equal(t, 340.0, cfg.RedHueHighMin)
	assert.Equal(t, 190.0, cfg.BlueHueMin)
	assert.Equal(t, 250.0, cfg.BlueHueMax)
	assert.Equal(t, 3, cfg.ConfirmationCount)

	// Ball tracking.
	assert.Equal(t, 1000, cfg.PassageTimeoutMS)
	assert.Equal(t, 500, cfg.DirectionWindowMS)

	// Files and flags default to zero values.
	assert.Empty(t, cfg.ScenarioFile)
	assert.Empty(t, cfg.ReportFile)
	assert.Empty(t, cfg.ConfigFile)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Realtime)

	assert.NoError(t, cfg.Validate())
}

func TestWhitelistedVarsHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range config.WhitelistedVars {
		assert.False(t, seen[v], "duplicate whitelisted var: %s", v)
		seen[v] = true
	}
}

func TestEjectionSettingsRoundTripsDefaults(t *testing.T) {
	s, err := config.NewDefaultConfig().EjectionSettings()
	require.NoError(t, err)
	assert.Equal(t, ejection.DefaultSettings(), s)
}

func TestEjectionSettingsClampsDuration(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.EjectDurationMS = 5000
	cfg.SortingPolicy = "red"

	s, err := cfg.EjectionSettings()
	require.NoError(t, err)
	assert.Equal(t, ejection.MaxEjectDuration, s.EjectDuration)
	assert.Equal(t, ejection.CollectRed, s.Policy)
}

func TestEjectionSettingsRejectsUnknownPolicy(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SortingPolicy = "purple"

	_, err := cfg.EjectionSettings()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero tick", func(c *config.Config) { c.TickMS = 0 }, "TICK_MS"},
		{"no confirmation", func(c *config.Config) { c.ConfirmationCount = 0 }, "CONFIRMATION_COUNT"},
		{"blue band inverted", func(c *config.Config) { c.BlueHueMin = 260 }, "BLUE_HUE_MIN"},
		{"bands overlap", func(c *config.Config) { c.RedHueMax = 200 }, "overlap"},
		{"zero passage timeout", func(c *config.Config) { c.PassageTimeoutMS = 0 }, "PASSAGE_TIMEOUT_MS"},
		{"bad policy", func(c *config.Config) { c.SortingPolicy = "green" }, "unknown sorting policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
