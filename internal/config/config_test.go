// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "deskpilot", cfg.Logger().ServiceName)
	assert.Equal(t, "green", cfg.Logger().Colors.Info)

	assert.Equal(t, "thousandths", cfg.Executor().CoordinateStrategy)
	assert.Equal(t, time.Second, cfg.Executor().WaitDuration)
	assert.Equal(t, 5, cfg.Executor().ScrollDefaultLines)
	assert.Equal(t, 30*time.Millisecond, cfg.Executor().Timing.ClickSettle)
	assert.Equal(t, 60, cfg.Executor().Timing.DragSteps)
	assert.Equal(t, 500*time.Millisecond, cfg.Executor().Timing.DragDuration)
	assert.Equal(t, 3*time.Millisecond, cfg.Executor().Timing.ScrollTick)

	assert.True(t, cfg.Affordance().Enabled)
	assert.Equal(t, 16.0, cfg.Affordance().RingRadius)
	assert.Equal(t, time.Second, cfg.Affordance().Duration)

	assert.Equal(t, DeviceDryRun, cfg.Device().Kind)
	assert.Equal(t, 5*time.Second, cfg.Device().CDP.CallTimeout)
	assert.Equal(t, time.Second, cfg.Launcher().Settle)
	assert.Equal(t, "~/.deskpilot/records", cfg.Recorder().Dir)

	assert.NoError(t, cfg.Validate())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetDeviceKind(DeviceCDP)
	cfg.SetCoordinateStrategy("pixel_first")
	cfg.SetAffordanceEnabled(false)

	assert.Equal(t, DeviceCDP, cfg.Device().Kind)
	assert.Equal(t, "pixel_first", cfg.Executor().CoordinateStrategy)
	assert.False(t, cfg.Affordance().Enabled)
	assert.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(c *Config)
		contains string
	}{
		{
			name:     "unknown strategy",
			mutate:   func(c *Config) { c.ExecutorCfg.CoordinateStrategy = "percent" },
			contains: "unknown coordinate strategy",
		},
		{
			name:     "negative wait",
			mutate:   func(c *Config) { c.ExecutorCfg.WaitDuration = -time.Second },
			contains: "wait_duration must not be negative",
		},
		{
			name:     "zero scroll default",
			mutate:   func(c *Config) { c.ExecutorCfg.ScrollDefaultLines = 0 },
			contains: "scroll_default_lines must be a positive integer",
		},
		{
			name:     "zero drag steps",
			mutate:   func(c *Config) { c.ExecutorCfg.Timing.DragSteps = 0 },
			contains: "timing.drag_steps must be a positive integer",
		},
		{
			name:     "zero ring radius",
			mutate:   func(c *Config) { c.AffordanceCfg.RingRadius = 0 },
			contains: "ring_radius must be positive",
		},
		{
			name:     "unknown device",
			mutate:   func(c *Config) { c.DeviceCfg.Kind = "serial" },
			contains: `unknown device kind "serial"`,
		},
		{
			name:     "zero dry-run display",
			mutate:   func(c *Config) { c.DeviceCfg.DryRun.Width = 0 },
			contains: "dryrun.width and dryrun.height must be positive",
		},
		{
			name: "cdp without call timeout",
			mutate: func(c *Config) {
				c.DeviceCfg.Kind = DeviceCDP
				c.DeviceCfg.CDP.CallTimeout = 0
			},
			contains: "cdp.call_timeout must be a positive duration",
		},
		{
			name:     "negative launcher settle",
			mutate:   func(c *Config) { c.LauncherCfg.Settle = -time.Second },
			contains: "launcher.settle and launcher.timeout must not be negative",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}

	t.Run("disabled affordance skips its checks", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.AffordanceCfg.Enabled = false
		cfg.AffordanceCfg.RingRadius = 0
		assert.NoError(t, cfg.Validate())
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
executor:
  coordinate_strategy: pixel_first
  wait_duration: 250ms
  timing:
    drag_steps: 10
device:
  kind: cdp
  cdp:
    remote_url: ws://127.0.0.1:9222/devtools/browser/abc
launcher:
  interpreter: ["bash", "-c"]
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "pixel_first", cfg.Executor().CoordinateStrategy)
		assert.Equal(t, 250*time.Millisecond, cfg.Executor().WaitDuration)
		assert.Equal(t, 10, cfg.Executor().Timing.DragSteps)
		assert.Equal(t, DeviceCDP, cfg.Device().Kind)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", cfg.Device().CDP.RemoteURL)
		assert.Equal(t, []string{"bash", "-c"}, cfg.Launcher().Interpreter)
		// Defaults survive alongside file values.
		assert.Equal(t, "info", cfg.Logger().Level)
		assert.Equal(t, 5, cfg.Executor().ScrollDefaultLines)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("executor.scroll_default_lines", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "scroll_default_lines must be a positive integer")
	})

	t.Run("Environment Variable Override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		BindEnv(v)

		t.Setenv("DESKPILOT_DEVICE_KIND", "desktop")
		t.Setenv("DESKPILOT_EXECUTOR_WAIT_DURATION", "2s")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, DeviceDesktop, cfg.Device().Kind)
		assert.Equal(t, 2*time.Second, cfg.Executor().WaitDuration)
	})
}
