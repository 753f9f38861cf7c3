// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/deskpilot/internal/geometry"
)

// Device backend names.
const (
	DeviceDryRun  = "dryrun"
	DeviceCDP     = "cdp"
	DeviceDesktop = "desktop"
)

// EnvPrefix prefixes every environment override, e.g. DESKPILOT_DEVICE_KIND.
const EnvPrefix = "DESKPILOT"

var envKeyReplacer = strings.NewReplacer(".", "_")

// BindEnv makes v read DESKPILOT_* environment overrides for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// Interface defines the contract for accessing application configuration.
type Interface interface {
	Logger() LoggerConfig
	Executor() ExecutorConfig
	Affordance() AffordanceConfig
	Device() DeviceConfig
	Launcher() LauncherConfig
	Recorder() RecorderConfig

	// Setters for values that CLI flags may override.
	SetDeviceKind(kind string)
	SetCoordinateStrategy(strategy string)
	SetAffordanceEnabled(enabled bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	ExecutorCfg   ExecutorConfig   `mapstructure:"executor" yaml:"executor"`
	AffordanceCfg AffordanceConfig `mapstructure:"affordance" yaml:"affordance"`
	DeviceCfg     DeviceConfig     `mapstructure:"device" yaml:"device"`
	LauncherCfg   LauncherConfig   `mapstructure:"launcher" yaml:"launcher"`
	RecorderCfg   RecorderConfig   `mapstructure:"recorder" yaml:"recorder"`
}

var _ Interface = (*Config)(nil)

// --- Getters ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Executor() ExecutorConfig     { return c.ExecutorCfg }
func (c *Config) Affordance() AffordanceConfig { return c.AffordanceCfg }
func (c *Config) Device() DeviceConfig         { return c.DeviceCfg }
func (c *Config) Launcher() LauncherConfig     { return c.LauncherCfg }
func (c *Config) Recorder() RecorderConfig     { return c.RecorderCfg }

// --- Setters ---

func (c *Config) SetDeviceKind(kind string)             { c.DeviceCfg.Kind = kind }
func (c *Config) SetCoordinateStrategy(strategy string) { c.ExecutorCfg.CoordinateStrategy = strategy }
func (c *Config) SetAffordanceEnabled(enabled bool)     { c.AffordanceCfg.Enabled = enabled }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ExecutorConfig controls how batches are resolved and paced.
type ExecutorConfig struct {
	// CoordinateStrategy is "pixel_first" or "thousandths".
	CoordinateStrategy string        `mapstructure:"coordinate_strategy" yaml:"coordinate_strategy"`
	WaitDuration       time.Duration `mapstructure:"wait_duration" yaml:"wait_duration"`
	ScrollDefaultLines int           `mapstructure:"scroll_default_lines" yaml:"scroll_default_lines"`
	Timing             TimingConfig  `mapstructure:"timing" yaml:"timing"`
}

// TimingConfig holds the synthesizer delays.
type TimingConfig struct {
	ClickSettle  time.Duration `mapstructure:"click_settle" yaml:"click_settle"`
	DragSteps    int           `mapstructure:"drag_steps" yaml:"drag_steps"`
	DragDuration time.Duration `mapstructure:"drag_duration" yaml:"drag_duration"`
	ScrollTick   time.Duration `mapstructure:"scroll_tick" yaml:"scroll_tick"`
	TypeInterval time.Duration `mapstructure:"type_interval" yaml:"type_interval"`
}

// AffordanceConfig controls the click highlight.
type AffordanceConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	RingRadius   float64       `mapstructure:"ring_radius" yaml:"ring_radius"`
	Duration     time.Duration `mapstructure:"duration" yaml:"duration"`
	MaxPerSecond float64       `mapstructure:"max_per_second" yaml:"max_per_second"`
	Burst        int           `mapstructure:"burst" yaml:"burst"`
}

// DeviceConfig selects and configures the input backend.
type DeviceConfig struct {
	Kind   string       `mapstructure:"kind" yaml:"kind"`
	DryRun DryRunConfig `mapstructure:"dryrun" yaml:"dryrun"`
	CDP    CDPConfig    `mapstructure:"cdp" yaml:"cdp"`
}

// DryRunConfig describes the simulated display.
type DryRunConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// CDPConfig configures the browser backend.
type CDPConfig struct {
	// RemoteURL attaches to a running browser's DevTools endpoint. Empty
	// launches a new browser.
	RemoteURL   string        `mapstructure:"remote_url" yaml:"remote_url"`
	Headless    bool          `mapstructure:"headless" yaml:"headless"`
	StartURL    string        `mapstructure:"start_url" yaml:"start_url"`
	CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
	Viewport    ViewportSize  `mapstructure:"viewport" yaml:"viewport"`
	Args        []string      `mapstructure:"args" yaml:"args"`
}

// ViewportSize is the launched browser window size.
type ViewportSize struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// LauncherConfig configures open_app and run_script.
type LauncherConfig struct {
	Interpreter []string      `mapstructure:"interpreter" yaml:"interpreter"`
	Settle      time.Duration `mapstructure:"settle" yaml:"settle"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxOutput   int           `mapstructure:"max_output" yaml:"max_output"`
}

// RecorderConfig configures record_info persistence.
type RecorderConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "deskpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Executor --
	v.SetDefault("executor.coordinate_strategy", string(geometry.Thousandths))
	v.SetDefault("executor.wait_duration", "1s")
	v.SetDefault("executor.scroll_default_lines", 5)
	v.SetDefault("executor.timing.click_settle", "30ms")
	v.SetDefault("executor.timing.drag_steps", 60)
	v.SetDefault("executor.timing.drag_duration", "500ms")
	v.SetDefault("executor.timing.scroll_tick", "3ms")
	v.SetDefault("executor.timing.type_interval", "0s")

	// -- Affordance --
	v.SetDefault("affordance.enabled", true)
	v.SetDefault("affordance.ring_radius", 16.0)
	v.SetDefault("affordance.duration", "1s")
	v.SetDefault("affordance.max_per_second", 10.0)
	v.SetDefault("affordance.burst", 5)

	// -- Device --
	v.SetDefault("device.kind", DeviceDryRun)
	v.SetDefault("device.dryrun.width", 1920.0)
	v.SetDefault("device.dryrun.height", 1080.0)
	v.SetDefault("device.cdp.remote_url", "")
	v.SetDefault("device.cdp.headless", true)
	v.SetDefault("device.cdp.start_url", "about:blank")
	v.SetDefault("device.cdp.call_timeout", "5s")
	v.SetDefault("device.cdp.viewport.width", 1280)
	v.SetDefault("device.cdp.viewport.height", 800)

	// -- Launcher --
	v.SetDefault("launcher.settle", "1s")
	v.SetDefault("launcher.timeout", "30s")
	v.SetDefault("launcher.max_output", 512)

	// -- Recorder --
	v.SetDefault("recorder.dir", "~/.deskpilot/records")
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if err := c.ExecutorCfg.Validate(); err != nil {
		return fmt.Errorf("executor configuration invalid: %w", err)
	}
	if err := c.AffordanceCfg.Validate(); err != nil {
		return fmt.Errorf("affordance configuration invalid: %w", err)
	}
	if err := c.DeviceCfg.Validate(); err != nil {
		return fmt.Errorf("device configuration invalid: %w", err)
	}
	if c.LauncherCfg.Settle < 0 || c.LauncherCfg.Timeout < 0 {
		return fmt.Errorf("launcher.settle and launcher.timeout must not be negative")
	}
	return nil
}

// Validate checks the executor settings.
func (e *ExecutorConfig) Validate() error {
	if _, err := geometry.ParseStrategy(e.CoordinateStrategy); err != nil {
		return err
	}
	if e.WaitDuration < 0 {
		return fmt.Errorf("wait_duration must not be negative")
	}
	if e.ScrollDefaultLines <= 0 {
		return fmt.Errorf("scroll_default_lines must be a positive integer")
	}
	if e.Timing.DragSteps <= 0 {
		return fmt.Errorf("timing.drag_steps must be a positive integer")
	}
	return nil
}

// Validate checks the affordance settings.
func (a *AffordanceConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.RingRadius <= 0 {
		return fmt.Errorf("ring_radius must be positive")
	}
	if a.Duration <= 0 {
		return fmt.Errorf("duration must be a positive duration")
	}
	return nil
}

// Validate checks the device settings.
func (d *DeviceConfig) Validate() error {
	switch d.Kind {
	case DeviceDryRun:
		if d.DryRun.Width <= 0 || d.DryRun.Height <= 0 {
			return fmt.Errorf("dryrun.width and dryrun.height must be positive")
		}
	case DeviceCDP:
		if d.CDP.CallTimeout <= 0 {
			return fmt.Errorf("cdp.call_timeout must be a positive duration")
		}
	case DeviceDesktop:
	default:
		return fmt.Errorf("unknown device kind %q (want %s, %s or %s)", d.Kind, DeviceDryRun, DeviceCDP, DeviceDesktop)
	}
	return nil
}
