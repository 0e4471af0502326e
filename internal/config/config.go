// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Form    FormConfig    `mapstructure:"form" yaml:"form"`
}

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

// ColorConfig defines the color names for different log levels in console format.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls how each attempt's Chrome instance is launched.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Args     []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig bounds every blocking browser operation.
type NetworkConfig struct {
	// OpTimeout applies to element-level operations (query, click, fill).
	OpTimeout time.Duration `mapstructure:"op_timeout" yaml:"op_timeout"`
	// NavigationTimeout applies to page loads.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// ConfirmTimeout bounds the post-submit wait for the confirmation URL.
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" yaml:"confirm_timeout"`
}

// EngineConfig controls the submission pool.
type EngineConfig struct {
	// Workers overrides the worker count when > 0. The resolved count is
	// always capped at the requested submission count.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// RatePerSecond caps attempt starts per second; 0 disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	// ProgressInterval is the number of completions between progress log lines.
	ProgressInterval int `mapstructure:"progress_interval" yaml:"progress_interval"`
}

// FormConfig describes the survey page shape. The defaults target Google Forms
// but every selector can be repointed at another survey host.
type FormConfig struct {
	ContainerSelector   string `mapstructure:"container_selector" yaml:"container_selector"`
	RadioGroupSelector  string `mapstructure:"radio_group_selector" yaml:"radio_group_selector"`
	RadioOptionSelector string `mapstructure:"radio_option_selector" yaml:"radio_option_selector"`
	CheckboxSelector    string `mapstructure:"checkbox_selector" yaml:"checkbox_selector"`
	HeadingSelector     string `mapstructure:"heading_selector" yaml:"heading_selector"`
	InputSelector       string `mapstructure:"input_selector" yaml:"input_selector"`
	SubmitSelector      string `mapstructure:"submit_selector" yaml:"submit_selector"`
	// SentinelValue marks the "other / write-in" option (data-value attribute).
	SentinelValue string `mapstructure:"sentinel_value" yaml:"sentinel_value"`
	// ConfirmPattern is the URL substring that indicates a successful submission.
	ConfirmPattern string `mapstructure:"confirm_pattern" yaml:"confirm_pattern"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formflood")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// Browser defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{})

	// Network defaults
	v.SetDefault("network.op_timeout", "10s")
	v.SetDefault("network.navigation_timeout", "30s")
	v.SetDefault("network.confirm_timeout", "10s")

	// Engine defaults
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.rate_per_second", 0.0)
	v.SetDefault("engine.progress_interval", 10)

	// Form defaults (Google Forms DOM shape)
	v.SetDefault("form.container_selector", "div[role='listitem']")
	v.SetDefault("form.radio_group_selector", "div[role='radiogroup']")
	v.SetDefault("form.radio_option_selector", "div[role='radio']")
	v.SetDefault("form.checkbox_selector", "div[role='checkbox']")
	v.SetDefault("form.heading_selector", "div[role='heading']")
	v.SetDefault("form.input_selector", "input")
	v.SetDefault("form.submit_selector", "div[role='button'][jsname='M2UYVd']")
	v.SetDefault("form.sentinel_value", "__other_option__")
	v.SetDefault("form.confirm_pattern", "formResponse")
}

// New builds a Config from the given viper instance with defaults applied.
func New(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewDefault returns a Config carrying only the built-in defaults.
func NewDefault() *Config {
	cfg, err := New(viper.New())
	if err != nil {
		// Defaults are always unmarshalable; this indicates a programming error.
		panic(err)
	}
	return cfg
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures deep inside a session.
func (c *Config) Validate() error {
	if c.Network.OpTimeout <= 0 {
		return fmt.Errorf("network.op_timeout must be positive, got %s", c.Network.OpTimeout)
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be positive, got %s", c.Network.NavigationTimeout)
	}
	if c.Network.ConfirmTimeout <= 0 {
		return fmt.Errorf("network.confirm_timeout must be positive, got %s", c.Network.ConfirmTimeout)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Engine.RatePerSecond < 0 {
		return fmt.Errorf("engine.rate_per_second must not be negative, got %v", c.Engine.RatePerSecond)
	}
	if c.Form.ContainerSelector == "" {
		return fmt.Errorf("form.container_selector must not be empty")
	}
	if c.Form.SubmitSelector == "" {
		return fmt.Errorf("form.submit_selector must not be empty")
	}
	if c.Form.ConfirmPattern == "" {
		return fmt.Errorf("form.confirm_pattern must not be empty")
	}
	return nil
}
