// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Network   NetworkConfig  `mapstructure:"network" yaml:"network"`
	Batch     BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Timeouts  TimeoutConfig  `mapstructure:"timeouts" yaml:"timeouts"`
	Selectors SelectorConfig `mapstructure:"selectors" yaml:"selectors"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ViewportConfig sets the browser window dimensions.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds settings for the browser instance.
type BrowserConfig struct {
	Headless     bool           `mapstructure:"headless" yaml:"headless"`
	ReuseProfile bool           `mapstructure:"reuse_profile" yaml:"reuse_profile"`
	ProfileDir   string         `mapstructure:"profile_dir" yaml:"profile_dir"`
	Viewport     ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Args         []string       `mapstructure:"args" yaml:"args"`
}

// NetworkConfig tunes navigation behavior.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// BatchConfig describes one batch run: where the jobs come from, where the
// results go, and how the runner paces itself between jobs.
type BatchConfig struct {
	Input     string        `mapstructure:"input" yaml:"input"`
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
	Question  string        `mapstructure:"question" yaml:"question"`
	MinWait   time.Duration `mapstructure:"min_wait" yaml:"min_wait"`
	MaxWait   time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
}

// TimeoutConfig bounds the interaction pipeline's polling loops.
type TimeoutConfig struct {
	Composer        time.Duration `mapstructure:"composer" yaml:"composer"`
	GenerationGrace time.Duration `mapstructure:"generation_grace" yaml:"generation_grace"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// SelectorConfig optionally overrides the built-in selector chains per role.
// Each entry is a CSS query string; an empty list keeps the defaults.
type SelectorConfig struct {
	Composer         []string `mapstructure:"composer" yaml:"composer"`
	Send             []string `mapstructure:"send" yaml:"send"`
	AssistantMessage []string `mapstructure:"assistant_message" yaml:"assistant_message"`
	AnyMessage       []string `mapstructure:"any_message" yaml:"any_message"`
	BusyIndicator    []string `mapstructure:"busy_indicator" yaml:"busy_indicator"`
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gptprobe")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// Browser defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.reuse_profile", false)
	v.SetDefault("browser.profile_dir", "")
	v.SetDefault("browser.viewport.width", 1360)
	v.SetDefault("browser.viewport.height", 900)

	// Network defaults
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.post_load_wait", "2s")

	// Batch defaults
	v.SetDefault("batch.output_dir", "./out")
	v.SetDefault("batch.min_wait", "10s")
	v.SetDefault("batch.max_wait", "15s")

	// Interaction timeouts
	v.SetDefault("timeouts.composer", "25s")
	v.SetDefault("timeouts.generation_grace", "15s")
	v.SetDefault("timeouts.poll_interval", "500ms")
}

// NewDefaultConfig returns a Config populated with the built-in defaults.
// Used by tests and as a fallback when no config file is present.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Unmarshal of pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the resolved configuration is runnable and normalizes
// paths that may contain a leading "~".
func (c *Config) Validate() error {
	if c.Batch.Input == "" {
		return fmt.Errorf("batch.input is required (CSV with a gpt_url column)")
	}
	if c.Batch.Question == "" {
		return fmt.Errorf("batch.question is required")
	}
	if c.Batch.MaxWait < c.Batch.MinWait {
		c.Batch.MaxWait = c.Batch.MinWait
	}

	outDir, err := homedir.Expand(c.Batch.OutputDir)
	if err != nil {
		return fmt.Errorf("invalid batch.output_dir: %w", err)
	}
	c.Batch.OutputDir = outDir

	if c.Browser.ProfileDir != "" {
		profileDir, err := homedir.Expand(c.Browser.ProfileDir)
		if err != nil {
			return fmt.Errorf("invalid browser.profile_dir: %w", err)
		}
		c.Browser.ProfileDir = profileDir
	}
	return nil
}
