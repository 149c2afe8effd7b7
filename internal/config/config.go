// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. Values come from the
// config file, environment variables (DECLARE_ prefix), and CLI flags, with
// the usual viper precedence.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Popup     PopupConfig     `mapstructure:"popup"`
	KeepAlive KeepAliveConfig `mapstructure:"keepalive"`
}

// LoggerConfig controls the zap logger and optional rotating log file.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

// BrowserConfig controls the Chrome session. The three timeouts mirror the
// remote application's tolerances and are not meant to be tuned per run.
type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless"`
	WindowWidth     int           `mapstructure:"window_width"`
	WindowHeight    int           `mapstructure:"window_height"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	ElementTimeout  time.Duration `mapstructure:"element_timeout"`
	ScriptTimeout   time.Duration `mapstructure:"script_timeout"`
}

// RetryConfig carries the attempt budgets and delays for the three retry
// flavors used by the pipeline.
type RetryConfig struct {
	FieldAttempts int           `mapstructure:"field_attempts"`
	FieldDelay    time.Duration `mapstructure:"field_delay"`
	OpAttempts    int           `mapstructure:"op_attempts"`
	OpDelay       time.Duration `mapstructure:"op_delay"`
	LoginAttempts int           `mapstructure:"login_attempts"`
	LoginDelay    time.Duration `mapstructure:"login_delay"`
}

// PopupConfig bounds the confirmation-dialog probe.
type PopupConfig struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	Settle       time.Duration `mapstructure:"settle"`
}

// KeepAliveConfig controls the background session keep-alive ticker.
type KeepAliveConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// SetDefaults registers every default on v. Called before reading the config
// file so that a missing file still yields a complete configuration.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "declare-cli")
	v.SetDefault("logger.log_file", "declare.log")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.page_load_timeout", 30*time.Second)
	v.SetDefault("browser.element_timeout", 10*time.Second)
	v.SetDefault("browser.script_timeout", 20*time.Second)

	v.SetDefault("retry.field_attempts", 3)
	v.SetDefault("retry.field_delay", 300*time.Millisecond)
	v.SetDefault("retry.op_attempts", 3)
	v.SetDefault("retry.op_delay", 2*time.Second)
	v.SetDefault("retry.login_attempts", 3)
	v.SetDefault("retry.login_delay", 2*time.Second)

	v.SetDefault("popup.probe_timeout", 2*time.Second)
	v.SetDefault("popup.settle", 300*time.Millisecond)

	v.SetDefault("keepalive.interval", 2*time.Minute)
}

// Load reads the configuration out of v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would hang or spin the pipeline.
func (c *Config) Validate() error {
	if c.Retry.FieldAttempts < 1 || c.Retry.OpAttempts < 1 || c.Retry.LoginAttempts < 1 {
		return fmt.Errorf("retry attempt budgets must be positive integers")
	}
	if c.Browser.PageLoadTimeout <= 0 || c.Browser.ElementTimeout <= 0 || c.Browser.ScriptTimeout <= 0 {
		return fmt.Errorf("browser timeouts must be positive durations")
	}
	if c.Popup.ProbeTimeout <= 0 {
		return fmt.Errorf("popup.probe_timeout must be a positive duration")
	}
	if c.KeepAlive.Interval <= 0 {
		return fmt.Errorf("keepalive.interval must be a positive duration")
	}
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}
