package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfirmPolicy decides which statuses a reservation may be confirmed from.
type ConfirmPolicy string

const (
	// ConfirmPendingOnly allows pending -> confirmed only.
	ConfirmPendingOnly ConfirmPolicy = "pending_only"

	// ConfirmLenient allows confirming from any status except confirmed,
	// including reviving canceled or completed reservations.
	ConfirmLenient ConfirmPolicy = "lenient"
)

// CostPolicy decides where a reservation's cost comes from.
type CostPolicy string

const (
	// CostServer derives cost from the resource rate and the duration.
	CostServer CostPolicy = "server"

	// CostClient trusts the cost supplied with the request.
	CostClient CostPolicy = "client"
)

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// BookingConfig holds reservation state machine policies.
type BookingConfig struct {
	ConfirmPolicy         ConfirmPolicy `mapstructure:"confirm_policy" yaml:"confirm_policy"`
	CostPolicy            CostPolicy    `mapstructure:"cost_policy" yaml:"cost_policy"`
	EnforceOperatingHours bool          `mapstructure:"enforce_operating_hours" yaml:"enforce_operating_hours"`
}

// NotifyConfig holds notification dispatcher settings.
type NotifyConfig struct {
	// Workers is the number of goroutines draining the dispatch queue.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// QueueSize bounds the number of pending fan-out batches.
	QueueSize int `mapstructure:"queue_size" yaml:"queue_size"`

	// MaxAttempts is how many times a single notification is tried.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// SweepConfig holds settings for the periodic completion sweep.
type SweepConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Booking  BookingConfig  `mapstructure:"booking" yaml:"booking"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Sweep    SweepConfig    `mapstructure:"sweep" yaml:"sweep"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/venuebook, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "venuebook")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/venuebook/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: filepath.Join(configDir(), "venuebook.db"),
		},
		Booking: BookingConfig{
			ConfirmPolicy: ConfirmPendingOnly,
			CostPolicy:    CostServer,
		},
		Notify: NotifyConfig{
			Workers:      4,
			QueueSize:    256,
			MaxAttempts:  3,
			RetryDelayMs: 200,
		},
		Sweep: SweepConfig{
			IntervalSec: 300,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// setDefaults registers every key so missing keys and env overrides resolve.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("booking.confirm_policy", string(d.Booking.ConfirmPolicy))
	v.SetDefault("booking.cost_policy", string(d.Booking.CostPolicy))
	v.SetDefault("booking.enforce_operating_hours", d.Booking.EnforceOperatingHours)
	v.SetDefault("notify.workers", d.Notify.Workers)
	v.SetDefault("notify.queue_size", d.Notify.QueueSize)
	v.SetDefault("notify.max_attempts", d.Notify.MaxAttempts)
	v.SetDefault("notify.retry_delay_ms", d.Notify.RetryDelayMs)
	v.SetDefault("sweep.interval_sec", d.Sweep.IntervalSec)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. VENUEBOOK_* environment
// variables override both (e.g. VENUEBOOK_DATABASE_PATH).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("venuebook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings and clamps numeric ones to usable values.
func (c *AppConfig) Validate() error {
	switch c.Booking.ConfirmPolicy {
	case ConfirmPendingOnly, ConfirmLenient:
	default:
		return fmt.Errorf("unknown booking.confirm_policy %q", c.Booking.ConfirmPolicy)
	}
	switch c.Booking.CostPolicy {
	case CostServer, CostClient:
	default:
		return fmt.Errorf("unknown booking.cost_policy %q", c.Booking.CostPolicy)
	}

	if c.Notify.Workers < 1 {
		c.Notify.Workers = 1
	}
	if c.Notify.QueueSize < 1 {
		c.Notify.QueueSize = 1
	}
	if c.Notify.MaxAttempts < 1 {
		c.Notify.MaxAttempts = 1
	}
	if c.Notify.RetryDelayMs < 0 {
		c.Notify.RetryDelayMs = 0
	}
	if c.Sweep.IntervalSec <= 0 {
		c.Sweep.IntervalSec = 300
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", map[string]any{"path": cfg.Database.Path})
	v.Set("booking", map[string]any{
		"confirm_policy":          string(cfg.Booking.ConfirmPolicy),
		"cost_policy":             string(cfg.Booking.CostPolicy),
		"enforce_operating_hours": cfg.Booking.EnforceOperatingHours,
	})
	v.Set("notify", map[string]any{
		"workers":        cfg.Notify.Workers,
		"queue_size":     cfg.Notify.QueueSize,
		"max_attempts":   cfg.Notify.MaxAttempts,
		"retry_delay_ms": cfg.Notify.RetryDelayMs,
	})
	v.Set("sweep", map[string]any{"interval_sec": cfg.Sweep.IntervalSec})
	v.Set("log", map[string]any{"level": cfg.Log.Level})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
