// Package config loads process configuration from an optional config.yaml and
// TOURREG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tourreg/internal/domain/regcode"
)

// EnvPrefix prefixes every environment override (TOURREG_DATABASE_URL, ...).
const EnvPrefix = "TOURREG"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type App struct {
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Database struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
}

type Registry struct {
	AllocationStrategy string `mapstructure:"allocation_strategy"`
	AllocationAttempts int    `mapstructure:"allocation_attempts"`
	SameRegionOnly     bool   `mapstructure:"same_region_only"`
}

type Export struct {
	Origin  string `mapstructure:"origin"`
	Region  string `mapstructure:"region"`
	State   string `mapstructure:"state"`
	Version string `mapstructure:"version"`
}

type HTTP struct {
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type Worker struct {
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
	BatchSize   int           `mapstructure:"batch_size"`

	// MetricsPort serves /metrics for the worker process. Empty disables it.
	MetricsPort string `mapstructure:"metrics_port"`
}

// Config is the full process configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Log      Log      `mapstructure:"log"`
	Database Database `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	Registry Registry `mapstructure:"registry"`
	Export   Export   `mapstructure:"export"`
	HTTP     HTTP     `mapstructure:"http"`
	Worker   Worker   `mapstructure:"worker"`
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Strategy returns the parsed allocation strategy. Call after Validate.
func (c *Config) Strategy() regcode.Strategy {
	s, _ := regcode.ParseStrategy(c.Registry.AllocationStrategy)
	return s
}

// Validate checks values that have no sane fallback.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if _, err := regcode.ParseStrategy(c.Registry.AllocationStrategy); err != nil {
		errs = append(errs, fmt.Errorf("registry.allocation_strategy: %w", err))
	}
	if c.Registry.AllocationAttempts < 1 {
		errs = append(errs, errors.New("registry.allocation_attempts must be at least 1"))
	}
	if c.Worker.Interval <= 0 {
		errs = append(errs, errors.New("worker.interval must be positive"))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, errors.New("worker.concurrency must be at least 1"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.migrate", true)
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("registry.allocation_strategy", regcode.StrategyOptimistic.String())
	v.SetDefault("registry.allocation_attempts", regcode.DefaultAttempts)
	v.SetDefault("registry.same_region_only", false)
	v.SetDefault("export.origin", "")
	v.SetDefault("export.region", "")
	v.SetDefault("export.state", "")
	v.SetDefault("export.version", "1.0")
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("worker.interval", 15*time.Minute)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.batch_size", 200)
	v.SetDefault("worker.metrics_port", "9091")
}

// Load reads config.yaml from configPath (or TOURREG_CONFIG_PATH, or ".") and
// applies environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "_CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "."
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.HTTP.CORSOrigins = splitList(cfg.HTTP.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
