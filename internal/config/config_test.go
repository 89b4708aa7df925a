package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/domain/regcode"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOURREG_STORAGE_DRIVER", "memory")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, regcode.StrategyOptimistic, cfg.Strategy())
	assert.Equal(t, regcode.DefaultAttempts, cfg.Registry.AllocationAttempts)
	assert.Equal(t, "1.0", cfg.Export.Version)
	assert.Equal(t, 15*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, "9091", cfg.Worker.MetricsPort)
	assert.Empty(t, cfg.HTTP.CORSOrigins)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
app:
  env: production
  port: "9090"
database:
  url: postgres://registry@localhost:5432/registry
  max_conns: 8
storage:
  driver: POSTGRES
registry:
  allocation_strategy: counter
  allocation_attempts: 3
export:
  origin: Bonito Tourism Office
  state: MS
http:
  cors_origins:
    - https://dashboard.example
worker:
  interval: 5m
  metrics_port: "9200"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("TOURREG_APP_PORT", "7070")
	t.Setenv("TOURREG_WORKER_CONCURRENCY", "2")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "7070", cfg.App.Port, "env wins over file")
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, regcode.StrategyCounter, cfg.Strategy())
	assert.Equal(t, 3, cfg.Registry.AllocationAttempts)
	assert.Equal(t, "Bonito Tourism Office", cfg.Export.Origin)
	assert.Equal(t, []string{"https://dashboard.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, "9200", cfg.Worker.MetricsPort)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  driver: memory\n"), 0o600))
	t.Setenv("TOURREG_CONFIG_PATH", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TOURREG_STORAGE_DRIVER", "postgres")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage:  Storage{Driver: DriverMemory},
			Registry: Registry{AllocationStrategy: "optimistic", AllocationAttempts: 5},
			Worker:   Worker{Interval: time.Minute, Concurrency: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"unknown strategy", func(c *Config) { c.Registry.AllocationStrategy = "random" }, "allocation_strategy"},
		{"zero attempts", func(c *Config) { c.Registry.AllocationAttempts = 0 }, "allocation_attempts"},
		{"zero interval", func(c *Config) { c.Worker.Interval = 0 }, "worker.interval"},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }, "worker.concurrency"},
	}

	c := valid()
	require.NoError(t, c.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
