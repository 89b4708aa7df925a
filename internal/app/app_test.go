package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/config"
	"tourreg/internal/domain/registry"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage:  config.Storage{Driver: config.DriverMemory},
		Registry: config.Registry{AllocationStrategy: "counter", AllocationAttempts: 3},
		Export:   config.Export{State: "MS"},
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	a, err := New(ctx, memoryConfig(), reg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, config.DriverMemory, a.Storage.Driver)
	require.NoError(t, a.Storage.Pinger.Ping(ctx))
	require.NotNil(t, a.Metrics)

	rec := registry.NewRecord("Blue Lagoon Cave", "natural", "MS")
	res, err := a.Service.Create(ctx, rec, false)
	require.NoError(t, err)
	assert.NotNil(t, res.Outcome)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tourreg_validations_total")
}

func TestNew_WithoutMetrics(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Metrics)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"

	_, err := OpenStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, "sqlite")
}
